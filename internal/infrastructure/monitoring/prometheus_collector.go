package monitoring

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"mediahub/internal/core/domain"
)

// PrometheusCollector exports guarded-call and housekeeping metrics. It also
// serves as an audit recorder.
type PrometheusCollector struct {
	// Counters
	guardedCallsTotal *prometheus.CounterVec
	sweptTotal        *prometheus.CounterVec

	// Histograms
	guardedCallDuration *prometheus.HistogramVec
}

// NewPrometheusCollector registers the metrics with reg, or with the default
// registry when reg is nil.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusCollector{
		guardedCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mediahub_guarded_calls_total",
			Help: "Guarded API calls by operation, outcome and status",
		}, []string{"operation", "outcome", "status"}),

		sweptTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mediahub_swept_records_total",
			Help: "Expired records removed by the sweeper",
		}, []string{"kind"}),

		guardedCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mediahub_guarded_call_duration_seconds",
			Help:    "Duration of guarded API calls",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation", "outcome"}),
	}
}

func (p *PrometheusCollector) Record(ctx context.Context, entry domain.AuditEntry) error {
	outcome := string(entry.Outcome)
	p.guardedCallsTotal.WithLabelValues(entry.Operation, outcome, strconv.Itoa(entry.Status)).Inc()
	p.guardedCallDuration.WithLabelValues(entry.Operation, outcome).Observe(entry.Elapsed.Seconds())
	return nil
}

func (p *PrometheusCollector) RecordSwept(kind string, n int64) {
	if n > 0 {
		p.sweptTotal.WithLabelValues(kind).Add(float64(n))
	}
}
