package middleware

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/ports"
	"mediahub/pkg/logger"
)

// LogAuditRecorder writes one structured log line per guarded call.
type LogAuditRecorder struct {
	logger *logger.ContextLogger
}

func NewLogAuditRecorder(l *zap.Logger) *LogAuditRecorder {
	return &LogAuditRecorder{logger: logger.NewContextLogger(l)}
}

func (r *LogAuditRecorder) Record(ctx context.Context, entry domain.AuditEntry) error {
	r.logger.Sugar(ctx).Infow("audit",
		"operation", entry.Operation,
		"method", entry.Method,
		"path", entry.Path,
		"caller", entry.Caller,
		"user_id", entry.UserID,
		"outcome", entry.Outcome,
		"status", entry.Status,
		"started_at", entry.StartedAt,
		"elapsed_ms", entry.Elapsed.Milliseconds(),
	)
	return nil
}

// MultiAuditRecorder fans an entry out to every recorder. All recorders run
// even when one fails; the failures are joined.
type MultiAuditRecorder []ports.AuditRecorder

func NewMultiAuditRecorder(recorders ...ports.AuditRecorder) MultiAuditRecorder {
	return MultiAuditRecorder(recorders)
}

func (m MultiAuditRecorder) Record(ctx context.Context, entry domain.AuditEntry) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
