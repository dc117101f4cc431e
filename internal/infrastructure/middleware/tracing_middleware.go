package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mediahub/pkg/logger"
)

// TracingMiddleware starts a server span per request. It must run before
// SpanEnrichmentMiddleware.
func TracingMiddleware(service string) gin.HandlerFunc {
	return otelgin.Middleware(service)
}

// SpanEnrichmentMiddleware adds request id and outcome attributes to the
// span started by TracingMiddleware.
func SpanEnrichmentMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if id := logger.RequestID(c.Request.Context()); id != "" {
			span.SetAttributes(attribute.String("mediahub.request.id", id))
		}

		c.Next()

		status := responseStatus(c)
		span.SetAttributes(attribute.Int64("http.response_size", int64(c.Writer.Size())))
		if status >= 500 {
			span.SetStatus(codes.Error, c.Errors.String())
		}
	}
}
