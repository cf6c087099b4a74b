package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	CorrelationIDHeader            = "X-Correlation-ID"
	correlationIDKey    contextKey = "correlationID"
)

// CorrelationIDFromContext returns the request's correlation id, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestLogging logs each request with its duration, status and correlation id.
// A missing X-Correlation-ID is generated and echoed back.
func RequestLogging(log *logger.Logger) func(http.Handler) http.Handler {
	log = log.Named("HTTP")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			correlationID := r.Header.Get(CorrelationIDHeader)
			if correlationID == "" {
				correlationID = uuid.New().String()
			}
			w.Header().Set(CorrelationIDHeader, correlationID)
			ctx := context.WithValue(r.Context(), correlationIDKey, correlationID)

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			spanCtx := trace.SpanContextFromContext(ctx)
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
				zap.Int("bytes", rec.bytes),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("correlation_id", correlationID),
			}
			if spanCtx.HasTraceID() {
				fields = append(fields, zap.String("trace_id", spanCtx.TraceID().String()))
			}

			switch {
			case rec.status >= http.StatusInternalServerError:
				log.Error("HTTP request failed", fields...)
			case rec.status >= http.StatusBadRequest:
				log.Warn("HTTP request rejected", fields...)
			default:
				log.Info("HTTP request completed", fields...)
			}
		})
	}
}
