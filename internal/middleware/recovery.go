package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into a 500 instead of killing the connection.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("Panic recovered",
					zap.Any("panic", rec),
					zap.String("stack", string(debug.Stack())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"code":    "INTERNAL_ERROR",
					"message": "Server error",
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
