package http

import (
	"net/http"

	"github.com/Abdurahmanit/review-service/internal/middleware"
	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"github.com/Abdurahmanit/review-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
)

// RouterConfig carries the settings the router needs beyond the handler.
type RouterConfig struct {
	ServiceName    string
	JWTSecret      string
	AllowedOrigins []string
}

// NewRouter creates a chi router with all review routes registered.
func NewRouter(h *ReviewHandler, cfg RouterConfig, mm *metrics.MetricsManager, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogging(log))
	r.Use(middleware.Metrics(mm))

	r.Get("/health", h.Health)

	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Get("/product/{productId}", h.ListProductReviews)
		r.Get("/seller/{sellerId}", h.ListSellerReviews)
		r.Post("/helpful/{id}", h.MarkHelpful)
		r.Get("/{id}", h.GetReview)

		r.Group(func(r chi.Router) {
			// Any signed token with an id; admin rights are checked per operation.
			r.Use(middleware.Authenticate(cfg.JWTSecret, log))

			r.Post("/", h.AddReview)
			r.Get("/user/my-reviews", h.ListMyReviews)
			r.Patch("/{id}", h.UpdateReview)
			r.Delete("/{id}", h.DeleteReview)
		})
	})

	return r
}
