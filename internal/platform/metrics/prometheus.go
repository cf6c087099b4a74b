package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's Prometheus collectors.
// All Record/Observe methods are safe on a nil receiver so metrics stay optional.
type MetricsManager struct {
	Registry                   *prometheus.Registry
	ReviewsCreatedTotal        *prometheus.CounterVec
	ReviewUpdatesTotal         prometheus.Counter
	ReviewDeletesTotal         prometheus.Counter
	HelpfulVotesTotal          prometheus.Counter
	RatingSyncTotal            *prometheus.CounterVec
	PurchaseVerificationsTotal *prometheus.CounterVec
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestLatency         *prometheus.HistogramVec
}

// NewMetricsManager creates a private registry and registers every collector on it.
func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()
	ns := strings.ReplaceAll(serviceName, "-", "_")

	m := &MetricsManager{
		Registry: registry,
		ReviewsCreatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "reviews_created_total",
			Help:      "Total number of reviews created, by target type.",
		}, []string{"target_type"}),
		ReviewUpdatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "review_updates_total",
			Help:      "Total number of reviews updated.",
		}),
		ReviewDeletesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "review_deletes_total",
			Help:      "Total number of reviews deleted.",
		}),
		HelpfulVotesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "helpful_votes_total",
			Help:      "Total number of helpful votes cast.",
		}),
		RatingSyncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "rating_sync_total",
			Help:      "Product rating sync attempts by result.",
		}, []string{"result"}),
		PurchaseVerificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "purchase_verifications_total",
			Help:      "Purchase verification outcomes.",
		}, []string{"result"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_latency_seconds",
			Help:      "Latency of HTTP requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.ReviewsCreatedTotal,
		m.ReviewUpdatesTotal,
		m.ReviewDeletesTotal,
		m.HelpfulVotesTotal,
		m.RatingSyncTotal,
		m.PurchaseVerificationsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *MetricsManager) RecordReviewCreated(targetType string) {
	if m == nil {
		return
	}
	m.ReviewsCreatedTotal.WithLabelValues(targetType).Inc()
}

func (m *MetricsManager) RecordReviewUpdated() {
	if m == nil {
		return
	}
	m.ReviewUpdatesTotal.Inc()
}

func (m *MetricsManager) RecordReviewDeleted() {
	if m == nil {
		return
	}
	m.ReviewDeletesTotal.Inc()
}

func (m *MetricsManager) RecordHelpfulVote() {
	if m == nil {
		return
	}
	m.HelpfulVotesTotal.Inc()
}

// RecordRatingSync counts a sync as "ok" or "failed".
func (m *MetricsManager) RecordRatingSync(ok bool) {
	if m == nil {
		return
	}
	m.RatingSyncTotal.WithLabelValues(resultLabel(ok)).Inc()
}

// RecordPurchaseVerification takes "verified", "unverified" or "failed".
func (m *MetricsManager) RecordPurchaseVerification(result string) {
	if m == nil {
		return
	}
	m.PurchaseVerificationsTotal.WithLabelValues(result).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *MetricsManager) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func resultLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

// NewMetricsServer builds the HTTP server exposing /metrics for the registry.
func NewMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server configured", zap.String("port", port), zap.String("path", "/metrics"))

	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
