package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsManager_Counters(t *testing.T) {
	m := NewMetricsManager("review-service")

	m.RecordReviewCreated("product")
	m.RecordReviewCreated("product")
	m.RecordReviewCreated("seller")
	m.RecordRatingSync(true)
	m.RecordRatingSync(false)
	m.RecordHelpfulVote()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReviewsCreatedTotal.WithLabelValues("product")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsCreatedTotal.WithLabelValues("seller")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RatingSyncTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HelpfulVotesTotal))
}

func TestMetricsManager_NilReceiverIsNoop(t *testing.T) {
	var m *MetricsManager
	assert.NotPanics(t, func() {
		m.RecordReviewCreated("product")
		m.RecordRatingSync(false)
		m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	})
}

func TestNewMetricsServer_ServesRegistry(t *testing.T) {
	m := NewMetricsManager("review-service")
	m.ObserveRequest(http.MethodGet, "/api/v1/reviews/{id}", http.StatusOK, 20*time.Millisecond)

	srv := NewMetricsServer("0", logger.NewNop(), m.Registry)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "review_service_http_requests_total")
}
