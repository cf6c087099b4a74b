package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abdurahmanit/review-service/internal/domain"
	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"github.com/Abdurahmanit/review-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const secret = "test-secret"

func signToken(t *testing.T, claims Claims, key string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func validClaims(id string, role domain.Role) Claims {
	return Claims{
		UserID:    id,
		Role:      string(role),
		FirstName: "Ada",
		LastName:  "Lovelace",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func echoIdentity(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"id":    id.UserID,
		"role":  string(id.Role),
		"token": TokenFromContext(r.Context()),
	})
}

func TestAuthenticate(t *testing.T) {
	handler := Authenticate(secret, logger.NewNop(), domain.RoleUser, domain.RoleSeller, domain.RoleAdmin)(http.HandlerFunc(echoIdentity))

	expired := validClaims("u1", domain.RoleUser)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong key", "Bearer " + signToken(t, validClaims("u1", domain.RoleUser), "other"), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, expired, secret), http.StatusUnauthorized},
		{"no user id", "Bearer " + signToken(t, validClaims("", domain.RoleUser), secret), http.StatusUnauthorized},
		{"role not allowed", "Bearer " + signToken(t, validClaims("u1", "guest"), secret), http.StatusUnauthorized},
		{"user", "Bearer " + signToken(t, validClaims("u1", domain.RoleUser), secret), http.StatusOK},
		{"admin", "bearer " + signToken(t, validClaims("a1", domain.RoleAdmin), secret), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "UNAUTHORIZED", body["code"])
			} else {
				assert.NotEmpty(t, body["id"])
				assert.NotEmpty(t, body["token"])
			}
		})
	}
}

func TestAuthenticate_RoleClaimIsOptional(t *testing.T) {
	handler := Authenticate(secret, logger.NewNop())(http.HandlerFunc(echoIdentity))

	for name, role := range map[string]domain.Role{"no role": "", "unlisted role": "guest", "admin": domain.RoleAdmin} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims("u1", role), secret))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, "u1", body["id"])
			assert.Equal(t, string(role), body["role"])
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims("", ""), secret))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestIdentity_IsAdmin(t *testing.T) {
	assert.True(t, Identity{UserID: "a", Role: domain.RoleAdmin}.IsAdmin())
	assert.False(t, Identity{UserID: "a", Role: domain.RoleSeller}.IsAdmin())
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", BearerToken(req))
	req.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", BearerToken(req))
	req.Header.Set("Authorization", "Bearer a b")
	assert.Equal(t, "", BearerToken(req))
}

func TestRequestLogging_CorrelationID(t *testing.T) {
	var seen string
	handler := RequestLogging(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CorrelationIDFromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(CorrelationIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "abc-123")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rr.Header().Get(CorrelationIDHeader))
}

func TestRecovery(t *testing.T) {
	handler := Recovery(logger.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "INTERNAL_ERROR")
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("wildcard", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://shop.example")
		CORS([]string{"*"})(ok).ServeHTTP(rr, req)
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("listed origin", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://shop.example")
		CORS([]string{"https://shop.example"})(ok).ServeHTTP(rr, req)
		assert.Equal(t, "https://shop.example", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		CORS([]string{"https://shop.example"})(ok).ServeHTTP(rr, req)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		rr := httptest.NewRecorder()
		CORS([]string{"*"})(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
	})
}

func TestTracing_NamesSpanByRoute(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	r := chi.NewRouter()
	r.Use(Tracing("review-service"))
	r.Get("/api/v1/reviews/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews/abc", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	r.ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/v1/reviews/{id}", spans[0].Name)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
	assert.Equal(t, "Error", spans[0].Status.Code.String())
}

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	mm := metrics.NewMetricsManager("review-service")

	r := chi.NewRouter()
	r.Use(Metrics(mm))
	r.Get("/api/v1/reviews/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/reviews/x", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/reviews/y", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(mm.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/reviews/{id}", "404")))
}
