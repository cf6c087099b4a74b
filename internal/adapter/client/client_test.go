package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abdurahmanit/review-service/internal/domain"
	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "token-abc"

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestProductClient_GetProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/v1/products/p1":
			writeJSON(t, w, http.StatusOK, map[string]interface{}{
				"product": map[string]interface{}{"_id": "p1", "name": "Lamp", "rating": 4.5, "numReviews": 2},
			})
		default:
			writeJSON(t, w, http.StatusNotFound, map[string]string{"message": "Product not found"})
		}
	}))
	defer srv.Close()

	c := NewProductClient(srv.URL, time.Second, logger.NewNop())

	p, err := c.GetProduct(context.Background(), "p1", testToken)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", p.Name)
	assert.Equal(t, int64(2), p.NumReviews)

	_, err = c.GetProduct(context.Background(), "missing", testToken)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorContains(t, err, "Product not found")
}

func TestProductClient_UpdateRating(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/products/p1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(t, w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := NewProductClient(srv.URL, time.Second, logger.NewNop())
	require.NoError(t, c.UpdateRating(context.Background(), "p1", 4.25, 4, testToken))

	assert.Equal(t, 4.25, got["rating"])
	assert.Equal(t, 4.0, got["numReviews"])
}

func TestProductClient_ServerErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusServiceUnavailable, map[string]string{"error": "maintenance"})
	}))
	defer srv.Close()

	c := NewProductClient(srv.URL, time.Second, logger.NewNop())
	err := c.UpdateRating(context.Background(), "p1", 1, 1, testToken)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.ErrorContains(t, err, "maintenance")
}

func TestProductClient_TimeoutIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewProductClient(srv.URL, 20*time.Millisecond, logger.NewNop())
	_, err := c.GetProduct(context.Background(), "p1", testToken)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestUserClient_GetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/user/u1", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"user": map[string]string{"firstName": "Ada", "lastName": "Lovelace", "avatar": "https://cdn.example.com/ada.png"},
		})
	}))
	defer srv.Close()

	c := NewUserClient(srv.URL, time.Second, logger.NewNop())
	u, err := c.GetUser(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "Ada Lovelace", u.DisplayName())
	assert.Equal(t, "https://cdn.example.com/ada.png", u.Avatar)
}

func TestPurchaseVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/orders/verify-purchase", r.URL.Path)
		verified := r.URL.Query().Get("userId") == "buyer"
		writeJSON(t, w, http.StatusOK, map[string]bool{"verified": verified})
	}))
	defer srv.Close()

	ctx := context.Background()

	t.Run("AsksOrderService", func(t *testing.T) {
		v := NewPurchaseVerifier(srv.URL, false, time.Second, logger.NewNop())
		ok, err := v.VerifyPurchase(ctx, "buyer", "p1", testToken)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = v.VerifyPurchase(ctx, "browser", "p1", testToken)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("DevelopmentShortCircuits", func(t *testing.T) {
		v := NewPurchaseVerifier("http://127.0.0.1:1", true, time.Second, logger.NewNop())
		ok, err := v.VerifyPurchase(ctx, "anyone", "p1", testToken)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("NoOrderServiceMeansUnverified", func(t *testing.T) {
		v := NewPurchaseVerifier("", false, time.Second, logger.NewNop())
		ok, err := v.VerifyPurchase(ctx, "buyer", "p1", testToken)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
