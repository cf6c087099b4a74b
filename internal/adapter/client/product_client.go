package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Abdurahmanit/review-service/internal/domain"
	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"go.uber.org/zap"
)

// ProductClient talks to the product catalog service.
type ProductClient struct {
	api    *jsonClient
	logger *logger.Logger
}

func NewProductClient(baseURL string, timeout time.Duration, log *logger.Logger) *ProductClient {
	l := log.Named("ProductClient")
	return &ProductClient{api: newJSONClient(baseURL, timeout, l), logger: l}
}

func (c *ProductClient) GetProduct(ctx context.Context, productID, token string) (*domain.Product, error) {
	var resp struct {
		Product *domain.Product `json:"product"`
	}
	if err := c.api.do(ctx, http.MethodGet, "/api/v1/products/"+url.PathEscape(productID), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}
	if resp.Product == nil {
		return nil, fmt.Errorf("get product %s: %w", productID, domain.ErrNotFound)
	}
	return resp.Product, nil
}

// UpdateRating writes the aggregate rating back to the catalog.
func (c *ProductClient) UpdateRating(ctx context.Context, productID string, averageRating float64, numReviews int64, token string) error {
	body := map[string]interface{}{
		"rating":     averageRating,
		"numReviews": numReviews,
	}
	if err := c.api.do(ctx, http.MethodPatch, "/api/v1/products/"+url.PathEscape(productID), token, body, nil); err != nil {
		return fmt.Errorf("update product %s rating: %w", productID, err)
	}
	c.logger.Debug("Product rating updated",
		zap.String("product_id", productID),
		zap.Float64("rating", averageRating),
		zap.Int64("num_reviews", numReviews))
	return nil
}
