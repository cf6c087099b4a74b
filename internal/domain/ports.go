package domain

import "context"

// ProductService is the product catalog as seen by the review service.
type ProductService interface {
	// GetProduct returns ErrNotFound for unknown products and ErrUpstream when the catalog fails.
	GetProduct(ctx context.Context, productID, token string) (*Product, error)
	UpdateRating(ctx context.Context, productID string, averageRating float64, numReviews int64, token string) error
}

// UserService resolves review authors.
type UserService interface {
	GetUser(ctx context.Context, userID, token string) (*UserProfile, error)
}

// PurchaseVerifier answers whether a user bought a product.
type PurchaseVerifier interface {
	VerifyPurchase(ctx context.Context, userID, productID, token string) (bool, error)
}

// EventPublisher emits review domain events.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Event subjects.
const (
	SubjectReviewCreated = "review.created"
	SubjectReviewUpdated = "review.updated"
	SubjectReviewDeleted = "review.deleted"
	SubjectReviewHelpful = "review.helpful"
)

// BestEffort is the outcome of a side effect whose failure never reaches the caller.
// Value holds the defaulted result when Err is set.
type BestEffort[T any] struct {
	Value T
	Err   error
}

// Failed reports whether the side effect fell back to its default.
func (b BestEffort[T]) Failed() bool {
	return b.Err != nil
}
