package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewRepository defines the interface for review data persistence.
// Implementations must reject a second review for the same (UserID, TargetID)
// with ErrReviewAlreadyExists, whatever the target type.
type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Review, error)
	// FindByUserAndTarget returns ErrNotFound when the user has not reviewed the target.
	FindByUserAndTarget(ctx context.Context, userID, targetID string) (*Review, error)
	Update(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// IncrementHelpfulVotes atomically adds one vote and returns the new count.
	IncrementHelpfulVotes(ctx context.Context, id primitive.ObjectID) (int64, error)

	// List returns one sorted page of the reviews matching query plus the
	// total number of matches before pagination.
	List(ctx context.Context, query ReviewQuery, filter ReviewFilter) ([]*Review, int64, error)

	// FindAllByTarget returns every review of a target, for summaries.
	FindAllByTarget(ctx context.Context, targetID string, targetType TargetType) ([]*Review, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}
