package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Abdurahmanit/review-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userTarget struct {
	userID   string
	targetID string
}

// ReviewRepository keeps reviews in process memory for local runs and tests.
// It enforces the same (user, target) uniqueness as the Mongo index.
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews map[primitive.ObjectID]*domain.Review
	byOwner map[userTarget]primitive.ObjectID
	now     func() time.Time
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		reviews: make(map[primitive.ObjectID]*domain.Review),
		byOwner: make(map[userTarget]primitive.ObjectID),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *ReviewRepository) Create(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := userTarget{userID: review.UserID, targetID: review.TargetID}
	if _, exists := r.byOwner[key]; exists {
		return domain.ErrReviewAlreadyExists
	}

	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	now := r.now()
	review.CreatedAt = now
	review.UpdatedAt = now

	r.reviews[review.ID] = cloneReview(review)
	r.byOwner[key] = review.ID
	return nil
}

func (r *ReviewRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	review, ok := r.reviews[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneReview(review), nil
}

func (r *ReviewRepository) FindByUserAndTarget(_ context.Context, userID, targetID string) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byOwner[userTarget{userID: userID, targetID: targetID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneReview(r.reviews[id]), nil
}

func (r *ReviewRepository) Update(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.reviews[review.ID]
	if !ok {
		return domain.ErrNotFound
	}
	review.UpdatedAt = r.now()

	stored.Rating = review.Rating
	stored.Title = review.Title
	stored.Comment = review.Comment
	stored.Images = append([]string{}, review.Images...)
	stored.IsEdited = review.IsEdited
	stored.UpdatedAt = review.UpdatedAt
	return nil
}

func (r *ReviewRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	review, ok := r.reviews[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.byOwner, userTarget{userID: review.UserID, targetID: review.TargetID})
	delete(r.reviews, id)
	return nil
}

func (r *ReviewRepository) IncrementHelpfulVotes(_ context.Context, id primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	review, ok := r.reviews[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	review.HelpfulVotes++
	return review.HelpfulVotes, nil
}

func (r *ReviewRepository) List(_ context.Context, query domain.ReviewQuery, filter domain.ReviewFilter) ([]*domain.Review, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	matched := make([]*domain.Review, 0)
	for _, review := range r.reviews {
		if matches(review, query, filter) {
			matched = append(matched, cloneReview(review))
		}
	}
	r.mu.RUnlock()

	less := lessFunc(filter.SortBy)
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if filter.Order < 0 {
			a, b = b, a
		}
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.ID.Hex() < b.ID.Hex()
	})

	total := int64(len(matched))
	start := filter.Skip()
	if start >= total {
		return []*domain.Review{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *ReviewRepository) FindAllByTarget(_ context.Context, targetID string, targetType domain.TargetType) ([]*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Review, 0)
	for _, review := range r.reviews {
		if review.TargetID == targetID && review.TargetType == targetType {
			out = append(out, cloneReview(review))
		}
	}
	return out, nil
}

func (r *ReviewRepository) Ping(context.Context) error {
	return nil
}

func matches(review *domain.Review, query domain.ReviewQuery, filter domain.ReviewFilter) bool {
	if query.UserID != "" && review.UserID != query.UserID {
		return false
	}
	if query.TargetID != "" && (review.TargetID != query.TargetID || review.TargetType != query.TargetType) {
		return false
	}
	if filter.Rating != nil && review.Rating != *filter.Rating {
		return false
	}
	return true
}

func lessFunc(sortBy string) func(a, b *domain.Review) bool {
	switch sortBy {
	case "updatedAt":
		return func(a, b *domain.Review) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case "rating":
		return func(a, b *domain.Review) bool { return a.Rating < b.Rating }
	case "helpfulVotes":
		return func(a, b *domain.Review) bool { return a.HelpfulVotes < b.HelpfulVotes }
	default:
		return func(a, b *domain.Review) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

func cloneReview(r *domain.Review) *domain.Review {
	c := *r
	if r.Images != nil {
		c.Images = append([]string{}, r.Images...)
	}
	return &c
}
