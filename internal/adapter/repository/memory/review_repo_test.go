package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Abdurahmanit/review-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newReview(userID, targetID string, rating domain.Rating) *domain.Review {
	return &domain.Review{
		UserID:     userID,
		TargetID:   targetID,
		TargetType: domain.TargetTypeProduct,
		Rating:     rating,
		Comment:    "fine product",
	}
}

func TestCreate_RejectsDuplicateUserTarget(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newReview("u1", "t1", 5)))

	dup := newReview("u1", "t1", 3)
	dup.TargetType = domain.TargetTypeSeller
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrReviewAlreadyExists)

	assert.NoError(t, repo.Create(ctx, newReview("u2", "t1", 4)))
}

func TestCreate_ConcurrentInsertsOnlyOneWins(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	const attempts = 20
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, newReview("u1", "t1", 5))
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrReviewAlreadyExists):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, conflicts)
}

func TestDelete_FreesUserTargetSlot(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	r := newReview("u1", "t1", 5)
	require.NoError(t, repo.Create(ctx, r))
	require.NoError(t, repo.Delete(ctx, r.ID))

	_, err := repo.GetByID(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, repo.Create(ctx, newReview("u1", "t1", 2)))
}

func TestIncrementHelpfulVotes(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()
	r := newReview("u1", "t1", 5)
	require.NoError(t, repo.Create(ctx, r))

	for i := 1; i <= 3; i++ {
		votes, err := repo.IncrementHelpfulVotes(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(i), votes)
	}

	_, err := repo.IncrementHelpfulVotes(ctx, [12]byte{1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_PaginatesNewestFirst(t *testing.T) {
	repo := NewReviewRepository()
	repo.now = tickingClock()
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		require.NoError(t, repo.Create(ctx, newReview(fmt.Sprintf("user-%02d", i), "t1", 4)))
	}
	require.NoError(t, repo.Create(ctx, newReview("other", "t2", 4)))

	filter := domain.NewReviewFilter()
	filter.Page = 2

	page, total, err := repo.List(ctx, domain.ReviewQuery{TargetID: "t1", TargetType: domain.TargetTypeProduct}, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	require.Len(t, page, 10)
	// Newest first: page two holds the 11th..20th most recent reviews.
	assert.Equal(t, "user-15", page[0].UserID)
	assert.Equal(t, "user-06", page[9].UserID)

	filter.Page = 4
	page, total, err = repo.List(ctx, domain.ReviewQuery{TargetID: "t1", TargetType: domain.TargetTypeProduct}, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Empty(t, page)
}

func TestList_RatingFilterAndAscendingSort(t *testing.T) {
	repo := NewReviewRepository()
	repo.now = tickingClock()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newReview("a", "t1", 5)))
	require.NoError(t, repo.Create(ctx, newReview("b", "t1", 3)))
	require.NoError(t, repo.Create(ctx, newReview("c", "t1", 5)))

	five := domain.RatingExcellent
	filter := domain.NewReviewFilter()
	filter.Rating = &five
	filter.Order = 1

	page, total, err := repo.List(ctx, domain.ReviewQuery{TargetID: "t1", TargetType: domain.TargetTypeProduct}, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, page, 2)
	assert.Equal(t, "a", page[0].UserID)
	assert.Equal(t, "c", page[1].UserID)
}

func TestFindAllByTarget_SeparatesTargetTypes(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newReview("a", "t1", 5)))
	seller := newReview("b", "t1", 1)
	seller.TargetType = domain.TargetTypeSeller
	require.NoError(t, repo.Create(ctx, seller))

	products, err := repo.FindAllByTarget(ctx, "t1", domain.TargetTypeProduct)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}
