package domain

import "fmt"

const (
	DefaultSortBy = "createdAt"
	DefaultOrder  = -1
	DefaultLimit  = 10
	DefaultPage   = 1
	MaxLimit      = 100
)

// SortFields lists the sortable review attributes by their wire name.
var SortFields = []string{"createdAt", "updatedAt", "rating", "helpfulVotes"}

// ReviewFilter holds parameters for querying reviews.
type ReviewFilter struct {
	SortBy string
	Order  int // 1 ascending, -1 descending
	Limit  int64
	Page   int64
	// Rating restricts a target listing to an exact rating.
	Rating *Rating
}

// NewReviewFilter returns the default listing filter.
func NewReviewFilter() ReviewFilter {
	return ReviewFilter{
		SortBy: DefaultSortBy,
		Order:  DefaultOrder,
		Limit:  DefaultLimit,
		Page:   DefaultPage,
	}
}

// Validate checks the ranges the stores rely on.
func (f ReviewFilter) Validate() error {
	if !isSortField(f.SortBy) {
		return fmt.Errorf("%w: unsupported sortBy %q", ErrInvalidInput, f.SortBy)
	}
	if f.Order != 1 && f.Order != -1 {
		return fmt.Errorf("%w: order must be 1 or -1", ErrInvalidInput)
	}
	if f.Limit < 1 || f.Limit > MaxLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxLimit)
	}
	if f.Page < 1 {
		return fmt.Errorf("%w: page must be at least 1", ErrInvalidInput)
	}
	if f.Rating != nil && !f.Rating.IsValid() {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	return nil
}

// Skip is the number of matching records before the requested page.
func (f ReviewFilter) Skip() int64 {
	return (f.Page - 1) * f.Limit
}

// PageCount returns ceil(total/limit).
func PageCount(total, limit int64) int64 {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func isSortField(s string) bool {
	for _, f := range SortFields {
		if f == s {
			return true
		}
	}
	return false
}

// ReviewQuery selects the reviews a listing runs over.
// Either UserID or the TargetID/TargetType pair is set.
type ReviewQuery struct {
	UserID     string
	TargetID   string
	TargetType TargetType
}
