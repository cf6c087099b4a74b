package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetType identifies what kind of entity a review is about.
type TargetType string

const (
	TargetTypeProduct TargetType = "product"
	TargetTypeSeller  TargetType = "seller"
)

// IsValid checks if the TargetType is one of the defined constants.
func (t TargetType) IsValid() bool {
	switch t {
	case TargetTypeProduct, TargetTypeSeller:
		return true
	}
	return false
}

// Rating is a star rating between RatingPoor and RatingExcellent.
type Rating int

const (
	RatingPoor      Rating = 1
	RatingFair      Rating = 2
	RatingGood      Rating = 3
	RatingVeryGood  Rating = 4
	RatingExcellent Rating = 5
)

// RatingLevels lists every rating level in ascending order.
var RatingLevels = []Rating{RatingPoor, RatingFair, RatingGood, RatingVeryGood, RatingExcellent}

func (r Rating) IsValid() bool {
	return r >= RatingPoor && r <= RatingExcellent
}

// Role is the role claim carried by an access token.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
)

// Review represents a user's review for a product or seller.
// Storage mapping lives in the repository adapters.
type Review struct {
	ID                 primitive.ObjectID
	UserID             string
	TargetID           string
	TargetType         TargetType
	Rating             Rating
	Title              string
	Comment            string
	IsVerifiedPurchase bool
	IsEdited           bool
	HelpfulVotes       int64
	Images             []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewReview builds a review that has not been persisted yet.
// Timestamps and the ID are assigned by the store.
func NewReview(userID string, in CreateReviewInput, verified bool) (*Review, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id cannot be empty", ErrInvalidInput)
	}
	if in.TargetID == "" {
		return nil, fmt.Errorf("%w: target id cannot be empty", ErrInvalidInput)
	}
	if !in.TargetType.IsValid() {
		return nil, fmt.Errorf("%w: invalid target type %q", ErrInvalidInput, in.TargetType)
	}
	if !in.Rating.IsValid() {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	return &Review{
		UserID:             userID,
		TargetID:           in.TargetID,
		TargetType:         in.TargetType,
		Rating:             in.Rating,
		Title:              in.Title,
		Comment:            in.Comment,
		IsVerifiedPurchase: verified,
		Images:             in.Images,
	}, nil
}

// CreateReviewInput holds the validated payload of an add request.
type CreateReviewInput struct {
	TargetID   string
	TargetType TargetType
	Rating     Rating
	Title      string
	Comment    string
	Images     []string
}

// UpdateReviewInput is a partial update. A nil field was not sent and is left unchanged.
// Images uses a nil slice for "absent" and a non-nil (possibly empty) slice for "replace".
type UpdateReviewInput struct {
	Rating  *Rating
	Title   *string
	Comment *string
	Images  []string
}

// IsEmpty reports whether the update carries no fields at all.
func (in UpdateReviewInput) IsEmpty() bool {
	return in.Rating == nil && in.Title == nil && in.Comment == nil && in.Images == nil
}

// Apply merges the present fields into the review and marks it edited.
func (r *Review) Apply(in UpdateReviewInput) {
	if in.Rating != nil {
		r.Rating = *in.Rating
	}
	if in.Title != nil {
		r.Title = *in.Title
	}
	if in.Comment != nil {
		r.Comment = *in.Comment
	}
	if in.Images != nil {
		r.Images = append([]string{}, in.Images...)
	}
	r.IsEdited = true
}

// IsOwnedBy reports whether userID authored the review.
func (r *Review) IsOwnedBy(userID string) bool {
	return userID != "" && r.UserID == userID
}

// UserProfile is the author information shown next to a review.
type UserProfile struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar,omitempty"`
}

// DisplayName joins first and last name.
func (p UserProfile) DisplayName() string {
	return p.FirstName + " " + p.LastName
}

// Product is the subset of the catalog record the service needs.
type Product struct {
	ID         string  `json:"_id"`
	Name       string  `json:"name"`
	Rating     float64 `json:"rating"`
	NumReviews int64   `json:"numReviews"`
}

// ReviewWithAuthor is a review enriched with its author's display data.
type ReviewWithAuthor struct {
	Review     *Review
	UserName   string
	UserAvatar string
}

// ReviewPage is one page of a listing.
type ReviewPage struct {
	Reviews []*ReviewWithAuthor
	Total   int64
	Pages   int64
	// Summary is nil for "my reviews".
	Summary *ReviewsSummary
}
