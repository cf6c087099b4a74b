package mongodb

import (
	"time"

	"github.com/Abdurahmanit/review-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type reviewDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	UserID             string             `bson:"user_id"`
	TargetID           string             `bson:"target_id"`
	TargetType         string             `bson:"target_type"`
	Rating             int                `bson:"rating"`
	Title              string             `bson:"title,omitempty"`
	Comment            string             `bson:"comment"`
	IsVerifiedPurchase bool               `bson:"is_verified_purchase"`
	IsEdited           bool               `bson:"is_edited"`
	HelpfulVotes       int64              `bson:"helpful_votes"`
	Images             []string           `bson:"images"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

// sortFields maps wire sort keys to document fields.
var sortFields = map[string]string{
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"rating":       "rating",
	"helpfulVotes": "helpful_votes",
}

func fromDomainReview(r *domain.Review) *reviewDocument {
	images := r.Images
	if images == nil {
		images = []string{}
	}
	return &reviewDocument{
		ID:                 r.ID,
		UserID:             r.UserID,
		TargetID:           r.TargetID,
		TargetType:         string(r.TargetType),
		Rating:             int(r.Rating),
		Title:              r.Title,
		Comment:            r.Comment,
		IsVerifiedPurchase: r.IsVerifiedPurchase,
		IsEdited:           r.IsEdited,
		HelpfulVotes:       r.HelpfulVotes,
		Images:             images,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func (d *reviewDocument) toDomainReview() *domain.Review {
	return &domain.Review{
		ID:                 d.ID,
		UserID:             d.UserID,
		TargetID:           d.TargetID,
		TargetType:         domain.TargetType(d.TargetType),
		Rating:             domain.Rating(d.Rating),
		Title:              d.Title,
		Comment:            d.Comment,
		IsVerifiedPurchase: d.IsVerifiedPurchase,
		IsEdited:           d.IsEdited,
		HelpfulVotes:       d.HelpfulVotes,
		Images:             d.Images,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}
