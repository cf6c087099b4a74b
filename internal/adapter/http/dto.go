package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Abdurahmanit/review-service/internal/domain"
	"github.com/Abdurahmanit/review-service/internal/validator"
)

// --- Request DTOs ---

type createReviewRequest struct {
	TargetID   string   `json:"targetId" validate:"required,objectid"`
	TargetType string   `json:"targetType" validate:"required,oneof=product seller"`
	Rating     int      `json:"rating" validate:"required,min=1,max=5"`
	Title      string   `json:"title" validate:"max=100"`
	Comment    string   `json:"comment" validate:"required,min=2,max=1000"`
	Images     []string `json:"images" validate:"omitempty,dive,url"`
}

func (req createReviewRequest) toInput() domain.CreateReviewInput {
	return domain.CreateReviewInput{
		TargetID:   req.TargetID,
		TargetType: domain.TargetType(req.TargetType),
		Rating:     domain.Rating(req.Rating),
		Title:      req.Title,
		Comment:    req.Comment,
		Images:     req.Images,
	}
}

// updateReviewRequest distinguishes omitted (nil) from present fields.
type updateReviewRequest struct {
	Rating  *int      `json:"rating" validate:"omitnil,min=1,max=5"`
	Title   *string   `json:"title" validate:"omitnil,max=100"`
	Comment *string   `json:"comment" validate:"omitnil,min=2,max=1000"`
	Images  *[]string `json:"images" validate:"omitnil,dive,url"`
}

func (req updateReviewRequest) toInput() domain.UpdateReviewInput {
	in := domain.UpdateReviewInput{
		Title:   req.Title,
		Comment: req.Comment,
	}
	if req.Rating != nil {
		rating := domain.Rating(*req.Rating)
		in.Rating = &rating
	}
	if req.Images != nil {
		in.Images = append([]string{}, *req.Images...)
	}
	return in
}

type listReviewsQuery struct {
	SortBy string `query:"sortBy" validate:"omitempty,oneof=createdAt updatedAt rating helpfulVotes"`
	Order  string `query:"order" validate:"omitempty,oneof=1 -1"`
	Limit  string `query:"limit" validate:"omitempty,number"`
	Page   string `query:"page" validate:"omitempty,number"`
	Rating string `query:"rating" validate:"omitempty,oneof=1 2 3 4 5"`
}

// parseListQuery validates the listing query string and applies defaults.
func parseListQuery(r *http.Request) (domain.ReviewFilter, error) {
	q := r.URL.Query()
	raw := listReviewsQuery{
		SortBy: q.Get("sortBy"),
		Order:  q.Get("order"),
		Limit:  q.Get("limit"),
		Page:   q.Get("page"),
		Rating: q.Get("rating"),
	}
	filter := domain.NewReviewFilter()
	if err := validator.Validate(raw); err != nil {
		return filter, err
	}

	if raw.SortBy != "" {
		filter.SortBy = raw.SortBy
	}
	if raw.Order != "" {
		filter.Order, _ = strconv.Atoi(raw.Order)
	}
	if raw.Limit != "" {
		limit, err := strconv.ParseInt(raw.Limit, 10, 64)
		if err != nil {
			return filter, validator.NewFieldError("limit", "must be a non-negative integer")
		}
		filter.Limit = limit
	}
	if raw.Page != "" {
		page, err := strconv.ParseInt(raw.Page, 10, 64)
		if err != nil {
			return filter, validator.NewFieldError("page", "must be a non-negative integer")
		}
		filter.Page = page
	}
	if raw.Rating != "" {
		n, _ := strconv.Atoi(raw.Rating)
		rating := domain.Rating(n)
		filter.Rating = &rating
	}

	if filter.Limit < 1 || filter.Limit > domain.MaxLimit {
		return filter, validator.NewFieldError("limit", "must be between 1 and "+strconv.Itoa(domain.MaxLimit))
	}
	if filter.Page < 1 {
		return filter, validator.NewFieldError("page", "must be at least 1")
	}
	return filter, nil
}

// --- Response DTOs ---

type reviewResponse struct {
	ID                 string    `json:"_id"`
	User               string    `json:"user"`
	TargetID           string    `json:"targetId"`
	TargetType         string    `json:"targetType"`
	Rating             int       `json:"rating"`
	Title              string    `json:"title,omitempty"`
	Comment            string    `json:"comment"`
	IsVerifiedPurchase bool      `json:"isVerifiedPurchase"`
	IsEdited           bool      `json:"isEdited"`
	HelpfulVotes       int64     `json:"helpfulVotes"`
	Images             []string  `json:"images"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type reviewWithAuthorResponse struct {
	Review     reviewResponse `json:"review"`
	UserName   string         `json:"userName"`
	UserAvatar string         `json:"userAvatar,omitempty"`
}

type messageResponse struct {
	Message string                    `json:"message"`
	Review  *reviewWithAuthorResponse `json:"review,omitempty"`
}

type helpfulResponse struct {
	Message      string `json:"message"`
	HelpfulVotes int64  `json:"helpfulVotes"`
}

type reviewListResponse struct {
	Reviews []reviewWithAuthorResponse `json:"reviews"`
	Total   int64                      `json:"total"`
	Pages   int64                      `json:"pages"`
	Summary *domain.ReviewsSummary     `json:"summary,omitempty"`
}

func toReviewResponse(r *domain.Review) reviewResponse {
	images := r.Images
	if images == nil {
		images = []string{}
	}
	return reviewResponse{
		ID:                 r.ID.Hex(),
		User:               r.UserID,
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

func toReviewWithAuthorResponse(rw *domain.ReviewWithAuthor) reviewWithAuthorResponse {
	return reviewWithAuthorResponse{
		Review:     toReviewResponse(rw.Review),
		UserName:   rw.UserName,
		UserAvatar: rw.UserAvatar,
	}
}

func toReviewListResponse(page *domain.ReviewPage) reviewListResponse {
	reviews := make([]reviewWithAuthorResponse, len(page.Reviews))
	for i, rw := range page.Reviews {
		reviews[i] = toReviewWithAuthorResponse(rw)
	}
	return reviewListResponse{
		Reviews: reviews,
		Total:   page.Total,
		Pages:   page.Pages,
		Summary: page.Summary,
	}
}
