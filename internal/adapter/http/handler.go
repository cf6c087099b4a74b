package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Abdurahmanit/review-service/internal/domain"
	"github.com/Abdurahmanit/review-service/internal/middleware"
	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"github.com/Abdurahmanit/review-service/internal/usecase"
	"github.com/Abdurahmanit/review-service/internal/validator"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// ReviewHandler serves the review REST API.
type ReviewHandler struct {
	usecase *usecase.ReviewUsecase
	logger  *logger.Logger
}

// NewReviewHandler creates a new HTTP handler for the review service.
func NewReviewHandler(uc *usecase.ReviewUsecase, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		usecase: uc,
		logger:  log.Named("ReviewHTTPHandler"),
	}
}

// AddReview handles POST /api/v1/reviews
func (h *ReviewHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, domain.ErrUnauthorized)
		return
	}

	var req createReviewRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.usecase.AddReview(r.Context(), identity.UserID, req.toInput(), middleware.TokenFromContext(r.Context()))
	if err != nil {
		h.logger.Warn("AddReview failed", zap.String("user_id", identity.UserID), zap.Error(err))
		writeError(w, r, h.logger, err)
		return
	}

	review := toReviewWithAuthorResponse(result)
	writeJSON(w, http.StatusCreated, messageResponse{Message: "Review added successfully", Review: &review})
}

// GetReview handles GET /api/v1/reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, err := reviewID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.usecase.GetReview(r.Context(), id, middleware.BearerToken(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewWithAuthorResponse(result))
}

// ListProductReviews handles GET /api/v1/reviews/product/{productId}
func (h *ReviewHandler) ListProductReviews(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if err := validator.ObjectID("productId", productID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	filter, err := parseListQuery(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	page, err := h.usecase.ListProductReviews(r.Context(), productID, filter, middleware.BearerToken(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewListResponse(page))
}

// ListSellerReviews handles GET /api/v1/reviews/seller/{sellerId}
func (h *ReviewHandler) ListSellerReviews(w http.ResponseWriter, r *http.Request) {
	sellerID := chi.URLParam(r, "sellerId")
	if err := validator.ObjectID("sellerId", sellerID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	filter, err := parseListQuery(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	page, err := h.usecase.ListSellerReviews(r.Context(), sellerID, filter, middleware.BearerToken(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewListResponse(page))
}

// ListMyReviews handles GET /api/v1/reviews/user/my-reviews
func (h *ReviewHandler) ListMyReviews(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, domain.ErrUnauthorized)
		return
	}
	filter, err := parseListQuery(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	page, err := h.usecase.ListUserReviews(r.Context(), identity.UserID, filter, middleware.TokenFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp := toReviewListResponse(page)
	resp.Summary = nil
	writeJSON(w, http.StatusOK, resp)
}

// UpdateReview handles PATCH /api/v1/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, domain.ErrUnauthorized)
		return
	}
	id, err := reviewID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req updateReviewRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.usecase.UpdateReview(r.Context(), id, identity.UserID, req.toInput(), middleware.TokenFromContext(r.Context()))
	if err != nil {
		h.logger.Warn("UpdateReview failed", zap.String("review_id", id.Hex()), zap.String("user_id", identity.UserID), zap.Error(err))
		writeError(w, r, h.logger, err)
		return
	}

	review := toReviewWithAuthorResponse(result)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Review updated successfully", Review: &review})
}

// DeleteReview handles DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, domain.ErrUnauthorized)
		return
	}
	id, err := reviewID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.usecase.DeleteReview(r.Context(), id, identity.UserID, identity.IsAdmin(), middleware.TokenFromContext(r.Context())); err != nil {
		h.logger.Warn("DeleteReview failed", zap.String("review_id", id.Hex()), zap.String("user_id", identity.UserID), zap.Error(err))
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Review deleted successfully"})
}

// MarkHelpful handles POST /api/v1/reviews/helpful/{id}
func (h *ReviewHandler) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	id, err := reviewID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	votes, err := h.usecase.MarkHelpful(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, helpfulResponse{Message: "Review marked as helpful", HelpfulVotes: votes})
}

// Health handles GET /health
func (h *ReviewHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.usecase.Ping(r.Context()); err != nil {
		h.logger.Error("Health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ReviewHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func reviewID(r *http.Request) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, "id")
	if err := validator.ObjectID("id", raw); err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(raw)
}
