package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Abdurahmanit/review-service/internal/domain"
	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"github.com/Abdurahmanit/review-service/internal/platform/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxAuthorLookups bounds concurrent user-service calls per listing.
const maxAuthorLookups = 8

// ReviewUsecase implements the business logic for reviews.
type ReviewUsecase struct {
	repo      domain.ReviewRepository
	products  domain.ProductService
	users     domain.UserService
	purchases domain.PurchaseVerifier
	events    domain.EventPublisher
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

// NewReviewUsecase creates a new ReviewUsecase. metrics may be nil.
func NewReviewUsecase(
	repo domain.ReviewRepository,
	products domain.ProductService,
	users domain.UserService,
	purchases domain.PurchaseVerifier,
	events domain.EventPublisher,
	mm *metrics.MetricsManager,
	log *logger.Logger,
) *ReviewUsecase {
	return &ReviewUsecase{
		repo:      repo,
		products:  products,
		users:     users,
		purchases: purchases,
		events:    events,
		metrics:   mm,
		logger:    log.Named("ReviewUsecase"),
	}
}

// AddReview creates a review by userID.
func (uc *ReviewUsecase) AddReview(ctx context.Context, userID string, in domain.CreateReviewInput, token string) (*domain.ReviewWithAuthor, error) {
	uc.logger.Info("Adding review",
		zap.String("user_id", userID),
		zap.String("target_id", in.TargetID),
		zap.String("target_type", string(in.TargetType)))

	var verified bool
	switch in.TargetType {
	case domain.TargetTypeProduct:
		if _, err := uc.products.GetProduct(ctx, in.TargetID, token); err != nil {
			uc.logger.Warn("Product check failed", zap.String("product_id", in.TargetID), zap.Error(err))
			return nil, err
		}
		verified = uc.verifyPurchase(ctx, userID, in.TargetID, token).Value
	case domain.TargetTypeSeller:
		verified = true
	default:
		return nil, fmt.Errorf("%w: invalid target type %q", domain.ErrInvalidInput, in.TargetType)
	}

	// Advisory only: the store's unique index settles races.
	if _, err := uc.repo.FindByUserAndTarget(ctx, userID, in.TargetID); err == nil {
		return nil, fmt.Errorf("%w: you have already reviewed this %s", domain.ErrReviewAlreadyExists, in.TargetType)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	review, err := domain.NewReview(userID, in, verified)
	if err != nil {
		return nil, err
	}

	author, err := uc.author(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, review); err != nil {
		if errors.Is(err, domain.ErrReviewAlreadyExists) {
			return nil, fmt.Errorf("%w: you have already reviewed this %s", domain.ErrReviewAlreadyExists, in.TargetType)
		}
		uc.logger.Error("Failed to save review to repository", zap.Error(err))
		return nil, err
	}
	uc.metrics.RecordReviewCreated(string(review.TargetType))

	if review.TargetType == domain.TargetTypeProduct {
		uc.syncProductRating(ctx, review.TargetID, token)
	}
	uc.publish(ctx, domain.SubjectReviewCreated, reviewEvent(review))

	uc.logger.Info("Review added", zap.String("review_id", review.ID.Hex()))
	return withAuthor(review, author), nil
}

// GetReview returns a review with its author. Anyone may read any review.
func (uc *ReviewUsecase) GetReview(ctx context.Context, id primitive.ObjectID, token string) (*domain.ReviewWithAuthor, error) {
	review, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	author, err := uc.author(ctx, review.UserID, token)
	if err != nil {
		return nil, err
	}
	return withAuthor(review, author), nil
}

// ListProductReviews lists a product's reviews with the product's summary.
func (uc *ReviewUsecase) ListProductReviews(ctx context.Context, productID string, filter domain.ReviewFilter, token string) (*domain.ReviewPage, error) {
	return uc.listTargetReviews(ctx, productID, domain.TargetTypeProduct, filter, token)
}

// ListSellerReviews lists a seller's reviews with the seller's summary.
func (uc *ReviewUsecase) ListSellerReviews(ctx context.Context, sellerID string, filter domain.ReviewFilter, token string) (*domain.ReviewPage, error) {
	return uc.listTargetReviews(ctx, sellerID, domain.TargetTypeSeller, filter, token)
}

func (uc *ReviewUsecase) listTargetReviews(ctx context.Context, targetID string, targetType domain.TargetType, filter domain.ReviewFilter, token string) (*domain.ReviewPage, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	reviews, total, err := uc.repo.List(ctx, domain.ReviewQuery{TargetID: targetID, TargetType: targetType}, filter)
	if err != nil {
		return nil, err
	}

	// The summary always covers every review of the target, whatever the filter.
	summary, err := uc.Summary(ctx, targetID, targetType)
	if err != nil {
		return nil, err
	}

	enriched, err := uc.enrich(ctx, reviews, token)
	if err != nil {
		return nil, err
	}

	return &domain.ReviewPage{
		Reviews: enriched,
		Total:   total,
		Pages:   domain.PageCount(total, filter.Limit),
		Summary: &summary,
	}, nil
}

// ListUserReviews lists the reviews written by userID. The rating filter does not apply.
func (uc *ReviewUsecase) ListUserReviews(ctx context.Context, userID string, filter domain.ReviewFilter, token string) (*domain.ReviewPage, error) {
	filter.Rating = nil
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	reviews, total, err := uc.repo.List(ctx, domain.ReviewQuery{UserID: userID}, filter)
	if err != nil {
		return nil, err
	}

	author, err := uc.author(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.ReviewWithAuthor, len(reviews))
	for i, r := range reviews {
		out[i] = withAuthor(r, author)
	}
	return &domain.ReviewPage{
		Reviews: out,
		Total:   total,
		Pages:   domain.PageCount(total, filter.Limit),
	}, nil
}

// Summary recomputes a target's rating summary from all of its reviews.
func (uc *ReviewUsecase) Summary(ctx context.Context, targetID string, targetType domain.TargetType) (domain.ReviewsSummary, error) {
	reviews, err := uc.repo.FindAllByTarget(ctx, targetID, targetType)
	if err != nil {
		return domain.ReviewsSummary{}, err
	}
	return domain.ComputeSummary(reviews), nil
}

// UpdateReview applies a partial update. Only the author may update a review.
func (uc *ReviewUsecase) UpdateReview(ctx context.Context, id primitive.ObjectID, userID string, in domain.UpdateReviewInput, token string) (*domain.ReviewWithAuthor, error) {
	uc.logger.Info("Updating review", zap.String("review_id", id.Hex()), zap.String("user_id", userID))

	if in.IsEmpty() {
		return nil, fmt.Errorf("%w: at least one field must be provided for update", domain.ErrInvalidInput)
	}
	if in.Rating != nil && !in.Rating.IsValid() {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidInput)
	}

	review, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !review.IsOwnedBy(userID) {
		uc.logger.Warn("User forbidden to update review",
			zap.String("review_id", id.Hex()),
			zap.String("review_author", review.UserID),
			zap.String("requesting_user", userID))
		return nil, fmt.Errorf("%w: you can only update your own reviews", domain.ErrForbidden)
	}

	author, err := uc.author(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	review.Apply(in)
	if err := uc.repo.Update(ctx, review); err != nil {
		return nil, err
	}
	uc.metrics.RecordReviewUpdated()

	if review.TargetType == domain.TargetTypeProduct {
		uc.syncProductRating(ctx, review.TargetID, token)
	}
	uc.publish(ctx, domain.SubjectReviewUpdated, reviewEvent(review))

	return withAuthor(review, author), nil
}

// DeleteReview removes a review. The author or an admin may delete it.
func (uc *ReviewUsecase) DeleteReview(ctx context.Context, id primitive.ObjectID, userID string, isAdmin bool, token string) error {
	uc.logger.Info("Deleting review", zap.String("review_id", id.Hex()), zap.String("user_id", userID), zap.Bool("is_admin", isAdmin))

	review, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !review.IsOwnedBy(userID) && !isAdmin {
		uc.logger.Warn("User forbidden to delete review",
			zap.String("review_id", id.Hex()),
			zap.String("review_author", review.UserID),
			zap.String("requesting_user", userID))
		return fmt.Errorf("%w: you can only delete your own reviews", domain.ErrForbidden)
	}

	targetID, targetType := review.TargetID, review.TargetType
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.metrics.RecordReviewDeleted()

	if targetType == domain.TargetTypeProduct {
		uc.syncProductRating(ctx, targetID, token)
	}
	uc.publish(ctx, domain.SubjectReviewDeleted, map[string]interface{}{
		"review_id":   id.Hex(),
		"user_id":     review.UserID,
		"target_id":   targetID,
		"target_type": targetType,
		"deleted_by":  userID,
		"deleted_at":  time.Now().UTC().Format(time.RFC3339Nano),
	})
	return nil
}

// MarkHelpful adds one helpful vote. No identity is required and repeat votes count.
func (uc *ReviewUsecase) MarkHelpful(ctx context.Context, id primitive.ObjectID) (int64, error) {
	votes, err := uc.repo.IncrementHelpfulVotes(ctx, id)
	if err != nil {
		return 0, err
	}
	uc.metrics.RecordHelpfulVote()
	uc.publish(ctx, domain.SubjectReviewHelpful, map[string]interface{}{
		"review_id":     id.Hex(),
		"helpful_votes": votes,
	})
	return votes, nil
}

// Ping reports store health.
func (uc *ReviewUsecase) Ping(ctx context.Context) error {
	return uc.repo.Ping(ctx)
}

// syncProductRating pushes the product's fresh summary to the catalog.
// Failures are logged and reported in the result, never returned as errors.
func (uc *ReviewUsecase) syncProductRating(ctx context.Context, productID, token string) domain.BestEffort[domain.ReviewsSummary] {
	summary, err := uc.Summary(ctx, productID, domain.TargetTypeProduct)
	if err == nil {
		err = uc.products.UpdateRating(ctx, productID, summary.AverageRating, summary.TotalReviews, token)
	}
	uc.metrics.RecordRatingSync(err == nil)
	if err != nil {
		uc.logger.Error("Failed to sync product rating", zap.String("product_id", productID), zap.Error(err))
		return domain.BestEffort[domain.ReviewsSummary]{Value: summary, Err: err}
	}
	uc.logger.Debug("Product rating synced",
		zap.String("product_id", productID),
		zap.Float64("average_rating", summary.AverageRating),
		zap.Int64("total_reviews", summary.TotalReviews))
	return domain.BestEffort[domain.ReviewsSummary]{Value: summary}
}

// verifyPurchase defaults to unverified on failure.
func (uc *ReviewUsecase) verifyPurchase(ctx context.Context, userID, productID, token string) domain.BestEffort[bool] {
	ok, err := uc.purchases.VerifyPurchase(ctx, userID, productID, token)
	if err != nil {
		uc.metrics.RecordPurchaseVerification("failed")
		uc.logger.Warn("Purchase verification failed, treating as unverified",
			zap.String("user_id", userID), zap.String("product_id", productID), zap.Error(err))
		return domain.BestEffort[bool]{Value: false, Err: err}
	}
	if ok {
		uc.metrics.RecordPurchaseVerification("verified")
	} else {
		uc.metrics.RecordPurchaseVerification("unverified")
	}
	return domain.BestEffort[bool]{Value: ok}
}

func (uc *ReviewUsecase) author(ctx context.Context, userID, token string) (*domain.UserProfile, error) {
	profile, err := uc.users.GetUser(ctx, userID, token)
	if err != nil {
		uc.logger.Error("Failed to get user details", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: failed to get user details for %s: %v", domain.ErrUpstream, userID, err)
	}
	return profile, nil
}

// enrich resolves each distinct author once, concurrently. Any failure fails the whole call.
func (uc *ReviewUsecase) enrich(ctx context.Context, reviews []*domain.Review, token string) ([]*domain.ReviewWithAuthor, error) {
	var (
		mu      sync.Mutex
		authors = make(map[string]*domain.UserProfile)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxAuthorLookups)

	seen := make(map[string]struct{}, len(reviews))
	for _, r := range reviews {
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}

		userID := r.UserID
		g.Go(func() error {
			profile, err := uc.author(gctx, userID, token)
			if err != nil {
				return err
			}
			mu.Lock()
			authors[userID] = profile
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*domain.ReviewWithAuthor, len(reviews))
	for i, r := range reviews {
		out[i] = withAuthor(r, authors[r.UserID])
	}
	return out, nil
}

func (uc *ReviewUsecase) publish(ctx context.Context, subject string, data interface{}) {
	if err := uc.events.Publish(ctx, subject, data); err != nil {
		uc.logger.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

func withAuthor(r *domain.Review, author *domain.UserProfile) *domain.ReviewWithAuthor {
	return &domain.ReviewWithAuthor{
		Review:     r,
		UserName:   author.DisplayName(),
		UserAvatar: author.Avatar,
	}
}

func reviewEvent(r *domain.Review) map[string]interface{} {
	return map[string]interface{}{
		"review_id":            r.ID.Hex(),
		"user_id":              r.UserID,
		"target_id":            r.TargetID,
		"target_type":          r.TargetType,
		"rating":               r.Rating,
		"is_verified_purchase": r.IsVerifiedPurchase,
		"is_edited":            r.IsEdited,
		"updated_at":           r.UpdatedAt.Format(time.RFC3339Nano),
	}
}
