package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/review-service/internal/domain"
	"github.com/Abdurahmanit/review-service/internal/platform/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const reviewCollectionName = "reviews"

// ReviewRepository implements domain.ReviewRepository on MongoDB.
type ReviewRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewReviewRepository ensures the collection indexes and returns the repository.
// The unique (user_id, target_id) index is what actually prevents duplicate
// reviews, so failing to create it fails construction.
func NewReviewRepository(ctx context.Context, db *mongo.Database, log *logger.Logger) (*ReviewRepository, error) {
	collection := db.Collection(reviewCollectionName)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "target_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_user_target"),
		},
		{Keys: bson.D{{Key: "target_id", Value: 1}, {Key: "target_type", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for reviews collection", zap.Error(err))
		return nil, fmt.Errorf("create indexes for %s: %w", reviewCollectionName, err)
	}
	log.Info("Successfully ensured indexes for reviews collection")

	return &ReviewRepository{
		collection: collection,
		logger:     log.Named("ReviewRepository"),
	}, nil
}

// Create inserts a new review, assigning its ID and timestamps.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	r.logger.Debug("Creating review in DB", zap.String("target_id", review.TargetID), zap.String("user_id", review.UserID))

	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, fromDomainReview(review)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate key error on review creation",
				zap.String("target_id", review.TargetID), zap.String("user_id", review.UserID))
			return domain.ErrReviewAlreadyExists
		}
		r.logger.Error("Failed to insert review into DB", zap.Error(err))
		return fmt.Errorf("%w: insert review: %v", domain.ErrRepository, err)
	}
	r.logger.Info("Review created in DB", zap.String("review_id", review.ID.Hex()))
	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ReviewRepository) FindByUserAndTarget(ctx context.Context, userID, targetID string) (*domain.Review, error) {
	return r.findOne(ctx, bson.M{"user_id": userID, "target_id": targetID})
}

func (r *ReviewRepository) findOne(ctx context.Context, filter bson.M) (*domain.Review, error) {
	var doc reviewDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to find review in DB", zap.Error(err), zap.Any("filter", filter))
		return nil, fmt.Errorf("%w: find review: %v", domain.ErrRepository, err)
	}
	return doc.toDomainReview(), nil
}

// Update writes the mutable fields of the review.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	if review.ID.IsZero() {
		return fmt.Errorf("%w: cannot update review without ID", domain.ErrInvalidInput)
	}
	review.UpdatedAt = time.Now().UTC()
	doc := fromDomainReview(review)

	update := bson.M{
		"$set": bson.M{
			"rating":     doc.Rating,
			"title":      doc.Title,
			"comment":    doc.Comment,
			"images":     doc.Images,
			"is_edited":  doc.IsEdited,
			"updated_at": doc.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": doc.ID}, update)
	if err != nil {
		r.logger.Error("Failed to update review in DB", zap.Error(err), zap.String("review_id", doc.ID.Hex()))
		return fmt.Errorf("%w: update review: %v", domain.ErrRepository, err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("Review updated in DB", zap.String("review_id", doc.ID.Hex()))
	return nil
}

// Delete removes a review permanently.
func (r *ReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete review from DB", zap.Error(err), zap.String("review_id", id.Hex()))
		return fmt.Errorf("%w: delete review: %v", domain.ErrRepository, err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("Review deleted from DB", zap.String("review_id", id.Hex()))
	return nil
}

// IncrementHelpfulVotes uses $inc so concurrent votes are never lost.
func (r *ReviewRepository) IncrementHelpfulVotes(ctx context.Context, id primitive.ObjectID) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"helpful_votes": 1})

	var doc reviewDocument
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"helpful_votes": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, domain.ErrNotFound
		}
		r.logger.Error("Failed to increment helpful votes", zap.Error(err), zap.String("review_id", id.Hex()))
		return 0, fmt.Errorf("%w: increment helpful votes: %v", domain.ErrRepository, err)
	}
	return doc.HelpfulVotes, nil
}

// List returns one page of reviews plus the total match count.
func (r *ReviewRepository) List(ctx context.Context, query domain.ReviewQuery, filter domain.ReviewFilter) ([]*domain.Review, int64, error) {
	r.logger.Debug("Listing reviews from DB", zap.Any("query", query), zap.Any("filter", filter))

	mongoQuery := buildQuery(query, filter)

	sortField, ok := sortFields[filter.SortBy]
	if !ok {
		return nil, 0, fmt.Errorf("%w: unsupported sortBy %q", domain.ErrInvalidInput, filter.SortBy)
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: sortField, Value: filter.Order}, {Key: "_id", Value: filter.Order}}).
		SetSkip(filter.Skip()).
		SetLimit(filter.Limit)

	cursor, err := r.collection.Find(ctx, mongoQuery, findOptions)
	if err != nil {
		r.logger.Error("Failed to find reviews in DB", zap.Error(err))
		return nil, 0, fmt.Errorf("%w: find reviews: %v", domain.ErrRepository, err)
	}
	defer cursor.Close(ctx)

	var docs []*reviewDocument
	if err = cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode reviews from DB", zap.Error(err))
		return nil, 0, fmt.Errorf("%w: decode reviews: %v", domain.ErrRepository, err)
	}

	total, err := r.collection.CountDocuments(ctx, mongoQuery)
	if err != nil {
		r.logger.Error("Failed to count reviews in DB", zap.Error(err))
		return nil, 0, fmt.Errorf("%w: count reviews: %v", domain.ErrRepository, err)
	}

	reviews := make([]*domain.Review, len(docs))
	for i, doc := range docs {
		reviews[i] = doc.toDomainReview()
	}
	return reviews, total, nil
}

func buildQuery(query domain.ReviewQuery, filter domain.ReviewFilter) bson.M {
	q := bson.M{}
	if query.UserID != "" {
		q["user_id"] = query.UserID
	}
	if query.TargetID != "" {
		q["target_id"] = query.TargetID
		q["target_type"] = string(query.TargetType)
	}
	if filter.Rating != nil {
		q["rating"] = int(*filter.Rating)
	}
	return q
}

// FindAllByTarget loads only the fields a summary needs.
func (r *ReviewRepository) FindAllByTarget(ctx context.Context, targetID string, targetType domain.TargetType) ([]*domain.Review, error) {
	opts := options.Find().SetProjection(bson.M{"rating": 1, "is_verified_purchase": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"target_id": targetID, "target_type": string(targetType)}, opts)
	if err != nil {
		r.logger.Error("Failed to load reviews for summary", zap.Error(err), zap.String("target_id", targetID))
		return nil, fmt.Errorf("%w: find target reviews: %v", domain.ErrRepository, err)
	}
	defer cursor.Close(ctx)

	var docs []*reviewDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode target reviews: %v", domain.ErrRepository, err)
	}

	reviews := make([]*domain.Review, len(docs))
	for i, doc := range docs {
		reviews[i] = doc.toDomainReview()
	}
	return reviews, nil
}

// Ping checks the primary is reachable.
func (r *ReviewRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, readpref.Primary())
}
