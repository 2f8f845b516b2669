package reviewRepo

import (
	"context"
	"fmt"
	"time"

	"fundigo/database"
	"fundigo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateReview is returned when a (booking, direction) pair already
// has a review. The unique index makes the one-shot invariant hold even for
// concurrent creations.
var ErrDuplicateReview = fmt.Errorf("review already exists for booking and direction")

// ReviewRepository persists reviews; creation is one-shot per
// (bookingID, direction).
type ReviewRepository interface {
	Exists(ctx context.Context, bookingID, direction string) (bool, error)
	Create(ctx context.Context, review *models.Review) error
	ListByBooking(ctx context.Context, bookingID string) ([]models.Review, error)
}

// MongoReviewRepo implements ReviewRepository.
type MongoReviewRepo struct {
	coll *mongo.Collection
}

func NewMongoReviewRepo() *MongoReviewRepo {
	repo := &MongoReviewRepo{coll: database.Collection("reviews")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("review repo: failed to ensure indexes: %v\n", err)
	}
	return repo
}

func (r *MongoReviewRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	directionIdx := mongo.IndexModel{
		Keys: bson.D{
			{Key: "booking_id", Value: 1},
			{Key: "direction", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.coll.Indexes().CreateOne(ctx, directionIdx); err != nil {
		return fmt.Errorf("failed to create review indexes: %w", err)
	}
	return nil
}

func (r *MongoReviewRepo) Exists(ctx context.Context, bookingID, direction string) (bool, error) {
	filter := bson.M{"booking_id": bookingID, "direction": direction}
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}
	return count > 0, nil
}

func (r *MongoReviewRepo) Create(ctx context.Context, review *models.Review) error {
	if _, err := r.coll.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateReview
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

func (r *MongoReviewRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.Review, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"booking_id": bookingID})
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for booking %s: %w", bookingID, err)
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}
