package offerRepo

import (
	"context"
	"fmt"

	"fundigo/database"
	"fundigo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOfferRepo implements OfferRepository backed by the offers collection.
type MongoOfferRepo struct {
	coll *mongo.Collection
}

func NewMongoOfferRepo() *MongoOfferRepo {
	return &MongoOfferRepo{coll: database.Collection("offers")}
}

func (r *MongoOfferRepo) CreateMany(ctx context.Context, offers []models.Offer) error {
	if len(offers) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(offers))
	for _, o := range offers {
		docs = append(docs, o)
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert offers: %w", err)
	}
	return nil
}

func (r *MongoOfferRepo) GetPending(ctx context.Context, bookingID, providerID string) (*models.Offer, error) {
	filter := bson.M{
		"booking_id":     bookingID,
		"provider_id":    providerID,
		"response_state": models.OfferStatePending,
	}
	var offer models.Offer
	if err := r.coll.FindOne(ctx, filter).Decode(&offer); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch pending offer: %w", err)
	}
	return &offer, nil
}

func (r *MongoOfferRepo) MarkDeclined(ctx context.Context, offerID string) (bool, error) {
	filter := bson.M{"id": offerID, "response_state": models.OfferStatePending}
	update := bson.M{"$set": bson.M{"response_state": models.OfferStateDeclined}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to decline offer %s: %w", offerID, err)
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoOfferRepo) ExpirePendingInBatch(ctx context.Context, bookingID string, batchIndex int) (int64, error) {
	filter := bson.M{
		"booking_id":     bookingID,
		"batch_index":    batchIndex,
		"response_state": models.OfferStatePending,
	}
	update := bson.M{"$set": bson.M{"response_state": models.OfferStateExpired}}
	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to expire batch %d of booking %s: %w", batchIndex, bookingID, err)
	}
	return res.ModifiedCount, nil
}

func (r *MongoOfferRepo) CountPending(ctx context.Context, bookingID string) (int64, error) {
	filter := bson.M{"booking_id": bookingID, "response_state": models.OfferStatePending}
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending offers for booking %s: %w", bookingID, err)
	}
	return count, nil
}

func (r *MongoOfferRepo) DeleteBatch(ctx context.Context, bookingID string, batchIndex int) error {
	filter := bson.M{"booking_id": bookingID, "batch_index": batchIndex}
	if _, err := r.coll.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete batch %d of booking %s: %w", batchIndex, bookingID, err)
	}
	return nil
}

func (r *MongoOfferRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.Offer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "batch_index", Value: 1}, {Key: "issued_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers for booking %s: %w", bookingID, err)
	}
	defer cursor.Close(ctx)

	var offers []models.Offer
	if err := cursor.All(ctx, &offers); err != nil {
		return nil, fmt.Errorf("failed to decode offers: %w", err)
	}
	return offers, nil
}
