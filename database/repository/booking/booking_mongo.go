package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"fundigo/database"
	"fundigo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepo implements BookingRepository backed by MongoDB. It holds
// both the bookings and offers collections because accept/cancel must update
// the two atomically.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
	offerColl   *mongo.Collection
}

func NewMongoBookingRepo() *MongoBookingRepo {
	return &MongoBookingRepo{
		bookingColl: database.Collection("bookings"),
		offerColl:   database.Collection("offers"),
	}
}

func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if _, err := r.bookingColl.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) ArmBatch(ctx context.Context, bookingID string, batchIndex int, expiresAt time.Time, providerIDs []string) (bool, error) {
	filter := bson.M{
		"id":                bookingID,
		"status":            models.BookingStatusRequested,
		"offer_batch_index": batchIndex - 1,
	}
	update := bson.M{
		"$set": bson.M{
			"offer_batch_index": batchIndex,
			"batch_expires_at":  expiresAt,
		},
		"$addToSet": bson.M{
			"offered_provider_ids": bson.M{"$each": providerIDs},
		},
	}
	res, err := r.bookingColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to arm batch for booking %s: %w", bookingID, err)
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoBookingRepo) RollbackBatch(ctx context.Context, bookingID string, prevIndex int, prevExpiresAt *time.Time, providerIDs []string) error {
	set := bson.M{"offer_batch_index": prevIndex}
	unset := bson.M{}
	if prevExpiresAt != nil {
		set["batch_expires_at"] = *prevExpiresAt
	} else {
		unset["batch_expires_at"] = ""
	}
	update := bson.M{
		"$set":  set,
		"$pull": bson.M{"offered_provider_ids": bson.M{"$in": providerIDs}},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if _, err := r.bookingColl.UpdateOne(ctx, bson.M{"id": bookingID}, update); err != nil {
		return fmt.Errorf("failed to roll back batch for booking %s: %w", bookingID, err)
	}
	return nil
}

func (r *MongoBookingRepo) MarkUnfulfillable(ctx context.Context, bookingID string) (bool, error) {
	now := time.Now()
	filter := bson.M{"id": bookingID, "status": models.BookingStatusRequested}
	update := bson.M{"$set": bson.M{
		"status":      models.BookingStatusUnfulfillable,
		"resolved_at": now,
	}}
	res, err := r.bookingColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark booking %s unfulfillable: %w", bookingID, err)
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoBookingRepo) CancelAccepted(ctx context.Context, bookingID, reason string) (bool, error) {
	filter := bson.M{
		"id":     bookingID,
		"status": bson.M{"$in": []string{models.BookingStatusAccepted, models.BookingStatusInProgress}},
	}
	now := time.Now()
	update := bson.M{"$set": bson.M{
		"status":        models.BookingStatusCancelled,
		"cancel_reason": reason,
		"resolved_at":   now,
	}}
	res, err := r.bookingColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking %s: %w", bookingID, err)
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoBookingRepo) SetCompletionFlag(ctx context.Context, bookingID string, byProvider bool) (*models.Booking, error) {
	flag := "customer_confirmed"
	if byProvider {
		flag = "provider_confirmed"
	}
	filter := bson.M{
		"id":     bookingID,
		"status": bson.M{"$in": []string{models.BookingStatusAccepted, models.BookingStatusInProgress}},
	}
	update := bson.M{"$set": bson.M{
		flag:     true,
		"status": models.BookingStatusInProgress,
	}}
	res, err := r.bookingColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to set completion flag on booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return nil, nil
	}

	// Promote to completed once both sides confirmed. A concurrent confirm
	// racing here is safe: the filter only matches while in_progress.
	now := time.Now()
	completeFilter := bson.M{
		"id":                 bookingID,
		"status":             models.BookingStatusInProgress,
		"provider_confirmed": true,
		"customer_confirmed": true,
	}
	completeUpdate := bson.M{"$set": bson.M{
		"status":      models.BookingStatusCompleted,
		"resolved_at": now,
	}}
	if _, err := r.bookingColl.UpdateOne(ctx, completeFilter, completeUpdate); err != nil {
		return nil, fmt.Errorf("failed to complete booking %s: %w", bookingID, err)
	}

	return r.GetByID(ctx, bookingID)
}

func (r *MongoBookingRepo) ListPendingDeadlines(ctx context.Context) ([]models.Booking, error) {
	filter := bson.M{
		"status":           models.BookingStatusRequested,
		"batch_expires_at": bson.M{"$ne": nil},
	}
	cursor, err := r.bookingColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending deadlines: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode pending bookings: %w", err)
	}
	return bookings, nil
}
