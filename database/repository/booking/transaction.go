package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"fundigo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// errLostRace is a sentinel used inside the accept transaction to abort
// without surfacing an error to the caller.
var errLostRace = fmt.Errorf("booking already assigned")

// BindProvider performs the compare-and-set accept: the provider-binding
// write succeeds only while the booking has no provider AND the winning offer
// is still pending, and every still-pending sibling offer (across all
// batches) is settled inside the same transaction. No partial state is ever
// persisted: a booking never binds against an offer a concurrent deadline
// already expired.
func (r *MongoBookingRepo) BindProvider(ctx context.Context, bookingID, providerID, offerID string) (bool, error) {
	client := r.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return false, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	now := time.Now()
	txnFn := func(sc mongo.SessionContext) error {
		filter := bson.M{
			"id":          bookingID,
			"provider_id": "",
			"status":      models.BookingStatusRequested,
		}
		update := bson.M{"$set": bson.M{
			"provider_id": providerID,
			"status":      models.BookingStatusAccepted,
			"resolved_at": now,
		}, "$unset": bson.M{"batch_expires_at": ""}}

		res, err := r.bookingColl.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("provider bind failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return errLostRace
		}

		winFilter := bson.M{"id": offerID, "response_state": models.OfferStatePending}
		winUpdate := bson.M{"$set": bson.M{"response_state": models.OfferStateAccepted}}
		winRes, err := r.offerColl.UpdateOne(sc, winFilter, winUpdate)
		if err != nil {
			return fmt.Errorf("winning offer update failed: %w", err)
		}
		if winRes.MatchedCount == 0 {
			// The offer was settled (expired or cancelled) between the
			// caller's read and this transaction; abort the bind.
			return errLostRace
		}

		sibFilter := bson.M{"booking_id": bookingID, "response_state": models.OfferStatePending}
		sibUpdate := bson.M{"$set": bson.M{"response_state": models.OfferStateExpired}}
		if _, err := r.offerColl.UpdateMany(sc, sibFilter, sibUpdate); err != nil {
			return fmt.Errorf("sibling offer expiry failed: %w", err)
		}
		return nil
	}

	err = mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
	if err == errLostRace {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("accept transaction failed: %w", err)
	}
	return true, nil
}

// CancelRequested cancels a not-yet-accepted booking and expires all of its
// pending offers in the same transaction (forced exhaustion).
func (r *MongoBookingRepo) CancelRequested(ctx context.Context, bookingID, reason string) (bool, error) {
	client := r.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return false, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	now := time.Now()
	txnFn := func(sc mongo.SessionContext) error {
		filter := bson.M{"id": bookingID, "status": models.BookingStatusRequested}
		update := bson.M{"$set": bson.M{
			"status":        models.BookingStatusCancelled,
			"cancel_reason": reason,
			"resolved_at":   now,
		}, "$unset": bson.M{"batch_expires_at": ""}}

		res, err := r.bookingColl.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("cancel update failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return errLostRace
		}

		offFilter := bson.M{"booking_id": bookingID, "response_state": models.OfferStatePending}
		offUpdate := bson.M{"$set": bson.M{"response_state": models.OfferStateExpired}}
		if _, err := r.offerColl.UpdateMany(sc, offFilter, offUpdate); err != nil {
			return fmt.Errorf("pending offer expiry failed: %w", err)
		}
		return nil
	}

	err = mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
	if err == errLostRace {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cancel transaction failed: %w", err)
	}
	return true, nil
}
