package offerRepo

import (
	"context"

	"fundigo/models"
)

// OfferRepository persists the append-only offer history. State changes are
// conditional on response_state == pending, so a terminal offer can never be
// re-opened or overwritten.
type OfferRepository interface {
	CreateMany(ctx context.Context, offers []models.Offer) error

	// GetPending returns the pending offer binding this provider to this
	// booking, or nil when no such live offer exists.
	GetPending(ctx context.Context, bookingID, providerID string) (*models.Offer, error)

	// MarkDeclined moves pending -> declined. Returns false if the offer was
	// already settled.
	MarkDeclined(ctx context.Context, offerID string) (bool, error)

	// ExpirePendingInBatch moves every still-pending offer of the batch to
	// expired and returns how many were settled.
	ExpirePendingInBatch(ctx context.Context, bookingID string, batchIndex int) (int64, error)

	// CountPending returns the number of live offers for the booking.
	CountPending(ctx context.Context, bookingID string) (int64, error)

	// DeleteBatch removes a batch that failed to arm its deadline, as part
	// of batch-creation rollback.
	DeleteBatch(ctx context.Context, bookingID string, batchIndex int) error

	// ListByBooking returns the full offer history of the booking.
	ListByBooking(ctx context.Context, bookingID string) ([]models.Offer, error)
}
