package bookingRepo

import (
	"context"
	"time"

	"fundigo/models"
)

// BookingRepository defines persistence for booking records. Every state
// transition is a conditional update asserting the prior status, so terminal
// states are never overwritten.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)

	// BindProvider is the atomic commit point: it binds the provider and
	// moves the booking to accepted only if no provider is bound yet, and in
	// the same transaction marks the winning offer accepted and every other
	// still-pending offer expired. Returns false when a concurrent accept
	// already won.
	BindProvider(ctx context.Context, bookingID, providerID, offerID string) (bool, error)

	// ArmBatch records a newly issued batch: bumps the batch index, stores
	// the shared deadline and appends the offered provider ids. The update is
	// a compare-and-set on the prior batch index, so of two escalation paths
	// racing for the same round (a decline-exhaustion against a firing
	// deadline) exactly one arms. Returns false for the loser.
	ArmBatch(ctx context.Context, bookingID string, batchIndex int, expiresAt time.Time, providerIDs []string) (bool, error)

	// RollbackBatch undoes ArmBatch when scheduling the expiry ultimately
	// fails, so no batch exists without an armed deadline.
	RollbackBatch(ctx context.Context, bookingID string, prevIndex int, prevExpiresAt *time.Time, providerIDs []string) error

	// MarkUnfulfillable terminates a still-requested booking whose candidate
	// pool is exhausted. Returns false if the booking already left requested.
	MarkUnfulfillable(ctx context.Context, bookingID string) (bool, error)

	// CancelRequested cancels a booking that has no bound provider and, in
	// the same transaction, expires all of its pending offers.
	CancelRequested(ctx context.Context, bookingID, reason string) (bool, error)

	// CancelAccepted cancels a booking after acceptance (reason required by
	// the service layer). Returns false if the booking is already terminal.
	CancelAccepted(ctx context.Context, bookingID, reason string) (bool, error)

	// SetCompletionFlag records one side of the two-phase completion and
	// promotes the booking to completed once both sides have confirmed.
	SetCompletionFlag(ctx context.Context, bookingID string, byProvider bool) (*models.Booking, error)

	// ListPendingDeadlines returns requested bookings with a live batch
	// deadline, used to re-arm the scheduler after a restart.
	ListPendingDeadlines(ctx context.Context) ([]models.Booking, error)
}
