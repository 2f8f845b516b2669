package dispatch

import (
	"context"
	"time"

	bookingRepo "fundigo/database/repository/booking"
	offerRepo "fundigo/database/repository/offer"
	"fundigo/models"
	"fundigo/services/notification"

	"go.uber.org/zap"
)

// DispatchService is the booking offer dispatch and resolution engine: it
// fans a customer request out to ranked candidate batches, resolves the
// accept race so at most one provider wins, escalates on decline/timeout
// exhaustion and drives the booking state machine to a terminal state.
type DispatchService interface {
	CreateBooking(ctx context.Context, customerID string, input models.CreateBookingInput) (*models.CreateBookingResponse, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, []models.Offer, error)

	TryAccept(ctx context.Context, bookingID, providerID string) (*models.AcceptResult, error)
	Decline(ctx context.Context, bookingID, providerID string) error

	Cancel(ctx context.Context, bookingID, actorID, reason string) (*models.Booking, error)
	MarkProviderComplete(ctx context.Context, bookingID, providerID string) (*models.Booking, error)
	MarkCustomerComplete(ctx context.Context, bookingID, customerID string) (*models.Booking, error)

	// HandleBatchExpiry is invoked by the deadline scheduler when a batch
	// deadline fires; it expires the still-pending offers of that batch and
	// escalates. A late fire against resolved state is a no-op.
	HandleBatchExpiry(ctx context.Context, bookingID string, batchIndex int) error

	// RearmPendingDeadlines re-arms expiry checks from persisted deadlines
	// after a process restart.
	RearmPendingDeadlines(ctx context.Context) error
}

// DefaultDispatchService implements DispatchService.
type DefaultDispatchService struct {
	BookingRepo bookingRepo.BookingRepository
	OfferRepo   offerRepo.OfferRepository
	Selector    CandidateSelector
	Scheduler   DeadlineScheduler
	Notifier    notification.NotificationService
	Logger      *zap.Logger

	BatchSize     int
	OfferWindow   time.Duration
	DefaultRadius float64
}
