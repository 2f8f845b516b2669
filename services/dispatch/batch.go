package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fundigo/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking validates the request, persists the booking and issues the
// first offer batch. The ranked preview of the initial candidate pool is
// returned to the customer.
func (s *DefaultDispatchService) CreateBooking(ctx context.Context, customerID string, input models.CreateBookingInput) (*models.CreateBookingResponse, error) {
	mode, err := ParseSortMode(input.SortMode)
	if err != nil {
		return nil, err
	}
	if err := ValidateLocation(input.LocationGeo); err != nil {
		return nil, err
	}
	if input.TemplateID == "" {
		return nil, NewError(CodeUnknownTemplate, "service template is required")
	}

	radius := input.RadiusKm
	if radius == 0 {
		radius = s.DefaultRadius
	}

	now := time.Now()
	booking := &models.Booking{
		ID:          uuid.New().String(),
		Code:        newBookingCode(),
		TemplateID:  input.TemplateID,
		CustomerID:  customerID,
		LocationGeo: input.LocationGeo,
		SortMode:    mode.String(),
		RadiusKm:    radius,
		TotalPrice:  input.TotalPrice,
		ScheduledAt: input.ScheduledAt,
		Status:      models.BookingStatusRequested,
		CreatedAt:   now,
	}
	if err := s.BookingRepo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	ranked, err := s.issueNextBatch(ctx, booking)
	if err != nil {
		return nil, err
	}

	// Re-read: issueNextBatch may have marked the booking unfulfillable.
	current, err := s.BookingRepo.GetByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		current = booking
	}

	return &models.CreateBookingResponse{
		BookingID:     booking.ID,
		BookingCode:   booking.Code,
		Status:        current.Status,
		RankedPreview: ranked,
	}, nil
}

// GetBooking returns the booking with its full offer history.
func (s *DefaultDispatchService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, []models.Offer, error) {
	booking, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if booking == nil {
		return nil, nil, NewError(CodeBookingNotFound, "booking not found")
	}
	offers, err := s.OfferRepo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	return booking, offers, nil
}

// issueNextBatch runs one escalation round: select the next candidate page
// excluding every provider ever offered, fan pending offers out to the top N
// and arm the shared deadline. An empty page terminates the booking as
// unfulfillable. Because the exclusion set strictly grows each round, the
// process always terminates.
func (s *DefaultDispatchService) issueNextBatch(ctx context.Context, booking *models.Booking) ([]models.RankedCandidate, error) {
	mode, err := ParseSortMode(booking.SortMode)
	if err != nil {
		return nil, err
	}

	ranked, err := s.Selector.Select(ctx, SelectionRequest{
		TemplateID:         booking.TemplateID,
		Location:           booking.LocationGeo,
		Mode:               mode,
		RadiusKm:           booking.RadiusKm,
		ExcludeProviderIDs: booking.OfferedProviderIDs,
	})
	if err != nil {
		return nil, err
	}

	if len(ranked) == 0 {
		won, err := s.BookingRepo.MarkUnfulfillable(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		if won {
			s.Logger.Info("booking unfulfillable: candidate pool exhausted",
				zap.String("bookingId", booking.ID),
				zap.Int("batches", booking.OfferBatchIndex))
			booking.Status = models.BookingStatusUnfulfillable
			if nerr := s.Notifier.BookingUnfulfillable(ctx, booking); nerr != nil {
				s.Logger.Warn("failed to notify unfulfillable", zap.String("bookingId", booking.ID), zap.Error(nerr))
			}
		}
		return ranked, nil
	}

	batch := ranked
	if s.BatchSize > 0 && len(batch) > s.BatchSize {
		batch = batch[:s.BatchSize]
	}

	batchIndex := booking.OfferBatchIndex + 1
	now := time.Now()
	expiresAt := now.Add(s.OfferWindow)

	offers := make([]models.Offer, 0, len(batch))
	providerIDs := make([]string, 0, len(batch))
	for _, rc := range batch {
		offers = append(offers, models.Offer{
			ID:            uuid.New().String(),
			BookingID:     booking.ID,
			ProviderID:    rc.ProviderID,
			BatchIndex:    batchIndex,
			IssuedAt:      now,
			ExpiresAt:     expiresAt,
			ResponseState: models.OfferStatePending,
		})
		providerIDs = append(providerIDs, rc.ProviderID)
	}

	// Arming is the escalation commit point: the compare-and-set on the
	// prior batch index serializes racing escalators (a decline-exhaustion
	// against a firing deadline), so only the winner ever inserts offers.
	armed, err := s.BookingRepo.ArmBatch(ctx, booking.ID, batchIndex, expiresAt, providerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to record offer batch: %w", err)
	}
	if !armed {
		s.Logger.Info("batch already armed by a concurrent escalation",
			zap.String("bookingId", booking.ID),
			zap.Int("batchIndex", batchIndex))
		return ranked, nil
	}
	if err := s.OfferRepo.CreateMany(ctx, offers); err != nil {
		_ = s.BookingRepo.RollbackBatch(ctx, booking.ID, booking.OfferBatchIndex, booking.BatchExpiresAt, providerIDs)
		return nil, fmt.Errorf("failed to create offer batch: %w", err)
	}

	// A batch must never exist without an armed deadline. If arming fails
	// (after the scheduler's own retries), roll the batch back and surface a
	// retryable fault instead of leaving offers with no expiry.
	if err := s.Scheduler.ArmExpiry(ctx, booking.ID, batchIndex, expiresAt); err != nil {
		s.Logger.Error("failed to arm batch deadline, rolling back batch",
			zap.String("bookingId", booking.ID),
			zap.Int("batchIndex", batchIndex),
			zap.Error(err))
		_ = s.OfferRepo.DeleteBatch(ctx, booking.ID, batchIndex)
		_ = s.BookingRepo.RollbackBatch(ctx, booking.ID, booking.OfferBatchIndex, booking.BatchExpiresAt, providerIDs)
		return nil, NewError(CodeSchedulerFault, "could not schedule offer expiry")
	}

	booking.OfferBatchIndex = batchIndex
	booking.BatchExpiresAt = &expiresAt
	booking.OfferedProviderIDs = append(booking.OfferedProviderIDs, providerIDs...)

	s.Logger.Info("offer batch issued",
		zap.String("bookingId", booking.ID),
		zap.Int("batchIndex", batchIndex),
		zap.Int("offers", len(offers)),
		zap.Time("expiresAt", expiresAt))

	for _, offer := range offers {
		if nerr := s.Notifier.OfferIssued(ctx, booking, offer); nerr != nil {
			s.Logger.Warn("failed to notify candidate of offer",
				zap.String("providerId", offer.ProviderID), zap.Error(nerr))
		}
	}

	return ranked, nil
}

// HandleBatchExpiry settles a fired deadline. Stale fires (booking resolved,
// cancelled, or already escalated past this batch) are no-ops.
func (s *DefaultDispatchService) HandleBatchExpiry(ctx context.Context, bookingID string, batchIndex int) error {
	booking, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking == nil || booking.Status != models.BookingStatusRequested || booking.OfferBatchIndex != batchIndex {
		return nil
	}

	expired, err := s.OfferRepo.ExpirePendingInBatch(ctx, bookingID, batchIndex)
	if err != nil {
		return err
	}
	s.Logger.Info("batch deadline fired",
		zap.String("bookingId", bookingID),
		zap.Int("batchIndex", batchIndex),
		zap.Int64("expiredOffers", expired))

	// An accept may have landed between the status read and the expiry
	// write; the monotonic offer filter makes the expiry itself safe, and
	// re-reading here keeps us from escalating a resolved booking.
	current, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if current == nil || current.Status != models.BookingStatusRequested {
		return nil
	}

	_, err = s.issueNextBatch(ctx, current)
	return err
}

// RearmPendingDeadlines re-arms the scheduler from persisted deadlines after
// a restart. Deadlines already in the past are armed for immediate firing.
func (s *DefaultDispatchService) RearmPendingDeadlines(ctx context.Context) error {
	pending, err := s.BookingRepo.ListPendingDeadlines(ctx)
	if err != nil {
		return err
	}
	for _, b := range pending {
		if b.BatchExpiresAt == nil {
			continue
		}
		if err := s.Scheduler.ArmExpiry(ctx, b.ID, b.OfferBatchIndex, *b.BatchExpiresAt); err != nil {
			s.Logger.Error("failed to re-arm batch deadline",
				zap.String("bookingId", b.ID), zap.Error(err))
			continue
		}
		s.Logger.Info("re-armed batch deadline",
			zap.String("bookingId", b.ID),
			zap.Int("batchIndex", b.OfferBatchIndex),
			zap.Time("expiresAt", *b.BatchExpiresAt))
	}
	return nil
}

func newBookingCode() string {
	return "BK-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
