package dispatch

import (
	"context"
	"time"

	"fundigo/models"

	"go.uber.org/zap"
)

// TryAccept resolves a provider's accept attempt. The provider binding is a
// single compare-and-set keyed on the booking id ("bind only while no
// provider is bound"), applied together with sibling-offer invalidation in
// one atomic unit by the repository. Concurrent losers observe won=false
// with a stable reason; losing a race is an expected outcome, not a failure.
func (s *DefaultDispatchService) TryAccept(ctx context.Context, bookingID, providerID string) (*models.AcceptResult, error) {
	offer, err := s.OfferRepo.GetPending(ctx, bookingID, providerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return &models.AcceptResult{Won: false, Reason: CodeOfferNotPending}, nil
	}
	if time.Now().After(offer.ExpiresAt) {
		// The response window closed but the deadline task has not fired
		// yet. Treat it exactly like a fired timeout.
		return &models.AcceptResult{Won: false, Reason: CodeOfferNotPending}, nil
	}

	won, err := s.BookingRepo.BindProvider(ctx, bookingID, providerID, offer.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		// Either another provider bound first, or this offer was expired by
		// a deadline firing between the read above and the bind.
		current, err := s.BookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if current != nil && current.ProviderID != "" {
			return &models.AcceptResult{Won: false, Reason: CodeAlreadyAssigned}, nil
		}
		return &models.AcceptResult{Won: false, Reason: CodeOfferNotPending}, nil
	}

	booking, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("booking accepted",
		zap.String("bookingId", bookingID),
		zap.String("providerId", providerID),
		zap.Int("batchIndex", offer.BatchIndex))

	if booking != nil {
		losers := make([]string, 0, len(booking.OfferedProviderIDs))
		for _, id := range booking.OfferedProviderIDs {
			if id != providerID {
				losers = append(losers, id)
			}
		}
		if nerr := s.Notifier.BookingResolved(ctx, booking, providerID, losers); nerr != nil {
			s.Logger.Warn("failed to notify booking resolution",
				zap.String("bookingId", bookingID), zap.Error(nerr))
		}
	}

	return &models.AcceptResult{Won: true}, nil
}

// Decline settles one provider's offer as declined. Declining the last
// pending offer of the batch triggers escalation immediately instead of
// waiting for the deadline, which minimizes customer wait time.
func (s *DefaultDispatchService) Decline(ctx context.Context, bookingID, providerID string) error {
	offer, err := s.OfferRepo.GetPending(ctx, bookingID, providerID)
	if err != nil {
		return err
	}
	if offer == nil {
		return NewError(CodeOfferNotPending, "no live offer for this provider")
	}

	declined, err := s.OfferRepo.MarkDeclined(ctx, offer.ID)
	if err != nil {
		return err
	}
	if !declined {
		return NewError(CodeOfferNotPending, "offer already settled")
	}
	s.Logger.Info("offer declined",
		zap.String("bookingId", bookingID),
		zap.String("providerId", providerID))

	remaining, err := s.OfferRepo.CountPending(ctx, bookingID)
	if err != nil {
		return err
	}
	if remaining > 0 {
		return nil
	}

	booking, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking == nil || booking.Status != models.BookingStatusRequested {
		return nil
	}

	s.Logger.Info("batch exhausted by declines, escalating",
		zap.String("bookingId", bookingID),
		zap.Int("batchIndex", booking.OfferBatchIndex))
	_, err = s.issueNextBatch(ctx, booking)
	return err
}
