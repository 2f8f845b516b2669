package dispatch

import (
	"context"

	"fundigo/models"

	"go.uber.org/zap"
)

// Cancel applies customer- or provider-initiated cancellation. Before
// acceptance the reason is optional and every pending offer is invalidated
// as forced exhaustion; after acceptance a reason is required. Terminal
// bookings reject the cancellation.
func (s *DefaultDispatchService) Cancel(ctx context.Context, bookingID, actorID, reason string) (*models.Booking, error) {
	booking, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, NewError(CodeBookingNotFound, "booking not found")
	}
	if booking.IsTerminal() {
		return nil, NewError(CodeAlreadyTerminal, "booking is already "+booking.Status)
	}

	if booking.Status == models.BookingStatusRequested {
		cancelled, err := s.BookingRepo.CancelRequested(ctx, bookingID, reason)
		if err != nil {
			return nil, err
		}
		if !cancelled {
			// Lost a race with an accept or a concurrent terminal
			// transition; report against the fresh state.
			return s.Cancel(ctx, bookingID, actorID, reason)
		}
	} else {
		if reason == "" {
			return nil, NewError(CodeReasonRequired, "cancelling an accepted booking requires a reason")
		}
		cancelled, err := s.BookingRepo.CancelAccepted(ctx, bookingID, reason)
		if err != nil {
			return nil, err
		}
		if !cancelled {
			return nil, NewError(CodeAlreadyTerminal, "booking already reached a terminal state")
		}
	}

	updated, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("booking cancelled",
		zap.String("bookingId", bookingID),
		zap.String("actorId", actorID),
		zap.String("reason", reason))

	if updated != nil {
		if nerr := s.Notifier.BookingCancelled(ctx, updated); nerr != nil {
			s.Logger.Warn("failed to notify cancellation", zap.String("bookingId", bookingID), zap.Error(nerr))
		}
	}
	return updated, nil
}

// MarkProviderComplete records the provider-side completion confirmation.
func (s *DefaultDispatchService) MarkProviderComplete(ctx context.Context, bookingID, providerID string) (*models.Booking, error) {
	booking, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, NewError(CodeBookingNotFound, "booking not found")
	}
	if booking.ProviderID != providerID {
		return nil, NewError(CodeOfferNotPending, "booking is not assigned to this provider")
	}
	return s.confirmCompletion(ctx, booking, true)
}

// MarkCustomerComplete records the customer-side completion confirmation.
func (s *DefaultDispatchService) MarkCustomerComplete(ctx context.Context, bookingID, customerID string) (*models.Booking, error) {
	booking, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, NewError(CodeBookingNotFound, "booking not found")
	}
	if booking.CustomerID != customerID {
		return nil, NewError(CodeBookingNotFound, "booking does not belong to this customer")
	}
	return s.confirmCompletion(ctx, booking, false)
}

// confirmCompletion applies one side of the two-phase completion: the status
// moves to in_progress on the first confirmation and to completed once both
// sides have confirmed. Rating eligibility opens only on completed.
func (s *DefaultDispatchService) confirmCompletion(ctx context.Context, booking *models.Booking, byProvider bool) (*models.Booking, error) {
	if booking.IsTerminal() {
		return nil, NewError(CodeAlreadyTerminal, "booking is already "+booking.Status)
	}
	if booking.Status == models.BookingStatusRequested {
		return nil, NewError(CodeOfferNotPending, "booking has no bound provider yet")
	}

	updated, err := s.BookingRepo.SetCompletionFlag(ctx, booking.ID, byProvider)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, NewError(CodeAlreadyTerminal, "booking already reached a terminal state")
	}
	s.Logger.Info("completion confirmed",
		zap.String("bookingId", booking.ID),
		zap.Bool("byProvider", byProvider),
		zap.String("status", updated.Status))
	return updated, nil
}
