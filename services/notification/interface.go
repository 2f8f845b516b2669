package notification

import (
	"context"

	"fundigo/models"
)

// NotificationService is the outbound contract to the Notification
// collaborator. Delivery mechanics are external; dispatch only emits the
// events.
type NotificationService interface {
	// OfferIssued is sent to each candidate in a freshly issued batch.
	OfferIssued(ctx context.Context, booking *models.Booking, offer models.Offer) error
	// BookingResolved is sent to the winning provider, every losing
	// provider still holding an offer, and the customer.
	BookingResolved(ctx context.Context, booking *models.Booking, winnerID string, loserIDs []string) error
	// BookingUnfulfillable is sent to the customer when the candidate pool
	// is exhausted without an acceptance.
	BookingUnfulfillable(ctx context.Context, booking *models.Booking) error
	// BookingCancelled is sent to the bound provider (if any) and the
	// customer.
	BookingCancelled(ctx context.Context, booking *models.Booking) error
}
