package notification

import (
	"context"
	"fmt"

	providerRepo "fundigo/database/repository/provider"
	"fundigo/models"
	"fundigo/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// DefaultNotificationService delivers dispatch events as FCM pushes. When no
// FCM client is configured the events are logged and dropped, which keeps
// dispatch progress independent of push delivery.
type DefaultNotificationService struct {
	Providers providerRepo.ProviderRepository
	Customers providerRepo.CustomerRepository
}

func (s *DefaultNotificationService) OfferIssued(ctx context.Context, booking *models.Booking, offer models.Offer) error {
	data := map[string]string{
		"event":     "offer_issued",
		"bookingId": booking.ID,
		"offerId":   offer.ID,
		"expiresAt": offer.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
		"role":      "provider",
	}
	title := "New job offer"
	body := fmt.Sprintf("You have a new %s request nearby", booking.TemplateID)
	return s.pushToProvider(ctx, offer.ProviderID, title, body, data)
}

func (s *DefaultNotificationService) BookingResolved(ctx context.Context, booking *models.Booking, winnerID string, loserIDs []string) error {
	data := map[string]string{
		"event":     "booking_resolved",
		"bookingId": booking.ID,
		"status":    booking.Status,
	}
	if err := s.pushToProvider(ctx, winnerID, "Offer accepted", "You won the booking "+booking.Code, data); err != nil {
		utils.GetLogger().Warn("failed to notify winning provider", zap.String("providerId", winnerID), zap.Error(err))
	}
	for _, loserID := range loserIDs {
		if err := s.pushToProvider(ctx, loserID, "Offer closed", "The booking is no longer available", data); err != nil {
			utils.GetLogger().Warn("failed to notify losing provider", zap.String("providerId", loserID), zap.Error(err))
		}
	}
	return s.pushToCustomer(ctx, booking.CustomerID, "Provider found", "A provider accepted your booking "+booking.Code, data)
}

func (s *DefaultNotificationService) BookingUnfulfillable(ctx context.Context, booking *models.Booking) error {
	data := map[string]string{
		"event":     "booking_unfulfillable",
		"bookingId": booking.ID,
	}
	return s.pushToCustomer(ctx, booking.CustomerID, "No providers available",
		"We could not find a provider for booking "+booking.Code, data)
}

func (s *DefaultNotificationService) BookingCancelled(ctx context.Context, booking *models.Booking) error {
	data := map[string]string{
		"event":     "booking_cancelled",
		"bookingId": booking.ID,
	}
	if booking.ProviderID != "" {
		if err := s.pushToProvider(ctx, booking.ProviderID, "Booking cancelled", "Booking "+booking.Code+" was cancelled", data); err != nil {
			utils.GetLogger().Warn("failed to notify provider of cancellation", zap.String("providerId", booking.ProviderID), zap.Error(err))
		}
	}
	return s.pushToCustomer(ctx, booking.CustomerID, "Booking cancelled", "Booking "+booking.Code+" was cancelled", data)
}

func (s *DefaultNotificationService) pushToProvider(ctx context.Context, providerID, title, body string, data map[string]string) error {
	p, err := s.Providers.GetByID(ctx, providerID)
	if err != nil {
		return fmt.Errorf("could not look up provider %s: %w", providerID, err)
	}
	if p == nil || p.FCMToken == "" {
		utils.GetLogger().Debug("provider has no push token", zap.String("providerId", providerID))
		return nil
	}
	return s.send(ctx, p.FCMToken, title, body, data)
}

func (s *DefaultNotificationService) pushToCustomer(ctx context.Context, customerID, title, body string, data map[string]string) error {
	c, err := s.Customers.GetByID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("could not look up customer %s: %w", customerID, err)
	}
	if c == nil || c.FCMToken == "" {
		utils.GetLogger().Debug("customer has no push token", zap.String("customerId", customerID))
		return nil
	}
	return s.send(ctx, c.FCMToken, title, body, data)
}

func (s *DefaultNotificationService) send(ctx context.Context, token, title, body string, data map[string]string) error {
	if utils.FCMClient == nil {
		utils.GetLogger().Info("push suppressed (FCM disabled)",
			zap.String("title", title), zap.Any("data", data))
		return nil
	}
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}
	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}
