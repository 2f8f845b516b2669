package models

import "time"

// Offer response states. pending is the only non-terminal state; terminal
// states are never overwritten by later events.
const (
	OfferStatePending  = "pending"
	OfferStateAccepted = "accepted"
	OfferStateDeclined = "declined"
	OfferStateExpired  = "expired"
)

// Offer is an ephemeral binding of one candidate provider to one booking
// within one escalation batch. Offers are retained after resolution as an
// append-only audit history.
type Offer struct {
	ID            string    `bson:"id" json:"id"`
	BookingID     string    `bson:"booking_id" json:"bookingId"`
	ProviderID    string    `bson:"provider_id" json:"providerId"`
	BatchIndex    int       `bson:"batch_index" json:"batchIndex"`
	IssuedAt      time.Time `bson:"issued_at" json:"issuedAt"`
	ExpiresAt     time.Time `bson:"expires_at" json:"expiresAt"`
	ResponseState string    `bson:"response_state" json:"responseState"`
}

// RankedCandidate is a transient scoring artifact; it is never persisted but
// may be surfaced to the customer as a ranked preview.
type RankedCandidate struct {
	ProviderID string  `json:"providerId"`
	DistanceKm float64 `json:"distanceKm"`
	Rating     float64 `json:"rating"`
	Score      float64 `json:"score"`
}
