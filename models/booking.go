package models

import "time"

// Booking statuses. The status field is monotonic: once a terminal status
// (completed, cancelled, unfulfillable) is reached it is never overwritten.
const (
	BookingStatusRequested     = "requested"
	BookingStatusAccepted      = "accepted"
	BookingStatusInProgress    = "in_progress"
	BookingStatusCompleted     = "completed"
	BookingStatusCancelled     = "cancelled"
	BookingStatusUnfulfillable = "unfulfillable"
)

// Booking represents one customer service request.
type Booking struct {
	ID          string   `bson:"id" json:"id"`                     // Internal identifier (UUID)
	Code        string   `bson:"code" json:"code"`                 // Human-readable booking code, e.g. "BK-4F2A91CE"
	TemplateID  string   `bson:"template_id" json:"templateId"`    // Requested service template
	CustomerID  string   `bson:"customer_id" json:"customerId"`    // Customer who made the request
	ProviderID  string   `bson:"provider_id" json:"providerId"`    // Bound provider; empty until a winning accept
	LocationGeo GeoPoint `bson:"location_geo" json:"locationGeo"`  // Requested service location
	SortMode    string   `bson:"sort_mode" json:"sortMode"`        // Ranking mode used for dispatch
	RadiusKm    float64  `bson:"radius_km,omitempty" json:"radiusKm,omitempty"` // 0 means unbounded
	TotalPrice  float64  `bson:"total_price" json:"totalPrice"`    // Monetary total
	Status      string   `bson:"status" json:"status"`             // See BookingStatus* constants

	// Dispatch bookkeeping. OfferedProviderIDs records every provider ever
	// offered this booking so escalation never re-offers after a restart.
	OfferBatchIndex    int        `bson:"offer_batch_index" json:"offerBatchIndex"`
	OfferedProviderIDs []string   `bson:"offered_provider_ids" json:"offeredProviderIds,omitempty"`
	BatchExpiresAt     *time.Time `bson:"batch_expires_at,omitempty" json:"batchExpiresAt,omitempty"`

	// Two-phase completion flags: both must be set before the booking
	// transitions to completed.
	ProviderConfirmed bool `bson:"provider_confirmed" json:"providerConfirmed"`
	CustomerConfirmed bool `bson:"customer_confirmed" json:"customerConfirmed"`

	CancelReason string     `bson:"cancel_reason,omitempty" json:"cancelReason,omitempty"`
	ScheduledAt  *time.Time `bson:"scheduled_at,omitempty" json:"scheduledAt,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"createdAt"`
	ResolvedAt   *time.Time `bson:"resolved_at,omitempty" json:"resolvedAt,omitempty"`
}

// IsTerminal reports whether the booking can no longer change status.
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusUnfulfillable:
		return true
	}
	return false
}
