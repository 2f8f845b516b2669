package models

import "time"

// CreateBookingInput is the inbound payload for starting a dispatch.
type CreateBookingInput struct {
	TemplateID  string     `json:"templateId" binding:"required"`
	LocationGeo GeoPoint   `json:"locationGeo" binding:"required"`
	SortMode    string     `json:"sortMode"`
	RadiusKm    float64    `json:"radiusKm"`
	TotalPrice  float64    `json:"totalPrice"`
	ScheduledAt *time.Time `json:"scheduledAt"`
}

// CreateBookingResponse is returned to the customer after the first offer
// batch has been issued.
type CreateBookingResponse struct {
	BookingID     string            `json:"bookingId"`
	BookingCode   string            `json:"bookingCode"`
	Status        string            `json:"status"`
	RankedPreview []RankedCandidate `json:"rankedPreview"`
}

// AcceptResult reports the outcome of a provider's accept attempt.
type AcceptResult struct {
	Won    bool   `json:"won"`
	Reason string `json:"reason,omitempty"` // stable code, e.g. "already_assigned"
}

// CancelBookingInput carries the optional (pre-accept) or required
// (post-accept) cancellation reason.
type CancelBookingInput struct {
	Reason string `json:"reason"`
}

// CreateReviewInput is the inbound payload for the one-shot review creation.
type CreateReviewInput struct {
	Direction string  `json:"direction" binding:"required"`
	Rating    float64 `json:"rating" binding:"required"`
	Comment   string  `json:"comment"`
	Message   string  `json:"message"`
}
