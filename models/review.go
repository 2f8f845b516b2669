package models

import "time"

// Review directions. Each direction is independently gated and one-shot.
const (
	ReviewDirectionCustomerToProvider = "customer_to_provider"
	ReviewDirectionProviderToCustomer = "provider_to_customer"
)

// Review is owned by the external Rating collaborator; this engine owns only
// the eligibility gate and the one-shot creation invariant. Rating and
// Comment follow the dual-blind scheme (hidden from the author's own view);
// Message stays mutually visible.
type Review struct {
	ID        string    `bson:"id" json:"id"`
	BookingID string    `bson:"booking_id" json:"bookingId"`
	Direction string    `bson:"direction" json:"direction"`
	AuthorID  string    `bson:"author_id" json:"authorId"`
	SubjectID string    `bson:"subject_id" json:"subjectId"`
	Rating    float64   `bson:"rating" json:"rating"`
	Comment   string    `bson:"comment,omitempty" json:"comment,omitempty"`
	Message   string    `bson:"message,omitempty" json:"message,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
