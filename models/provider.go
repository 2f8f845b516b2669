package models

import "time"

// Provider statuses considered live for dispatch.
const (
	ProviderStatusActive = "active"
	ProviderStatusOnline = "online"
)

// ProviderProfile holds the public-facing provider fields used by dispatch.
type ProviderProfile struct {
	DisplayName string   `bson:"displayName" json:"displayName"`
	Status      string   `bson:"status" json:"status"` // e.g. "active", "online", "offline"
	Rating      float64  `bson:"rating" json:"rating"` // 0 when unrated
	LocationGeo GeoPoint `bson:"locationGeo" json:"locationGeo"`
}

// Provider is the candidate entity dispatch selects from. Profile and
// availability are owned by the external provider-management collaborator;
// this engine reads them as a snapshot at selection time.
type Provider struct {
	ID                string          `bson:"id" json:"id"`
	Profile           ProviderProfile `bson:"profile" json:"profile"`
	ServiceTemplates  []string        `bson:"serviceTemplates" json:"serviceTemplates"`
	CompletedBookings int             `bson:"completedBookings" json:"completedBookings,omitempty"`
	FCMToken          string          `bson:"fcmToken,omitempty" json:"-"`
	CreatedAt         time.Time       `bson:"createdAt" json:"createdAt,omitzero"`
	UpdatedAt         time.Time       `bson:"updatedAt" json:"updatedAt,omitzero"`
}

// Customer is the minimal customer projection dispatch needs for outbound
// notifications.
type Customer struct {
	ID          string `bson:"id" json:"id"`
	DisplayName string `bson:"displayName" json:"displayName"`
	FCMToken    string `bson:"fcmToken,omitempty" json:"-"`
}
