package providerRepo

import (
	"context"

	"fundigo/models"
)

// ProviderSearchCriteria narrows the candidate pool before ranking.
type ProviderSearchCriteria struct {
	TemplateID    string
	LocationGeo   models.GeoPoint
	MaxDistanceKm float64  // 0 means unbounded
	ExcludeIDs    []string // providers already offered this booking
}

// ProviderRepository reads the externally owned provider availability state
// as a snapshot at selection time.
type ProviderRepository interface {
	Search(ctx context.Context, criteria ProviderSearchCriteria) ([]models.Provider, error)
	GetByID(ctx context.Context, id string) (*models.Provider, error)
}
