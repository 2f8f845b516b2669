package dispatch

import (
	"context"
	"fmt"

	providerRepo "fundigo/database/repository/provider"
	"fundigo/models"
)

// SelectionRequest narrows and orders the candidate pool for one booking.
type SelectionRequest struct {
	TemplateID         string
	Location           models.GeoPoint
	Mode               SortMode
	RadiusKm           float64 // 0 means unbounded
	ExcludeProviderIDs []string
}

// CandidateSelector produces an ordered candidate ranking for a booking
// request. An empty result is not an error; the caller decides how to react.
type CandidateSelector interface {
	Select(ctx context.Context, req SelectionRequest) ([]models.RankedCandidate, error)
}

// DefaultCandidateSelector implements CandidateSelector against the provider
// availability snapshot.
type DefaultCandidateSelector struct {
	ProviderRepo providerRepo.ProviderRepository
	Weights      Weights
}

func (s *DefaultCandidateSelector) Select(ctx context.Context, req SelectionRequest) ([]models.RankedCandidate, error) {
	if err := ValidateLocation(req.Location); err != nil {
		return nil, err
	}
	if req.TemplateID == "" {
		return nil, NewError(CodeUnknownTemplate, "service template is required")
	}

	criteria := providerRepo.ProviderSearchCriteria{
		TemplateID:    req.TemplateID,
		LocationGeo:   req.Location,
		MaxDistanceKm: req.RadiusKm,
		ExcludeIDs:    req.ExcludeProviderIDs,
	}
	providers, err := s.ProviderRepo.Search(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("candidate search failed: %w", err)
	}
	if len(providers) == 0 {
		return []models.RankedCandidate{}, nil
	}

	// Providers with malformed location snapshots cannot be scored; drop
	// them rather than failing the whole selection.
	eligible := providers[:0]
	for _, p := range providers {
		if ValidateLocation(p.Profile.LocationGeo) == nil {
			eligible = append(eligible, p)
		}
	}

	return RankCandidates(req.Location, eligible, req.Mode, s.Weights)
}
