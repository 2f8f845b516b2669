package dispatch

import (
	"math"
	"sort"

	"fundigo/models"
)

// SortMode is the closed set of ranking policies. Boundary strings are
// mapped through ParseSortMode; anything else is rejected.
type SortMode int

const (
	SortBalanced SortMode = iota
	SortNearest
	SortHighestRating
)

func ParseSortMode(s string) (SortMode, error) {
	switch s {
	case "", "balanced":
		return SortBalanced, nil
	case "nearest":
		return SortNearest, nil
	case "highest_rating":
		return SortHighestRating, nil
	}
	return SortBalanced, NewError(CodeUnsupportedSortMode, "unsupported sort mode: "+s)
}

func (m SortMode) String() string {
	switch m {
	case SortNearest:
		return "nearest"
	case SortHighestRating:
		return "highest_rating"
	}
	return "balanced"
}

// Weights are the balanced-mode composite weights, loaded from config.
type Weights struct {
	Distance float64
	Rating   float64
}

// haversine returns the great-circle distance in km on a spherical earth.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371
	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLon := (lon2 - lon1) * (math.Pi / 180)
	lat1Rad := lat1 * (math.Pi / 180)
	lat2Rad := lat2 * (math.Pi / 180)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// ValidateLocation rejects malformed coordinates.
func ValidateLocation(p models.GeoPoint) error {
	if len(p.Coordinates) < 2 {
		return NewError(CodeInvalidLocation, "location requires [lng, lat] coordinates")
	}
	lng, lat := p.Coordinates[0], p.Coordinates[1]
	if math.IsNaN(lng) || math.IsNaN(lat) || lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return NewError(CodeInvalidLocation, "location coordinates out of range")
	}
	return nil
}

// RankCandidates scores every candidate against the customer location under
// the given mode and returns them best-first. The tie-break chain always
// ends on the provider id, so the ordering is a total order: two calls with
// identical inputs produce identical output.
func RankCandidates(origin models.GeoPoint, candidates []models.Provider, mode SortMode, weights Weights) ([]models.RankedCandidate, error) {
	if err := ValidateLocation(origin); err != nil {
		return nil, err
	}

	ranked := make([]models.RankedCandidate, 0, len(candidates))
	for _, p := range candidates {
		if err := ValidateLocation(p.Profile.LocationGeo); err != nil {
			return nil, err
		}
		dist := haversine(origin.Lat(), origin.Lng(), p.Profile.LocationGeo.Lat(), p.Profile.LocationGeo.Lng())
		rating := p.Profile.Rating
		if rating < 0 {
			rating = 0
		}
		ranked = append(ranked, models.RankedCandidate{
			ProviderID: p.ID,
			DistanceKm: dist,
			Rating:     rating,
		})
	}

	switch mode {
	case SortNearest:
		for i := range ranked {
			ranked[i].Score = -ranked[i].DistanceKm
		}
		sort.Slice(ranked, func(i, j int) bool {
			a, b := ranked[i], ranked[j]
			if a.DistanceKm != b.DistanceKm {
				return a.DistanceKm < b.DistanceKm
			}
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			return a.ProviderID < b.ProviderID
		})
	case SortHighestRating:
		for i := range ranked {
			ranked[i].Score = ranked[i].Rating
		}
		sort.Slice(ranked, func(i, j int) bool {
			a, b := ranked[i], ranked[j]
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			if a.DistanceKm != b.DistanceKm {
				return a.DistanceKm < b.DistanceKm
			}
			return a.ProviderID < b.ProviderID
		})
	default:
		applyBalancedScores(ranked, weights)
		sort.Slice(ranked, func(i, j int) bool {
			a, b := ranked[i], ranked[j]
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.ProviderID < b.ProviderID
		})
	}

	return ranked, nil
}

// applyBalancedScores min-max normalizes the distance and rating populations
// of the current pool before combining, so a pool of very close providers
// still spreads meaningfully on the distance axis.
func applyBalancedScores(ranked []models.RankedCandidate, weights Weights) {
	if len(ranked) == 0 {
		return
	}
	minDist, maxDist := ranked[0].DistanceKm, ranked[0].DistanceKm
	minRat, maxRat := ranked[0].Rating, ranked[0].Rating
	for _, rc := range ranked[1:] {
		minDist = math.Min(minDist, rc.DistanceKm)
		maxDist = math.Max(maxDist, rc.DistanceKm)
		minRat = math.Min(minRat, rc.Rating)
		maxRat = math.Max(maxRat, rc.Rating)
	}

	norm := func(v, lo, hi float64) float64 {
		if hi == lo {
			return 0
		}
		return (v - lo) / (hi - lo)
	}
	for i := range ranked {
		nd := norm(ranked[i].DistanceKm, minDist, maxDist)
		nr := norm(ranked[i].Rating, minRat, maxRat)
		ranked[i].Score = weights.Distance*(1-nd) + weights.Rating*nr
	}
}
