package dispatch

import (
	"context"
	"testing"

	"fundigo/models"
)

func newSelector(providers []models.Provider) *DefaultCandidateSelector {
	return &DefaultCandidateSelector{
		ProviderRepo: &fakeProviderRepo{providers: providers},
		Weights:      Weights{Distance: 0.6, Rating: 0.4},
	}
}

func TestSelectFiltersPool(t *testing.T) {
	offline := testProvider("OFFLINE", 1, 4)
	offline.Profile.Status = "offline"
	otherTemplate := testProvider("PLUMBER", 1, 4)
	otherTemplate.ServiceTemplates = []string{"plumbing"}

	providers := []models.Provider{
		testProvider("P1", 2, 4),
		testProvider("P2", 4, 3),
		offline,
		otherTemplate,
	}
	selector := newSelector(providers)

	ranked, err := selector.Select(context.Background(), SelectionRequest{
		TemplateID: "cleaning",
		Location:   models.NewGeoPoint(0, 0),
		Mode:       SortNearest,
	})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if got := rankedIDs(ranked); len(got) != 2 || got[0] != "P1" || got[1] != "P2" {
		t.Errorf("pool = %v, want [P1 P2]", got)
	}
}

func TestSelectRadiusBound(t *testing.T) {
	selector := newSelector([]models.Provider{
		testProvider("NEAR", 2, 4),
		testProvider("FAR", 30, 5),
	})

	ranked, err := selector.Select(context.Background(), SelectionRequest{
		TemplateID: "cleaning",
		Location:   models.NewGeoPoint(0, 0),
		Mode:       SortNearest,
		RadiusKm:   10,
	})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if got := rankedIDs(ranked); len(got) != 1 || got[0] != "NEAR" {
		t.Errorf("radius-bounded pool = %v, want [NEAR]", got)
	}
}

func TestSelectExcludesOfferedProviders(t *testing.T) {
	selector := newSelector([]models.Provider{
		testProvider("P1", 1, 4),
		testProvider("P2", 2, 4),
		testProvider("P3", 3, 4),
	})

	ranked, err := selector.Select(context.Background(), SelectionRequest{
		TemplateID:         "cleaning",
		Location:           models.NewGeoPoint(0, 0),
		Mode:               SortNearest,
		ExcludeProviderIDs: []string{"P1", "P3"},
	})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if got := rankedIDs(ranked); len(got) != 1 || got[0] != "P2" {
		t.Errorf("exclusion pool = %v, want [P2]", got)
	}
}

func TestSelectEmptyPoolIsNotAnError(t *testing.T) {
	selector := newSelector(nil)
	ranked, err := selector.Select(context.Background(), SelectionRequest{
		TemplateID: "cleaning",
		Location:   models.NewGeoPoint(0, 0),
		Mode:       SortBalanced,
	})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(ranked) != 0 {
		t.Errorf("expected empty ranking, got %v", ranked)
	}
}

func TestSelectSkipsMalformedProviderLocations(t *testing.T) {
	broken := testProvider("BROKEN", 1, 5)
	broken.Profile.LocationGeo = models.GeoPoint{Type: "Point"}

	selector := newSelector([]models.Provider{broken, testProvider("OK", 2, 4)})
	ranked, err := selector.Select(context.Background(), SelectionRequest{
		TemplateID: "cleaning",
		Location:   models.NewGeoPoint(0, 0),
		Mode:       SortNearest,
	})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if got := rankedIDs(ranked); len(got) != 1 || got[0] != "OK" {
		t.Errorf("pool = %v, want [OK]", got)
	}
}

func TestSelectRequiresTemplate(t *testing.T) {
	selector := newSelector(nil)
	_, err := selector.Select(context.Background(), SelectionRequest{
		Location: models.NewGeoPoint(0, 0),
	})
	if CodeOf(err) != CodeUnknownTemplate {
		t.Errorf("expected unknown_template, got %v", err)
	}
}
