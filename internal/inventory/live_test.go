package inventory

import (
	"context"
	"errors"
	"testing"

	"construction-site-api-server/internal/availability"
	"construction-site-api-server/internal/models"
)

type stubStore struct {
	Store // unused methods panic

	available []availability.AvailableTotal
	consumed  []availability.ConsumedTotal
	grouped   []availability.GroupedMaterial
	err       error
	filters   chan Filter
}

func (s *stubStore) TotalAvailability(ctx context.Context, f Filter) ([]availability.AvailableTotal, error) {
	s.filters <- f
	return s.available, nil
}

func (s *stubStore) TotalConsumed(ctx context.Context, f Filter) ([]availability.ConsumedTotal, error) {
	s.filters <- f
	if s.err != nil {
		return nil, s.err
	}
	return s.consumed, nil
}

func (s *stubStore) GroupedDetails(ctx context.Context, f Filter) ([]availability.GroupedMaterial, error) {
	s.filters <- f
	return s.grouped, nil
}

func TestLiveAvailability(t *testing.T) {
	store := &stubStore{
		available: []availability.AvailableTotal{{MatCode: "CEM-01", TotalAvailable: 25}, {MatCode: "STL-02", TotalAvailable: 4}},
		consumed:  []availability.ConsumedTotal{{MatCode: "CEM-01", TotalConsumed: 15}},
		grouped: []availability.GroupedMaterial{
			{MatCode: "STL-02", Documents: []availability.MaterialDocument{availability.MaterialDocument(`{"matCode":"STL-02","quantity":4}`)}},
		},
		filters: make(chan Filter, 3),
	}

	got, err := LiveAvailability(context.Background(), store, Filter{ProjectID: "p1"}, "stl")
	if err != nil {
		t.Fatalf("LiveAvailability() error = %v", err)
	}
	if len(got) != 1 || got[0].MatCode != "STL-02" || got[0].Status != availability.StatusLowQuantity {
		t.Fatalf("LiveAvailability() = %+v", got)
	}
	if len(got[0].Documents) != 1 {
		t.Errorf("documents = %d, want 1", len(got[0].Documents))
	}

	close(store.filters)
	n := 0
	for f := range store.filters {
		n++
		if f.ProjectID != "p1" {
			t.Errorf("query filter = %+v, want project p1", f)
		}
	}
	if n != 3 {
		t.Errorf("queries = %d, want 3", n)
	}
}

func TestLiveAvailability_FailsWhole(t *testing.T) {
	boom := errors.New("boom")
	store := &stubStore{
		available: []availability.AvailableTotal{{MatCode: "CEM-01", TotalAvailable: 25}},
		err:       boom,
		filters:   make(chan Filter, 3),
	}

	got, err := LiveAvailability(context.Background(), store, Filter{}, "")
	if !errors.Is(err, boom) {
		t.Fatalf("LiveAvailability() error = %v, want %v", err, boom)
	}
	if got != nil {
		t.Errorf("LiveAvailability() = %v, want nil on failure", got)
	}
}

func TestGroupMaterial(t *testing.T) {
	g, err := GroupMaterial("CEM-01", []models.MaterialRecord{
		{MatCode: "CEM-01", Quantity: 5, UsageHistory: []models.UsageEntry{{TakenBy: "asha", Quantity: 1}}},
		{MatCode: "CEM-01", Quantity: 8},
	})
	if err != nil {
		t.Fatalf("GroupMaterial() error = %v", err)
	}
	if g.MatCode != "CEM-01" || len(g.Documents) != 2 {
		t.Fatalf("GroupMaterial() = %+v", g)
	}
	d, err := g.Documents[0].Details()
	if err != nil {
		t.Fatalf("Details() error = %v", err)
	}
	if d.Quantity != 5 || len(d.UsageHistory) != 1 || d.UsageHistory[0].TakenBy != "asha" {
		t.Errorf("Details() = %+v", d)
	}

	empty, err := GroupMaterial("STL-02", nil)
	if err != nil || empty.Documents == nil {
		t.Errorf("GroupMaterial(nil) = %+v, %v, want empty documents", empty, err)
	}
}
