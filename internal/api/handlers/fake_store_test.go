package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"construction-site-api-server/internal/availability"
	"construction-site-api-server/internal/inventory"
	"construction-site-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory inventory.Store.
type memStore struct {
	mu      sync.Mutex
	records []models.MaterialRecord
	err     error
}

func (m *memStore) matching(f inventory.Filter) []models.MaterialRecord {
	var out []models.MaterialRecord
	for _, r := range m.records {
		if f.ProjectID == "" || r.ProjectAssigned == f.ProjectID {
			out = append(out, r)
		}
	}
	return out
}

func (m *memStore) codes(recs []models.MaterialRecord) []string {
	seen := map[string]bool{}
	var codes []string
	for _, r := range recs {
		if !seen[r.MatCode] {
			seen[r.MatCode] = true
			codes = append(codes, r.MatCode)
		}
	}
	sort.Strings(codes)
	return codes
}

func (m *memStore) TotalAvailability(_ context.Context, f inventory.Filter) ([]availability.AvailableTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	recs := m.matching(f)
	out := []availability.AvailableTotal{}
	for _, code := range m.codes(recs) {
		row := availability.AvailableTotal{MatCode: code}
		for _, r := range recs {
			if r.MatCode == code {
				row.TotalAvailable += r.Quantity
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *memStore) TotalConsumed(_ context.Context, f inventory.Filter) ([]availability.ConsumedTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.matching(f)
	out := []availability.ConsumedTotal{}
	for _, code := range m.codes(recs) {
		row := availability.ConsumedTotal{MatCode: code}
		used := false
		for _, r := range recs {
			if r.MatCode == code && len(r.UsageHistory) > 0 {
				used = true
				row.TotalConsumed += r.Consumed()
			}
		}
		if used {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memStore) GroupedDetails(_ context.Context, f inventory.Filter) ([]availability.GroupedMaterial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.matching(f)
	out := []availability.GroupedMaterial{}
	for _, code := range m.codes(recs) {
		var docs []models.MaterialRecord
		for _, r := range recs {
			if r.MatCode == code {
				docs = append(docs, r)
			}
		}
		g, err := inventory.GroupMaterial(code, docs)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (m *memStore) Add(_ context.Context, rec *models.MaterialRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.QuantityAdded <= 0 {
		return inventory.ErrInvalidQuantity
	}
	rec.ID = primitive.NewObjectID()
	rec.Quantity = rec.QuantityAdded
	rec.UsageHistory = []models.UsageEntry{}
	rec.CreatedAt = time.Now()
	m.records = append(m.records, *rec)
	return nil
}

func (m *memStore) List(_ context.Context, f inventory.Filter) ([]models.MaterialRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.matching(f)
	if out == nil {
		out = []models.MaterialRecord{}
	}
	return out, nil
}

func (m *memStore) RecordsForProject(ctx context.Context, projectID string) ([]models.MaterialRecord, error) {
	return m.List(ctx, inventory.Filter{ProjectID: projectID})
}

func (m *memStore) DeleteByID(_ context.Context, id string) (models.MaterialRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.MaterialRecord{}, inventory.ErrInvalidID
	}
	for i, r := range m.records {
		if r.ID == oid {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return r, nil
		}
	}
	return models.MaterialRecord{}, inventory.ErrNotFound
}

func (m *memStore) DeleteByCode(_ context.Context, matCode string, f inventory.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []models.MaterialRecord
	var n int64
	for _, r := range m.records {
		if r.MatCode == matCode && (f.ProjectID == "" || r.ProjectAssigned == f.ProjectID) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	if n == 0 {
		return 0, inventory.ErrNotFound
	}
	m.records = kept
	return n, nil
}

func (m *memStore) Take(_ context.Context, req inventory.TakeRequest) ([]inventory.Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var candidates []models.MaterialRecord
	for _, r := range m.records {
		if r.MatCode == req.MatCode && (req.ProjectID == "" || r.ProjectAssigned == req.ProjectID) {
			candidates = append(candidates, r)
		}
	}
	plan, err := inventory.PlanTake(candidates, req.Quantity)
	if err != nil {
		return nil, err
	}
	for _, a := range plan {
		for i := range m.records {
			if m.records[i].ID == a.RecordID {
				m.records[i].Quantity -= a.Quantity
				m.records[i].UsageHistory = append(m.records[i].UsageHistory,
					models.UsageEntry{TakenBy: req.TakenBy, Quantity: a.Quantity, Date: req.Date})
			}
		}
	}
	return plan, nil
}
