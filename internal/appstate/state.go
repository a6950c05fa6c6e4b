// Package appstate holds the session of a client: who is logged in, which
// project is open and which material is being inspected.
package appstate

import (
	"sync"
	"time"

	"construction-site-api-server/internal/availability"
	"construction-site-api-server/internal/models"
)

// SelectedMaterial is the material opened from the live availability list.
type SelectedMaterial struct {
	MatCode   string
	MatName   string
	Documents []availability.MaterialDocument
}

// SelectMaterial builds the selection from a live availability row. The
// name comes from the first record that has one.
func SelectMaterial(row availability.MaterialAvailability) SelectedMaterial {
	sel := SelectedMaterial{MatCode: row.MatCode, Documents: row.Documents}
	for _, doc := range row.Documents {
		if d, err := doc.Details(); err == nil && d.MatName != "" {
			sel.MatName = d.MatName
			break
		}
	}
	return sel
}

// State is safe for concurrent use. The zero value is an empty session.
type State struct {
	mu       sync.RWMutex
	user     *models.User
	project  *models.Project
	selected *SelectedMaterial
}

func (s *State) SetUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
}

func (s *State) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *State) ClearUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

func (s *State) SetProject(p models.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project = &p
}

func (s *State) Project() (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.project == nil {
		return models.Project{}, false
	}
	return *s.project, true
}

func (s *State) ClearProject() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project = nil
}

// SetSelectedMaterial stores a copy of m; later changes to m's documents
// do not leak into the state.
func (s *State) SetSelectedMaterial(m SelectedMaterial) {
	docs := make([]availability.MaterialDocument, len(m.Documents))
	for i, d := range m.Documents {
		docs[i] = append(availability.MaterialDocument(nil), d...)
	}
	m.Documents = docs
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &m
}

func (s *State) SelectedMaterial() (SelectedMaterial, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return SelectedMaterial{}, false
	}
	return *s.selected, true
}

func (s *State) ClearSelectedMaterial() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// Logout clears the whole session.
func (s *State) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user, s.project, s.selected = nil, nil, nil
}

// Detail is the summary shown for one selected material.
type Detail struct {
	MatCode    string
	MatName    string
	Records    int
	Usage      []models.UsageEntry
	FirstEntry time.Time
	LastUpdate time.Time
}

// MaterialDetail flattens the usage history of every record, in record
// order. FirstEntry is the creation time of the first record and LastUpdate
// the update time of the last one; both are zero without records. Records
// that cannot be read still count but contribute nothing else.
func MaterialDetail(sel SelectedMaterial) Detail {
	d := Detail{
		MatCode: sel.MatCode,
		MatName: sel.MatName,
		Records: len(sel.Documents),
		Usage:   []models.UsageEntry{},
	}
	for i, doc := range sel.Documents {
		details, err := doc.Details()
		if err != nil {
			continue
		}
		d.Usage = append(d.Usage, details.UsageHistory...)
		if i == 0 {
			d.FirstEntry = details.CreatedAt
		}
		if i == len(sel.Documents)-1 {
			d.LastUpdate = details.UpdatedAt
		}
	}
	return d
}
