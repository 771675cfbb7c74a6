package reservation

import (
	"sort"
	"sync"
)

// Filter narrows List. Zero values mean no constraint. Dates are ISO
// (YYYY-MM-DD) so string comparison orders correctly.
type Filter struct {
	DateFrom   string
	DateTo     string
	ResourceID int
}

// Store is an in-memory optimistic view of the reservations for the visible
// date range. Mutations from this process are applied immediately; Reload
// with the backend's answer always supersedes them.
type Store struct {
	mu   sync.RWMutex
	byID map[int]Reservation
}

func NewStore() *Store {
	return &Store{byID: make(map[int]Reservation)}
}

// Insert upserts by id. Inserting a reservation the backend later returns
// from a reload leaves exactly one entry.
func (s *Store) Insert(r Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[r.ID] = r
}

// PatchStatus updates the status of an existing entry, applying any extra
// field overrides. Unknown ids are a no-op: the view may be stale and the
// next reload will straighten it out.
func (s *Store) PatchStatus(id int, newStatus string, extra map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return false
	}
	r.Status = newStatus
	for k, v := range extra {
		switch k {
		case "paymentStatus":
			r.PaymentStatus = v
		case "notes":
			r.Notes = v
		}
	}
	s.byID[id] = r
	return true
}

// Remove forgets the entry, used on hard delete.
func (s *Store) Remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

// Reload replaces the whole view with the backend's authoritative answer.
// Optimistic entries not present in the reload are dropped.
func (s *Store) Reload(reservations []Reservation) {
	next := make(map[int]Reservation, len(reservations))
	for _, r := range reservations {
		next[r.ID] = r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = next
}

// Get returns the entry for id, if present.
func (s *Store) Get(id int) (Reservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	return r, ok
}

// List returns matching reservations ordered by (date, time, id).
func (s *Store) List(f Filter) []Reservation {
	s.mu.RLock()
	out := make([]Reservation, 0, len(s.byID))
	for _, r := range s.byID {
		if f.DateFrom != "" && r.Date < f.DateFrom {
			continue
		}
		if f.DateTo != "" && r.Date > f.DateTo {
			continue
		}
		if f.ResourceID != 0 && r.ResourceID != f.ResourceID {
			continue
		}
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len reports the number of entries in the view.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
