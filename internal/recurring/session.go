package recurring

import (
	"context"
	"errors"
	"sync"
	"time"

	"courtgrid/internal/backend"
	"courtgrid/internal/booking"
)

type State string

const (
	StateConflictsPending State = "conflicts_pending"
	StateReadyToSubmit    State = "ready_to_submit"
	StateSubmitting       State = "submitting"
	StateCompleted        State = "completed"
)

var (
	ErrSessionNotFound    = errors.New("recurring session not found")
	ErrOccurrenceNotFound = errors.New("occurrence not found in session")
	ErrNotResolvable      = errors.New("occurrence is already available")
	ErrNotReady           = errors.New("session has unresolved conflicts")
	ErrAlreadySubmitted   = errors.New("session already submitted")
	ErrSubmitInProgress   = errors.New("submission already in progress")
)

// Session is the server-held state of one recurring-booking resolution flow:
// the checked occurrences and the alternatives the user has applied so far.
type Session struct {
	ID         string    `json:"id"`
	ResourceID int       `json:"resourceId"`
	StartDate  string    `json:"startDate"`
	StartTime  string    `json:"startTime"`
	Duration   int       `json:"duration"`
	Rule       Rule      `json:"rule"`
	CreatedAt  time.Time `json:"createdAt"`

	mu          sync.Mutex
	State       State                 `json:"state"`
	Occurrences []Occurrence          `json:"occurrences"`
	Result      *booking.SeriesResult `json:"result,omitempty"`
}

// CanSubmit reports whether every occurrence is either available or resolved
// with a chosen alternative.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked()
}

func (s *Session) canSubmitLocked() bool {
	for _, o := range s.Occurrences {
		if !o.Available && !o.Resolved {
			return false
		}
	}
	return true
}

// ApplyAlternative resolves one conflicting occurrence with the chosen
// alternative. Overrides are not cross-checked against each other; the
// backend revalidates everything at submission.
func (s *Session) ApplyAlternative(date string, alt backend.Alternative) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.State {
	case StateCompleted:
		return ErrAlreadySubmitted
	case StateSubmitting:
		return ErrSubmitInProgress
	}

	for i := range s.Occurrences {
		if s.Occurrences[i].Date != date {
			continue
		}
		if s.Occurrences[i].Available {
			return ErrNotResolvable
		}
		s.Occurrences[i].Resolved = true
		s.Occurrences[i].Chosen = &alt
		if s.canSubmitLocked() {
			s.State = StateReadyToSubmit
		}
		return nil
	}
	return ErrOccurrenceNotFound
}

// Plan returns the final (date, resource, time) triples for submission:
// the anchor slot for available occurrences, the chosen alternative for
// resolved ones.
func (s *Session) Plan() []booking.Occurrence {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan := make([]booking.Occurrence, 0, len(s.Occurrences))
	for _, o := range s.Occurrences {
		occ := booking.Occurrence{
			Date:       o.Date,
			StartTime:  s.StartTime,
			ResourceID: s.ResourceID,
		}
		if !o.Available && o.Chosen != nil {
			occ.StartTime = o.Chosen.Time
			occ.ResourceID = o.Chosen.ResourceID
		}
		plan = append(plan, occ)
	}
	return plan
}

// BeginSubmit claims the session for one submission. Exactly one caller wins;
// concurrent callers get ErrSubmitInProgress, a finished session
// ErrAlreadySubmitted, unresolved conflicts ErrNotReady.
func (s *Session) BeginSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.State {
	case StateCompleted:
		return ErrAlreadySubmitted
	case StateSubmitting:
		return ErrSubmitInProgress
	}
	if !s.canSubmitLocked() {
		return ErrNotReady
	}
	s.State = StateSubmitting
	return nil
}

// AbortSubmit reopens a session whose submission never started any
// occurrence, so the caller may retry.
func (s *Session) AbortSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State == StateSubmitting {
		s.State = StateReadyToSubmit
	}
}

// Complete records the submission outcome and makes the session terminal.
func (s *Session) Complete(result *booking.SeriesResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = StateCompleted
	s.Result = result
}

// Snapshot returns a copy safe to serialize without holding the lock.
func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	occs := make([]Occurrence, len(s.Occurrences))
	copy(occs, s.Occurrences)

	return SessionView{
		ID:          s.ID,
		ResourceID:  s.ResourceID,
		StartDate:   s.StartDate,
		StartTime:   s.StartTime,
		Duration:    s.Duration,
		Rule:        s.Rule,
		State:       s.State,
		CanSubmit:   s.canSubmitLocked(),
		Occurrences: occs,
		Result:      s.Result,
		CreatedAt:   s.CreatedAt,
	}
}

// SessionView is the wire representation of a session.
type SessionView struct {
	ID          string                `json:"id"`
	ResourceID  int                   `json:"resourceId"`
	StartDate   string                `json:"startDate"`
	StartTime   string                `json:"startTime"`
	Duration    int                   `json:"duration"`
	Rule        Rule                  `json:"rule"`
	State       State                 `json:"state"`
	CanSubmit   bool                  `json:"canSubmit"`
	Occurrences []Occurrence          `json:"occurrences"`
	Result      *booking.SeriesResult `json:"result,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// Manager holds live sessions and expires abandoned ones.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

func (m *Manager) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// StartSweeper expires abandoned sessions until ctx is done.
func (m *Manager) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}
