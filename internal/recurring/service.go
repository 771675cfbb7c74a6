package recurring

import (
	"context"
	"time"

	"courtgrid/internal/backend"
	"courtgrid/internal/logger"
	"courtgrid/internal/metrics"
	"courtgrid/internal/schedule"

	"github.com/google/uuid"
)

// AvailabilityChecker is the backend collaborator performing the actual
// per-date conflict detection. This service only orchestrates and holds the
// resolution state.
type AvailabilityChecker interface {
	CheckRecurringAvailability(ctx context.Context, req backend.RecurringCheckRequest) (*backend.RecurringCheckResponse, error)
}

// CheckRequest describes a recurring series to reconcile.
type CheckRequest struct {
	ResourceID int    `json:"resourceId" binding:"required" validate:"required,gt=0"`
	StartDate  string `json:"startDate" binding:"required" validate:"required"`
	StartTime  string `json:"startTime" binding:"required" validate:"required"`
	Duration   int    `json:"duration" binding:"required" validate:"required"`
	Rule       Rule   `json:"rule" binding:"required" validate:"required"`
	Count      int    `json:"count" binding:"required" validate:"required,gt=0"`
}

func (r CheckRequest) validate() error {
	if !schedule.ValidDate(r.StartDate) {
		return ErrInvalidStartDate
	}
	if !schedule.ValidTime(r.StartTime) {
		return ErrInvalidStartTime
	}
	if !schedule.ValidDuration(r.Duration) {
		return ErrInvalidDuration
	}
	if !r.Rule.Valid() {
		return ErrInvalidRule
	}
	if r.Count < 1 || r.Count > maxOccurrences {
		return ErrInvalidCount
	}
	return nil
}

// Reconciler runs availability checks for recurring series and manages the
// per-session conflict resolution state.
type Reconciler struct {
	checker  AvailabilityChecker
	sessions *Manager
}

func NewReconciler(checker AvailabilityChecker, sessions *Manager) *Reconciler {
	return &Reconciler{checker: checker, sessions: sessions}
}

// Check expands the recurrence rule, asks the backend for per-date conflict
// verdicts and opens a resolution session. The ctx is the caller's: walking
// away from the flow cancels the in-flight check silently.
func (r *Reconciler) Check(ctx context.Context, req CheckRequest) (*Session, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	dates, err := OccurrenceDates(req.StartDate, req.Rule, req.Count)
	if err != nil {
		return nil, err
	}

	resp, err := r.checker.CheckRecurringAvailability(ctx, backend.RecurringCheckRequest{
		ResourceID: req.ResourceID,
		StartTime:  req.StartTime,
		Duration:   req.Duration,
		Dates:      dates,
	})
	if err != nil {
		return nil, err
	}

	reports := make(map[string]backend.OccurrenceReport, len(resp.Availability))
	for _, rep := range resp.Availability {
		reports[rep.Date] = rep
	}

	occurrences := make([]Occurrence, 0, len(dates))
	for _, date := range dates {
		occ := Occurrence{Date: date, Available: true}
		if rep, ok := reports[date]; ok {
			occ.Available = rep.Available
			occ.Conflict = rep.Conflict
			occ.Alternatives = rep.Alternatives
		}
		metrics.RecordRecurringOccurrence(occ.Classify())
		occurrences = append(occurrences, occ)
	}

	session := &Session{
		ID:          uuid.NewString(),
		ResourceID:  req.ResourceID,
		StartDate:   req.StartDate,
		StartTime:   req.StartTime,
		Duration:    req.Duration,
		Rule:        req.Rule,
		CreatedAt:   time.Now(),
		State:       StateConflictsPending,
		Occurrences: occurrences,
	}
	if session.CanSubmit() {
		session.State = StateReadyToSubmit
	}

	r.sessions.Put(session)
	logger.Info("recurring session opened",
		"session_id", session.ID,
		"occurrences", len(occurrences),
		"unavailable", resp.Summary.Unavailable)

	return session, nil
}

// ApplyAlternative resolves one occurrence of a session.
func (r *Reconciler) ApplyAlternative(sessionID, date string, alt backend.Alternative) (*Session, error) {
	session, ok := r.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if err := session.ApplyAlternative(date, alt); err != nil {
		return nil, err
	}
	return session, nil
}

// Get returns a live session.
func (r *Reconciler) Get(sessionID string) (*Session, error) {
	session, ok := r.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Abandon drops a session. In-flight checks for it were tied to the caller's
// request context and die with it; issued booking creates are never pulled
// back.
func (r *Reconciler) Abandon(sessionID string) {
	r.sessions.Delete(sessionID)
}
