package booking

import (
	"context"
	"errors"
	"sort"
	"time"

	"courtgrid/internal/backend"
	"courtgrid/internal/logger"
	"courtgrid/internal/metrics"
	"courtgrid/internal/reservation"
	"courtgrid/internal/resource"
	"courtgrid/internal/schedule"
)

var (
	ErrAlreadyTerminal = errors.New("booking is already in a terminal state")
	ErrUnknownAction   = errors.New("unknown status action")
	ErrUnknownResource = errors.New("unknown resource")
)

// Actions accepted by ApplyStatusAction and the status they lead to.
var actionStatus = map[string]string{
	"confirm":  reservation.StatusConfirmed,
	"cancel":   reservation.StatusCancelled,
	"start":    reservation.StatusInProgress,
	"complete": reservation.StatusCompleted,
	"no_show":  reservation.StatusNoShow,
}

// Backend is the slice of the remote API the orchestrator needs.
type Backend interface {
	ListResources(ctx context.Context) ([]resource.Resource, error)
	CreateBooking(ctx context.Context, req backend.CreateBookingRequest) (*reservation.Reservation, error)
	ListBookings(ctx context.Context, filter backend.BookingFilter) ([]reservation.Reservation, error)
	UpdateBookingStatus(ctx context.Context, id int, action string) (*reservation.Reservation, error)
	CreateRecurringBookingGroup(ctx context.Context, req backend.RecurringGroupRequest) ([]reservation.Reservation, error)
}

// Occurrence is one resolved (date, resource, time) triple of a recurring
// series, ready for submission.
type Occurrence struct {
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	ResourceID int    `json:"resourceId"`
}

// SeriesResult reports the terminal outcome of a non-atomic recurring
// submission. Partial success is a valid terminal state.
type SeriesResult struct {
	SuccessCount int                       `json:"successCount"`
	ErrorCount   int                       `json:"errorCount"`
	FailedDates  []string                  `json:"failedDates,omitempty"`
	Created      []reservation.Reservation `json:"created"`
}

// Service sequences booking create and status calls against the backend and
// keeps the optimistic store in step. A nil cache disables invalidation.
type Service struct {
	backend Backend
	store   *reservation.Store
	cache   *schedule.Cache

	reloadTimeout time.Duration
}

func NewService(b Backend, store *reservation.Store, cache *schedule.Cache) *Service {
	return &Service{
		backend:       b,
		store:         store,
		cache:         cache,
		reloadTimeout: 15 * time.Second,
	}
}

// Submit issues one create call. On success the reservation is inserted into
// the optimistic store immediately and an authoritative reload is scheduled;
// the caller never waits for the reload. On failure no local state changes.
func (s *Service) Submit(ctx context.Context, draft Draft) (*reservation.Reservation, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	resources, err := s.backend.ListResources(ctx)
	if err != nil {
		return nil, err
	}
	res, ok := resource.Find(resources, draft.ResourceID)
	if !ok {
		return nil, ErrUnknownResource
	}
	price := res.PriceFor(draft.Duration)
	if draft.DepositCents > price {
		return nil, ErrDepositExceedsPrice
	}

	// The create call must survive the caller going away: the booking may
	// land server-side regardless, so its result still has to reach the
	// store.
	created, err := s.backend.CreateBooking(context.WithoutCancel(ctx), s.createRequest(draft, price, false))
	if err != nil {
		metrics.RecordBookingSubmitted("failure")
		return nil, err
	}
	metrics.RecordBookingSubmitted("success")

	s.store.Insert(*created)
	s.invalidateAvailability(draft.ResourceID, draft.Date)
	s.scheduleReload()

	return created, nil
}

// SubmitSeries creates every occurrence of a resolved recurring series. The
// atomic group endpoint is tried first; when the backend does not support it
// the occurrences are created sequentially in ascending date order, and
// per-occurrence failures are collected rather than aborting the batch.
// Already-created bookings are never rolled back.
func (s *Service) SubmitSeries(ctx context.Context, anchor Draft, occurrences []Occurrence) (*SeriesResult, error) {
	if err := anchor.Validate(); err != nil {
		return nil, err
	}
	if len(occurrences) == 0 {
		return &SeriesResult{Created: []reservation.Reservation{}}, nil
	}

	sort.Slice(occurrences, func(i, j int) bool {
		return occurrences[i].Date < occurrences[j].Date
	})

	resources, err := s.backend.ListResources(ctx)
	if err != nil {
		return nil, err
	}
	anchorPrice := resource.ResolvePrice(resources, anchor.ResourceID, anchor.Duration, 0)

	requests := make([]backend.CreateBookingRequest, 0, len(occurrences))
	for _, occ := range occurrences {
		draft := anchor
		draft.Date = occ.Date
		draft.StartTime = occ.StartTime
		draft.ResourceID = occ.ResourceID
		// An alternative may use a different resource; price it
		// independently, falling back to the anchor's price.
		price := resource.ResolvePrice(resources, occ.ResourceID, anchor.Duration, anchorPrice)
		requests = append(requests, s.createRequest(draft, price, true))
	}

	ctx = context.WithoutCancel(ctx)

	created, err := s.backend.CreateRecurringBookingGroup(ctx, backend.RecurringGroupRequest{Occurrences: requests})
	if err == nil {
		for _, r := range created {
			s.store.Insert(r)
			s.invalidateAvailability(r.ResourceID, r.Date)
			metrics.RecordBookingSubmitted("success")
		}
		s.scheduleReload()
		return &SeriesResult{SuccessCount: len(created), Created: created}, nil
	}
	if !errors.Is(err, backend.ErrGroupCreateUnsupported) {
		return nil, err
	}

	result := &SeriesResult{Created: []reservation.Reservation{}}
	for i, req := range requests {
		r, err := s.backend.CreateBooking(ctx, req)
		if err != nil {
			logger.Warn("recurring occurrence failed",
				"date", occurrences[i].Date, "resource_id", req.ResourceID, "error", err)
			metrics.RecordBookingSubmitted("failure")
			result.ErrorCount++
			result.FailedDates = append(result.FailedDates, occurrences[i].Date)
			continue
		}
		metrics.RecordBookingSubmitted("success")
		result.SuccessCount++
		result.Created = append(result.Created, *r)
		s.store.Insert(*r)
		s.invalidateAvailability(req.ResourceID, req.Date)
	}
	s.scheduleReload()

	return result, nil
}

// ApplyStatusAction performs confirm/cancel/start/complete/no_show. The
// store is patched optimistically on success and a reload is scheduled.
func (s *Service) ApplyStatusAction(ctx context.Context, id int, action string) (*reservation.Reservation, error) {
	newStatus, ok := actionStatus[action]
	if !ok {
		return nil, ErrUnknownAction
	}

	if current, found := s.store.Get(id); found && reservation.IsTerminal(current.Status) {
		metrics.RecordStatusAction(action, "rejected")
		return nil, ErrAlreadyTerminal
	}

	updated, err := s.backend.UpdateBookingStatus(context.WithoutCancel(ctx), id, action)
	if err != nil {
		metrics.RecordStatusAction(action, "failure")
		return nil, err
	}
	metrics.RecordStatusAction(action, "success")

	if !s.store.PatchStatus(id, newStatus, nil) {
		// Stale view; the reload below brings the entry in.
		s.store.Insert(*updated)
	}
	s.scheduleReload()

	return updated, nil
}

// List reads the optimistic view. When syncReload is set an authoritative
// reload happens first, for callers that need fresh data (initial page load,
// manual refresh).
func (s *Service) List(ctx context.Context, filter reservation.Filter, syncReload bool) ([]reservation.Reservation, error) {
	if syncReload {
		if err := s.reloadOnce(ctx); err != nil {
			return nil, err
		}
	}
	return s.store.List(filter), nil
}

// reloadOnce fetches the authoritative booking set and replaces the store.
// Two racing reloads are allowed: last writer wins.
func (s *Service) reloadOnce(ctx context.Context) error {
	bookings, err := s.backend.ListBookings(ctx, backend.BookingFilter{})
	if err != nil {
		metrics.RecordStoreReload("failure")
		return err
	}
	metrics.RecordStoreReload("ok")
	s.store.Reload(bookings)
	return nil
}

// scheduleReload runs the authoritative refresh in the background with the
// service's own deadline, detached from any request context.
func (s *Service) scheduleReload() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.reloadTimeout)
		defer cancel()
		if err := s.reloadOnce(ctx); err != nil {
			logger.Warn("scheduled reservation reload failed", "error", err)
		}
	}()
}

func (s *Service) invalidateAvailability(resourceID int, date string) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.cache.Invalidate(ctx, resourceID, date)
}

func (s *Service) createRequest(d Draft, priceCents int64, recurring bool) backend.CreateBookingRequest {
	return backend.CreateBookingRequest{
		ResourceID:   d.ResourceID,
		Date:         d.Date,
		StartTime:    d.StartTime,
		EndTime:      d.EndTime(),
		Duration:     d.Duration,
		PriceCents:   priceCents,
		ClientName:   d.ClientName,
		ClientEmail:  d.ClientEmail,
		ClientPhone:  d.ClientPhone,
		Notes:        d.Notes,
		DepositCents: d.DepositCents,
		IsRecurring:  recurring,
	}
}
