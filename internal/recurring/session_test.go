package recurring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"courtgrid/internal/backend"
	"courtgrid/internal/booking"
	"courtgrid/internal/reservation"
	"courtgrid/internal/resource"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readySession() *Session {
	return &Session{
		ID:         "sess-1",
		ResourceID: 1,
		StartDate:  "2024-06-10",
		StartTime:  "09:00",
		Duration:   60,
		Rule:       RuleWeekly,
		CreatedAt:  time.Now(),
		State:      StateReadyToSubmit,
		Occurrences: []Occurrence{
			{Date: "2024-06-10", Available: true},
			{Date: "2024-06-17", Available: true},
		},
	}
}

func TestBeginSubmitAdmitsExactlyOneCaller(t *testing.T) {
	session := readySession()

	const callers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0

	wg.Add(callers)
	for range callers {
		go func() {
			defer wg.Done()
			if session.BeginSubmit() == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won)
	assert.Equal(t, StateSubmitting, session.Snapshot().State)
}

func TestBeginSubmitStateErrors(t *testing.T) {
	pending := readySession()
	pending.State = StateConflictsPending
	pending.Occurrences[0].Available = false
	assert.ErrorIs(t, pending.BeginSubmit(), ErrNotReady)

	inFlight := readySession()
	require.NoError(t, inFlight.BeginSubmit())
	assert.ErrorIs(t, inFlight.BeginSubmit(), ErrSubmitInProgress)

	done := readySession()
	done.State = StateCompleted
	assert.ErrorIs(t, done.BeginSubmit(), ErrAlreadySubmitted)
}

func TestAbortSubmitReopensSession(t *testing.T) {
	session := readySession()
	require.NoError(t, session.BeginSubmit())

	session.AbortSubmit()

	assert.Equal(t, StateReadyToSubmit, session.Snapshot().State)
	assert.NoError(t, session.BeginSubmit())
}

func TestApplyAlternativeRejectedWhileSubmitting(t *testing.T) {
	session := readySession()
	session.Occurrences[1].Available = false
	session.Occurrences[1].Resolved = true
	require.NoError(t, session.BeginSubmit())

	err := session.ApplyAlternative("2024-06-17", backend.Alternative{ResourceID: 2, Time: "10:00"})

	assert.ErrorIs(t, err, ErrSubmitInProgress)
}

// blockingGroupBackend parks group creates until release is closed, so a test
// can hold one submission in flight while issuing another.
type blockingGroupBackend struct {
	mu         sync.Mutex
	groupCalls int
	release    chan struct{}
}

func (b *blockingGroupBackend) ListResources(ctx context.Context) ([]resource.Resource, error) {
	return []resource.Resource{
		{ID: 1, Name: "Court 1", PricePerHourCents: 300000, IsActive: true},
	}, nil
}

func (b *blockingGroupBackend) CreateBooking(ctx context.Context, req backend.CreateBookingRequest) (*reservation.Reservation, error) {
	return nil, errors.New("unexpected per-occurrence create")
}

func (b *blockingGroupBackend) ListBookings(ctx context.Context, filter backend.BookingFilter) ([]reservation.Reservation, error) {
	return []reservation.Reservation{}, nil
}

func (b *blockingGroupBackend) UpdateBookingStatus(ctx context.Context, id int, action string) (*reservation.Reservation, error) {
	return nil, errors.New("unexpected status update")
}

func (b *blockingGroupBackend) CreateRecurringBookingGroup(ctx context.Context, req backend.RecurringGroupRequest) ([]reservation.Reservation, error) {
	b.mu.Lock()
	b.groupCalls++
	b.mu.Unlock()

	<-b.release

	out := make([]reservation.Reservation, 0, len(req.Occurrences))
	for i, occ := range req.Occurrences {
		out = append(out, reservation.Reservation{
			ID:         200 + i,
			ResourceID: occ.ResourceID,
			Date:       occ.Date,
			Time:       occ.StartTime,
			Status:     reservation.StatusPending,
		})
	}
	return out, nil
}

func TestConcurrentSubmitsCreateSeriesOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)

	be := &blockingGroupBackend{release: make(chan struct{})}
	sessions := NewManager(time.Hour)
	session := readySession()
	sessions.Put(session)

	handler := NewHandler(NewReconciler(nil, sessions), booking.NewService(be, reservation.NewStore(), nil))
	router := gin.New()
	router.POST("/recurring/:sessionID/submit", handler.Submit)

	codes := make(chan int, 2)
	for range 2 {
		go func() {
			req := httptest.NewRequest(http.MethodPost, "/recurring/sess-1/submit", strings.NewReader(`{"clientName":"Dana Cruz"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			codes <- w.Code
		}()
	}

	// The winner is parked inside the backend, so the first response to
	// arrive must be the loser's rejection.
	var first int
	select {
	case first = <-codes:
	case <-time.After(5 * time.Second):
		close(be.release)
		t.Fatal("expected one submission to be turned away while the other was in flight")
	}
	assert.Equal(t, http.StatusConflict, first)

	close(be.release)
	assert.Equal(t, http.StatusOK, <-codes)

	be.mu.Lock()
	calls := be.groupCalls
	be.mu.Unlock()
	assert.Equal(t, 1, calls)
	assert.Equal(t, StateCompleted, session.Snapshot().State)
}
