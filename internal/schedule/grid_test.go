package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"courtgrid/internal/backend"
	"courtgrid/internal/resource"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFetcher struct{ mock.Mock }

func (m *MockFetcher) GetResourceAvailability(ctx context.Context, resourceID int, date string, durationMinutes int) ([]backend.AvailabilitySlot, error) {
	args := m.Called(ctx, resourceID, date, durationMinutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backend.AvailabilitySlot), args.Error(1)
}

func testPolicy() *Policy {
	// A morning well before the test date so all slots pass the window.
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local)
	return &Policy{MinAdvance: time.Hour, Now: func() time.Time { return now }}
}

func slotFor(grid *Grid, key string) *TimeSlot {
	for i := range grid.Slots {
		if grid.Slots[i].Time == key {
			return &grid.Slots[i]
		}
	}
	return nil
}

func TestBuildGridMergesPerResourceAvailability(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("GetResourceAvailability", mock.Anything, 1, "2024-06-10", 60).Return([]backend.AvailabilitySlot{
		{StartTime: "14:00", Available: true},
		{StartTime: "15:00", Available: false},
	}, nil)
	fetcher.On("GetResourceAvailability", mock.Anything, 2, "2024-06-10", 60).Return([]backend.AvailabilitySlot{
		{StartTime: "15:00", Available: true},
	}, nil)

	builder := NewBuilder(fetcher, nil, testPolicy())
	grid := builder.BuildGrid(context.Background(), []resource.Resource{{ID: 1}, {ID: 2}}, "2024-06-10", 60)

	require.False(t, grid.Degraded)

	s := slotFor(grid, "14:00")
	require.NotNil(t, s)
	assert.True(t, s.Available)
	assert.Equal(t, []int{1}, s.ResourceIDs)

	s = slotFor(grid, "15:00")
	require.NotNil(t, s)
	assert.True(t, s.Available)
	assert.Equal(t, []int{2}, s.ResourceIDs, "resource 1 reported 15:00 unavailable")

	s = slotFor(grid, "16:00")
	require.NotNil(t, s)
	assert.False(t, s.Available)
	assert.Empty(t, s.ResourceIDs)
}

func TestBuildGridOneFailingResourceDoesNotAffectOthers(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("GetResourceAvailability", mock.Anything, 1, "2024-06-10", 60).Return([]backend.AvailabilitySlot{
		{StartTime: "09:00", Available: true},
	}, nil)
	fetcher.On("GetResourceAvailability", mock.Anything, 2, "2024-06-10", 60).Return(nil, errors.New("connection refused"))

	builder := NewBuilder(fetcher, nil, testPolicy())
	grid := builder.BuildGrid(context.Background(), []resource.Resource{{ID: 1}, {ID: 2}}, "2024-06-10", 60)

	require.False(t, grid.Degraded)

	s := slotFor(grid, "09:00")
	require.NotNil(t, s)
	assert.True(t, s.Available)
	assert.Equal(t, []int{1}, s.ResourceIDs)
}

func TestBuildGridAllResourcesFailingDegrades(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("GetResourceAvailability", mock.Anything, mock.Anything, "2024-06-10", 90).Return(nil, errors.New("backend down"))

	builder := NewBuilder(fetcher, nil, testPolicy())
	grid := builder.BuildGrid(context.Background(), []resource.Resource{{ID: 1}, {ID: 2}}, "2024-06-10", 90)

	require.True(t, grid.Degraded)
	for _, s := range grid.Slots {
		assert.ElementsMatch(t, []int{1, 2}, s.ResourceIDs, "slot %s lists every resource in the fallback grid", s.Time)
		assert.True(t, s.Available)
	}
}

func TestBuildGridDegradedStillAppliesBookabilityFilter(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("GetResourceAvailability", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("backend down"))

	// Same-day build at 12:00 with a one hour advance window: everything up
	// to 13:00 must stay unavailable even in the fallback grid.
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)
	policy := &Policy{MinAdvance: time.Hour, Now: func() time.Time { return now }}

	builder := NewBuilder(fetcher, nil, policy)
	grid := builder.BuildGrid(context.Background(), []resource.Resource{{ID: 1}}, "2024-06-10", 60)

	require.True(t, grid.Degraded)
	for _, s := range grid.Slots {
		if s.Time <= "13:00" {
			assert.False(t, s.Available, "slot %s is inside the advance window", s.Time)
		} else {
			assert.True(t, s.Available, "slot %s is past the advance window", s.Time)
		}
	}
}

func TestBuildGridSlotBoundsAndOrdering(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("GetResourceAvailability", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]backend.AvailabilitySlot{}, nil)

	builder := NewBuilder(fetcher, nil, testPolicy())
	grid := builder.BuildGrid(context.Background(), []resource.Resource{{ID: 1}}, "2024-06-10", 30)

	require.NotEmpty(t, grid.Slots)
	seen := make(map[string]bool)
	for i, s := range grid.Slots {
		assert.GreaterOrEqual(t, s.Time, "08:00")
		assert.LessOrEqual(t, s.Time, "23:00")
		assert.False(t, seen[s.Time])
		seen[s.Time] = true
		if i > 0 {
			assert.Less(t, grid.Slots[i-1].Time, s.Time)
		}
	}
}

func TestBuildGridIgnoresOffGridStartTimes(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("GetResourceAvailability", mock.Anything, 1, "2024-06-10", 60).Return([]backend.AvailabilitySlot{
		{StartTime: "07:30", Available: true},
		{StartTime: "14:15", Available: true},
		{StartTime: "23:30", Available: true},
	}, nil)

	builder := NewBuilder(fetcher, nil, testPolicy())
	grid := builder.BuildGrid(context.Background(), []resource.Resource{{ID: 1}}, "2024-06-10", 60)

	for _, s := range grid.Slots {
		assert.Empty(t, s.ResourceIDs, "off-grid start %s must not contribute", s.Time)
	}
}

// End-to-end merge scenario: two courts, 90 minute duration.
func TestBuildGridTwoCourtsScenario(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("GetResourceAvailability", mock.Anything, 1, "2024-06-10", 90).Return([]backend.AvailabilitySlot{
		{StartTime: "09:00", Available: true},
	}, nil)
	fetcher.On("GetResourceAvailability", mock.Anything, 2, "2024-06-10", 90).Return([]backend.AvailabilitySlot{
		{StartTime: "09:00", Available: true},
		{StartTime: "10:30", Available: true},
	}, nil)

	courtA := resource.Resource{ID: 1, Name: "Court A", PricePerHourCents: 200000}
	courtB := resource.Resource{ID: 2, Name: "Court B", PricePerHourCents: 250000}

	builder := NewBuilder(fetcher, nil, testPolicy())
	grid := builder.BuildGrid(context.Background(), []resource.Resource{courtA, courtB}, "2024-06-10", 90)

	s := slotFor(grid, "09:00")
	require.NotNil(t, s)
	assert.True(t, s.Available)
	assert.Equal(t, []int{1, 2}, s.ResourceIDs)

	s = slotFor(grid, "10:30")
	require.NotNil(t, s)
	assert.True(t, s.Available)
	assert.Equal(t, []int{2}, s.ResourceIDs)

	for _, slot := range grid.Slots {
		if slot.Time == "09:00" || slot.Time == "10:30" {
			continue
		}
		assert.False(t, slot.Available, "slot %s", slot.Time)
		assert.Empty(t, slot.ResourceIDs, "slot %s", slot.Time)
	}
}
