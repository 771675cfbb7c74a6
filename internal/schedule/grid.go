package schedule

import (
	"context"
	"sort"
	"sync"

	"courtgrid/internal/backend"
	"courtgrid/internal/logger"
	"courtgrid/internal/metrics"
	"courtgrid/internal/resource"

	"golang.org/x/sync/errgroup"
)

// AvailabilityFetcher is the backend collaborator the grid builder fans out
// to, one call per resource.
type AvailabilityFetcher interface {
	GetResourceAvailability(ctx context.Context, resourceID int, date string, durationMinutes int) ([]backend.AvailabilitySlot, error)
}

// TimeSlot is one row of the unified grid: a canonical start time and the
// resources free to take it.
type TimeSlot struct {
	Time        string `json:"time"`
	Available   bool   `json:"available"`
	ResourceIDs []int  `json:"resourceIds"`
}

// Grid is the bookable view for one (date, duration) pair. Ephemeral,
// rebuilt on every request, never persisted.
type Grid struct {
	Date     string     `json:"date"`
	Duration int        `json:"duration"`
	Degraded bool       `json:"degraded"`
	Slots    []TimeSlot `json:"slots"`
}

const maxConcurrentFetches = 8

// Builder merges per-resource availability into the canonical half-hour
// grid. A nil cache disables caching.
type Builder struct {
	fetcher AvailabilityFetcher
	cache   *Cache
	policy  *Policy
}

func NewBuilder(fetcher AvailabilityFetcher, cache *Cache, policy *Policy) *Builder {
	return &Builder{fetcher: fetcher, cache: cache, policy: policy}
}

// BuildGrid queries every resource concurrently and merges the answers. A
// failing query excludes only that resource; when every query fails the grid
// degrades to a synthetic all-available view (still gated by the bookability
// policy) and Degraded is set so callers can warn.
func (b *Builder) BuildGrid(ctx context.Context, resources []resource.Resource, date string, durationMinutes int) *Grid {
	keys := timeKeys(durationMinutes)
	keySet := make(map[string]bool, len(keys))
	for _, k := range keys {
		keySet[k] = true
	}

	var (
		mu       sync.Mutex
		byKey    = make(map[string][]int, len(keys))
		failures int
	)

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for _, r := range resources {
		g.Go(func() error {
			slots, err := b.fetchAvailability(ctx, r.ID, date, durationMinutes)
			if err != nil {
				logger.Warn("availability fetch failed, skipping resource",
					"resource_id", r.ID, "date", date, "error", err)
				metrics.RecordAvailabilityFetchFailure()
				mu.Lock()
				failures++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			for _, s := range slots {
				if s.Available && keySet[s.StartTime] {
					byKey[s.StartTime] = append(byKey[s.StartTime], r.ID)
				}
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	degraded := len(resources) > 0 && failures == len(resources)
	if degraded {
		// Degraded-but-usable fallback: every structurally eligible start
		// lists every resource. The keys are already duration-fitting, so
		// only the bookability filter below still applies.
		all := make([]int, 0, len(resources))
		for _, r := range resources {
			all = append(all, r.ID)
		}
		for _, k := range keys {
			byKey[k] = all
		}
		metrics.RecordGridBuild("degraded")
	} else {
		metrics.RecordGridBuild("ok")
	}

	slots := make([]TimeSlot, 0, len(keys))
	for _, k := range keys {
		ids := byKey[k]
		sort.Ints(ids)
		if ids == nil {
			ids = []int{}
		}
		slots = append(slots, TimeSlot{
			Time:        k,
			Available:   len(ids) > 0 && b.policy.Bookable(date, k),
			ResourceIDs: ids,
		})
	}

	return &Grid{Date: date, Duration: durationMinutes, Degraded: degraded, Slots: slots}
}

func (b *Builder) fetchAvailability(ctx context.Context, resourceID int, date string, durationMinutes int) ([]backend.AvailabilitySlot, error) {
	if b.cache != nil {
		if slots, ok := b.cache.Get(ctx, resourceID, date, durationMinutes); ok {
			metrics.RecordCacheLookup("hit")
			return slots, nil
		}
		metrics.RecordCacheLookup("miss")
	}

	slots, err := b.fetcher.GetResourceAvailability(ctx, resourceID, date, durationMinutes)
	if err != nil {
		return nil, err
	}

	if b.cache != nil {
		b.cache.Set(ctx, resourceID, date, durationMinutes, slots)
	}
	return slots, nil
}
