package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtgrid_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courtgrid_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	GridBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtgrid_grid_builds_total",
			Help: "Total number of slot grid builds",
		},
		[]string{"outcome"},
	)

	AvailabilityFetchFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courtgrid_availability_fetch_failures_total",
			Help: "Per-resource availability queries that failed and were skipped",
		},
	)

	AvailabilityCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtgrid_availability_cache_total",
			Help: "Availability cache lookups",
		},
		[]string{"result"},
	)

	BookingsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtgrid_bookings_submitted_total",
			Help: "Total number of booking create calls issued",
		},
		[]string{"outcome"},
	)

	RecurringOccurrencesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtgrid_recurring_occurrences_total",
			Help: "Recurring occurrences by availability classification",
		},
		[]string{"classification"},
	)

	StoreReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtgrid_store_reloads_total",
			Help: "Authoritative reservation store reloads",
		},
		[]string{"outcome"},
	)

	StatusActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtgrid_status_actions_total",
			Help: "Reservation status actions by action and outcome",
		},
		[]string{"action", "outcome"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordGridBuild(outcome string) {
	GridBuildsTotal.WithLabelValues(outcome).Inc()
}

func RecordAvailabilityFetchFailure() {
	AvailabilityFetchFailuresTotal.Inc()
}

func RecordCacheLookup(result string) {
	AvailabilityCacheTotal.WithLabelValues(result).Inc()
}

func RecordBookingSubmitted(outcome string) {
	BookingsSubmittedTotal.WithLabelValues(outcome).Inc()
}

func RecordRecurringOccurrence(classification string) {
	RecurringOccurrencesTotal.WithLabelValues(classification).Inc()
}

func RecordStoreReload(outcome string) {
	StoreReloadsTotal.WithLabelValues(outcome).Inc()
}

func RecordStatusAction(action, outcome string) {
	StatusActionsTotal.WithLabelValues(action, outcome).Inc()
}
