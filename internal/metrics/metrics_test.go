package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/availability/grid", "200", 0.12)

	count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/availability/grid", "200"))
	assert.Equal(t, float64(1), count)
}

func TestRecordHTTPRequestMultiple(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/bookings", "201", 0.1)
	RecordHTTPRequest("POST", "/bookings", "201", 0.2)
	RecordHTTPRequest("POST", "/bookings", "422", 0.05)

	created := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/bookings", "201"))
	rejected := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/bookings", "422"))

	assert.Equal(t, float64(2), created)
	assert.Equal(t, float64(1), rejected)
}

func TestRecordGridBuild(t *testing.T) {
	GridBuildsTotal.Reset()

	RecordGridBuild("ok")
	RecordGridBuild("ok")
	RecordGridBuild("degraded")

	assert.Equal(t, float64(2), testutil.ToFloat64(GridBuildsTotal.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(GridBuildsTotal.WithLabelValues("degraded")))
}

func TestRecordAvailabilityFetchFailure(t *testing.T) {
	testCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "courtgrid_availability_fetch_failures_total_test",
			Help: "Per-resource availability queries that failed and were skipped",
		},
	)

	oldCounter := AvailabilityFetchFailuresTotal
	AvailabilityFetchFailuresTotal = testCounter
	defer func() { AvailabilityFetchFailuresTotal = oldCounter }()

	RecordAvailabilityFetchFailure()
	RecordAvailabilityFetchFailure()

	assert.Equal(t, float64(2), testutil.ToFloat64(testCounter))
}

func TestRecordCacheLookup(t *testing.T) {
	AvailabilityCacheTotal.Reset()

	RecordCacheLookup("hit")
	RecordCacheLookup("miss")
	RecordCacheLookup("miss")

	assert.Equal(t, float64(1), testutil.ToFloat64(AvailabilityCacheTotal.WithLabelValues("hit")))
	assert.Equal(t, float64(2), testutil.ToFloat64(AvailabilityCacheTotal.WithLabelValues("miss")))
}

func TestRecordRecurringOccurrence(t *testing.T) {
	RecurringOccurrencesTotal.Reset()

	RecordRecurringOccurrence("available")
	RecordRecurringOccurrence("conflict_with_alternatives")
	RecordRecurringOccurrence("conflict_unresolved")
	RecordRecurringOccurrence("available")

	assert.Equal(t, float64(2), testutil.ToFloat64(RecurringOccurrencesTotal.WithLabelValues("available")))
	assert.Equal(t, float64(1), testutil.ToFloat64(RecurringOccurrencesTotal.WithLabelValues("conflict_unresolved")))
}

func TestMetricsIntegration(t *testing.T) {
	HTTPRequestsTotal.Reset()
	BookingsSubmittedTotal.Reset()
	StoreReloadsTotal.Reset()
	StatusActionsTotal.Reset()

	RecordHTTPRequest("POST", "/bookings", "201", 0.25)
	RecordBookingSubmitted("success")
	RecordStoreReload("ok")
	RecordStatusAction("confirm", "success")

	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/bookings", "201")))
	assert.Equal(t, float64(1), testutil.ToFloat64(BookingsSubmittedTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(StoreReloadsTotal.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(StatusActionsTotal.WithLabelValues("confirm", "success")))
}
