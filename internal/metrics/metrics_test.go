package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)

	assert.NotNil(t, collector, "NewCollector should return a non-nil collector")
	assert.NotNil(t, collector.recordsRead)
	assert.NotNil(t, collector.endpointsCreated)
	assert.NotNil(t, collector.recordsRejected)
	assert.NotNil(t, collector.registrationLatency)
	assert.NotNil(t, collector.dispatchWait)
	assert.NotNil(t, collector.inFlight)

	// 2 counters + 3 reason series + 2 histograms + gauge
	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 8, count)
}

func TestNewCollector_NilRegisterer(t *testing.T) {
	assert.NotPanics(t, func() {
		c := NewCollector(nil)
		c.RecordRead()
	})
}

func TestNewCollector_TwiceOnSameRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) }, "duplicate registration should panic")
}

func TestRecordRead(t *testing.T) {
	collector := NewCollector(nil)

	for i := 0; i < 5; i++ {
		collector.RecordRead()
	}
	assert.Equal(t, 5.0, testutil.ToFloat64(collector.recordsRead))
}

func TestRecordAccepted(t *testing.T) {
	collector := NewCollector(nil)

	collector.RecordAccepted()
	collector.RecordAccepted()
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.endpointsCreated))
}

func TestRecordRejected(t *testing.T) {
	collector := NewCollector(nil)

	collector.RecordRejected(ReasonMalformed)
	collector.RecordRejected(ReasonService)
	collector.RecordRejected(ReasonService)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.recordsRejected.WithLabelValues(ReasonMalformed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.recordsRejected.WithLabelValues(ReasonService)))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.recordsRejected.WithLabelValues(ReasonClient)))
}

func TestInFlightGauge(t *testing.T) {
	collector := NewCollector(nil)

	collector.RegistrationStarted()
	collector.RegistrationStarted()
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.inFlight))

	collector.RegistrationFinished()
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.inFlight))
}

func TestObserveRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)

	latencies := []time.Duration{250 * time.Millisecond, 500 * time.Millisecond, time.Second}
	for _, d := range latencies {
		collector.ObserveRegistration(d)
	}

	expected := `
# HELP bulkupload_registration_duration_seconds Latency of endpoint registration calls in seconds
# TYPE bulkupload_registration_duration_seconds histogram
bulkupload_registration_duration_seconds_bucket{le="0.005"} 0
bulkupload_registration_duration_seconds_bucket{le="0.01"} 0
bulkupload_registration_duration_seconds_bucket{le="0.025"} 0
bulkupload_registration_duration_seconds_bucket{le="0.05"} 0
bulkupload_registration_duration_seconds_bucket{le="0.1"} 0
bulkupload_registration_duration_seconds_bucket{le="0.25"} 1
bulkupload_registration_duration_seconds_bucket{le="0.5"} 2
bulkupload_registration_duration_seconds_bucket{le="1"} 3
bulkupload_registration_duration_seconds_bucket{le="2.5"} 3
bulkupload_registration_duration_seconds_bucket{le="5"} 3
bulkupload_registration_duration_seconds_bucket{le="10"} 3
bulkupload_registration_duration_seconds_bucket{le="+Inf"} 3
bulkupload_registration_duration_seconds_sum 1.75
bulkupload_registration_duration_seconds_count 3
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "bulkupload_registration_duration_seconds")
	assert.NoError(t, err)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)
	collector.RecordRead()
	collector.RecordAccepted()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "bulkupload_records_read_total 1")
	assert.Contains(t, body, "bulkupload_endpoints_created_total 1")
	assert.Contains(t, body, `bulkupload_records_rejected_total{reason="malformed"} 0`)
}

func TestObserveDispatchWait(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)

	collector.ObserveDispatchWait(250 * time.Millisecond)
	collector.ObserveDispatchWait(2 * time.Second)

	assert.Equal(t, 1, testutil.CollectAndCount(collector.dispatchWait))

	expected := `
# HELP bulkupload_dispatch_wait_seconds Time records waited for a free worker in seconds
# TYPE bulkupload_dispatch_wait_seconds histogram
bulkupload_dispatch_wait_seconds_bucket{le="0.005"} 0
bulkupload_dispatch_wait_seconds_bucket{le="0.01"} 0
bulkupload_dispatch_wait_seconds_bucket{le="0.025"} 0
bulkupload_dispatch_wait_seconds_bucket{le="0.05"} 0
bulkupload_dispatch_wait_seconds_bucket{le="0.1"} 0
bulkupload_dispatch_wait_seconds_bucket{le="0.25"} 1
bulkupload_dispatch_wait_seconds_bucket{le="0.5"} 1
bulkupload_dispatch_wait_seconds_bucket{le="1"} 1
bulkupload_dispatch_wait_seconds_bucket{le="2.5"} 2
bulkupload_dispatch_wait_seconds_bucket{le="5"} 2
bulkupload_dispatch_wait_seconds_bucket{le="10"} 2
bulkupload_dispatch_wait_seconds_bucket{le="+Inf"} 2
bulkupload_dispatch_wait_seconds_sum 2.25
bulkupload_dispatch_wait_seconds_count 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "bulkupload_dispatch_wait_seconds"))
}
