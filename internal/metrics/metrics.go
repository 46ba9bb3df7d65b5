// ============================================================================
// Metrics - Prometheus instrumentation for a bulk upload run
// ============================================================================
//
// Package: internal/metrics
// File: metrics.go
// Function: Count records as they move through the run and expose them on
//           /metrics while the upload is in progress.
//
// Metrics:
//
//   1. Counters:
//      - bulkupload_records_read_total: records taken from the input file
//      - bulkupload_endpoints_created_total: records written to the good file
//      - bulkupload_records_rejected_total{reason}: records written to the
//        bad file, by reason (malformed, service, client)
//
//   2. Histograms:
//      - bulkupload_registration_duration_seconds: one CreatePlatformEndpoint
//        round trip, including the client-side timeout
//      - bulkupload_dispatch_wait_seconds: time a record waited for a free
//        worker after the dispatcher handed it over
//
//   3. Gauge:
//      - bulkupload_registrations_in_flight: registrations currently running
//
// Example queries:
//
//   # endpoints created per second
//   rate(bulkupload_endpoints_created_total[1m])
//
//   # 95th percentile registration latency
//   histogram_quantile(0.95, bulkupload_registration_duration_seconds_bucket)
//
// ============================================================================

package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rejection reasons used as the "reason" label
const (
	ReasonMalformed = "malformed"
	ReasonService   = "service"
	ReasonClient    = "client"
)

// Collector holds the run's Prometheus metrics
type Collector struct {
	recordsRead      prometheus.Counter
	endpointsCreated prometheus.Counter
	recordsRejected  *prometheus.CounterVec

	registrationLatency prometheus.Histogram
	dispatchWait        prometheus.Histogram
	inFlight            prometheus.Gauge
}

// NewCollector registers the metrics with reg. A nil reg leaves them
// unregistered, which is what most tests want.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	c := &Collector{
		recordsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "bulkupload_records_read_total",
			Help: "Total number of records read from the input file",
		}),
		endpointsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "bulkupload_endpoints_created_total",
			Help: "Total number of platform endpoints created",
		}),
		recordsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bulkupload_records_rejected_total",
			Help: "Total number of records written to the rejected file",
		}, []string{"reason"}),
		registrationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bulkupload_registration_duration_seconds",
			Help:    "Latency of endpoint registration calls in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		dispatchWait: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bulkupload_dispatch_wait_seconds",
			Help:    "Time records waited for a free worker in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bulkupload_registrations_in_flight",
			Help: "Current number of registrations in progress",
		}),
	}

	// Pre-create label values so every series shows up at zero
	for _, reason := range []string{ReasonMalformed, ReasonService, ReasonClient} {
		c.recordsRejected.WithLabelValues(reason)
	}

	return c
}

// RecordRead counts one record taken from the input
func (c *Collector) RecordRead() {
	c.recordsRead.Inc()
}

// RecordAccepted counts one created endpoint
func (c *Collector) RecordAccepted() {
	c.endpointsCreated.Inc()
}

// RecordRejected counts one record written to the rejected file
func (c *Collector) RecordRejected(reason string) {
	c.recordsRejected.WithLabelValues(reason).Inc()
}

// ObserveRegistration records the latency of one registration call
func (c *Collector) ObserveRegistration(d time.Duration) {
	c.registrationLatency.Observe(d.Seconds())
}

// ObserveDispatchWait records how long a record waited for a worker
func (c *Collector) ObserveDispatchWait(d time.Duration) {
	c.dispatchWait.Observe(d.Seconds())
}

// RegistrationStarted increments the in-flight gauge
func (c *Collector) RegistrationStarted() {
	c.inFlight.Inc()
}

// RegistrationFinished decrements the in-flight gauge
func (c *Collector) RegistrationFinished() {
	c.inFlight.Dec()
}

// Handler returns the /metrics handler for gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Server exposes /metrics over HTTP for the lifetime of a run
type Server struct {
	srv *http.Server
}

// StartServer listens on addr in the background.
// Listen errors after startup are logged rather than returned.
func StartServer(addr string, gatherer prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))

	s := &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()

	slog.Info("metrics server listening", "addr", addr)
	return s
}

// Shutdown stops the server, waiting for open scrapes up to ctx's deadline
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
