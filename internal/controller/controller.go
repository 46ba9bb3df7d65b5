// ============================================================================
// Bulk Upload Controller - run coordinator
// ============================================================================
//
// Package: internal/controller
// File: controller.go
// Function: Drive one bulk registration run from input file to output files
//
// Components:
//   - Source: numbered entries from the delimited input file
//   - Pool: N workers running registration jobs (internal/worker)
//   - Registrar: the SNS adapter (internal/registration)
//   - Sinks: accepted and rejected output files, one lock each
//
// Run sequence:
//   1. Validate config        - unsupported region etc. fails here, no I/O yet
//   2. Open sinks             - append mode, exit code 3 on failure
//   3. VerifyApplication      - once for the whole run, exit code 4
//   4. Open source            - exit code 3 on failure
//   5. Feed loop              - invalid entries go straight to the rejected
//                               sink, valid ones are submitted to the pool
//   6. Stop                   - drain every submitted job
//   7. Close sinks, return Summary
//
// Abort:
//   A job that hits a fatal error (application gone, sink write failure)
//   aborts the pool; the feed loop sees ErrPoolAborted and stops reading.
//   An interrupt on the Run context only stops the feed loop. Jobs already
//   handed to a worker keep a context that is not cancelled by it.
//
// ============================================================================

package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ChuLiYu/sns-bulkupload/internal/config"
	"github.com/ChuLiYu/sns-bulkupload/internal/exitcode"
	"github.com/ChuLiYu/sns-bulkupload/internal/metrics"
	"github.com/ChuLiYu/sns-bulkupload/internal/sink"
	"github.com/ChuLiYu/sns-bulkupload/internal/source"
	"github.com/ChuLiYu/sns-bulkupload/internal/worker"
	"github.com/ChuLiYu/sns-bulkupload/pkg/types"
)

// ErrInterrupted is returned by Run when its context ends before the input
// is exhausted. Jobs already dispatched have completed by then.
var ErrInterrupted = errors.New("run interrupted")

// Registrar registers device tokens for one platform application.
type Registrar interface {
	VerifyApplication(ctx context.Context, app types.ApplicationARN) error
	Register(ctx context.Context, app types.ApplicationARN, token, userData string) (types.Outcome, error)
}

// Summary counts what a run did with its input.
type Summary struct {
	Read      int           // entries taken from the input
	Accepted  int           // endpoints created
	Rejected  int           // service rejections and client errors
	Malformed int           // invalid input lines, never dispatched
	Elapsed   time.Duration // wall time of Run
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for lifecycle and per-record messages.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Controller) { c.metrics = m }
}

// Controller runs one bulk registration.
type Controller struct {
	cfg       *config.Config
	registrar Registrar
	metrics   *metrics.Collector
	log       *slog.Logger

	sinks *sink.Pair

	accepted atomic.Int64
	rejected atomic.Int64
}

// New creates a controller for cfg. Run does the validation.
func New(cfg *config.Config, registrar Registrar, opts ...Option) *Controller {
	c := &Controller{
		cfg:       cfg,
		registrar: registrar,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = metrics.NewCollector(nil)
	}
	return c
}

// Run processes the whole input file. The returned error carries an exit
// code (see internal/exitcode); the Summary is valid even when it is non-nil.
func (c *Controller) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	var summary Summary
	finish := func(err error) (Summary, error) {
		summary.Accepted = int(c.accepted.Load())
		summary.Rejected = int(c.rejected.Load())
		summary.Elapsed = time.Since(start)
		return summary, err
	}

	// 1. Config problems abort before any file is touched
	if err := c.cfg.Validate(); err != nil {
		return finish(exitcode.Wrap(exitcode.MalformedConfig,
			fmt.Errorf("%w:\n  - %v", config.ErrMalformed, err)))
	}

	// 2. Sinks
	sinks, err := sink.OpenPair(c.cfg.AcceptedFile, c.cfg.RejectedFile, c.cfg.SyncWrites)
	if err != nil {
		return finish(exitcode.Wrap(exitcode.FileAccess, err))
	}
	c.sinks = sinks

	runErr := c.dispatch(ctx, &summary)

	if err := sinks.Close(); err != nil && runErr == nil {
		runErr = exitcode.Wrapf(exitcode.FileAccess, "failed to close output: %w", err)
	}

	c.log.Info("Run finished",
		"read", summary.Read,
		"accepted", c.accepted.Load(),
		"rejected", c.rejected.Load(),
		"malformed", summary.Malformed,
		"accepted_file", sinks.Accepted.Path(),
		"rejected_file", sinks.Rejected.Path(),
		"duration", time.Since(start))

	return finish(runErr)
}

// dispatch covers steps 3 to 6 of the run sequence.
func (c *Controller) dispatch(ctx context.Context, summary *Summary) error {
	app := c.cfg.ApplicationARN

	// 3. Application check, hoisted out of the jobs
	if err := c.registrar.VerifyApplication(ctx, app); err != nil {
		if errors.Is(err, context.Canceled) {
			return exitcode.Wrapf(exitcode.Interrupted, "%w: %v", ErrInterrupted, err)
		}
		return exitcode.Wrap(exitcode.NotFound, err)
	}
	c.log.Info("Platform application verified", "application_arn", app.String(), "region", c.cfg.Region())

	// 4. Source
	src, err := source.Open(c.cfg.InputFile, c.cfg.Delimiter, c.cfg.Quote)
	if err != nil {
		return exitcode.Wrap(exitcode.FileAccess, err)
	}
	defer src.Close()

	// 5. Pool, detached from interrupts so in-flight jobs run to completion
	pool := worker.NewPool(c.runJob)
	if err := pool.Start(context.WithoutCancel(ctx), c.cfg.Workers); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}
	c.log.Info("Dispatching records", "input", c.cfg.InputFile, "workers", pool.GetWorkerCount())

	feedErr := c.feed(ctx, src, pool, summary)

	// 6. Drain
	stopErr := pool.Stop()
	c.log.Debug("Worker pool drained",
		"submitted", pool.Submitted(),
		"peak_in_flight", pool.PeakInFlight())

	switch {
	case stopErr != nil:
		return stopErr
	case feedErr != nil:
		return feedErr
	}
	return nil
}

// feed reads every entry and routes it. It stops early on interrupt, on a
// read or sink failure, or when the pool aborts.
func (c *Controller) feed(ctx context.Context, src *source.Source, pool *worker.Pool, summary *Summary) error {
	for {
		if err := ctx.Err(); err != nil {
			c.log.Warn("Interrupted, waiting for in-flight registrations", "read", summary.Read)
			return exitcode.Wrapf(exitcode.Interrupted, "%w after %d records", ErrInterrupted, summary.Read)
		}

		entry, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return exitcode.Wrap(exitcode.FileAccess, err)
		}

		summary.Read++
		c.metrics.RecordRead()

		if !entry.Valid() {
			summary.Malformed++
			if err := c.writeMalformed(entry); err != nil {
				return err
			}
			continue
		}

		err = pool.Submit(worker.Task{Record: entry.Record, SubmittedAt: time.Now()})
		if errors.Is(err, worker.ErrPoolAborted) {
			// Stop returns the cause
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to submit line %d: %w", entry.Line, err)
		}
	}
}

// writeMalformed records an invalid input line without dispatching it.
func (c *Controller) writeMalformed(entry source.Entry) error {
	c.log.Warn("Malformed input line",
		"line", entry.Line,
		"input", c.cfg.InputFile,
		"error", entry.Err)

	c.metrics.RecordRejected(metrics.ReasonMalformed)
	if err := c.sinks.Rejected.WriteLine(malformedLine(entry)); err != nil {
		return exitcode.Wrap(exitcode.FileAccess, err)
	}
	return nil
}
