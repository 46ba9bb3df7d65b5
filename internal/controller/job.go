package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ChuLiYu/sns-bulkupload/internal/exitcode"
	"github.com/ChuLiYu/sns-bulkupload/internal/metrics"
	"github.com/ChuLiYu/sns-bulkupload/internal/registration"
	"github.com/ChuLiYu/sns-bulkupload/internal/source"
	"github.com/ChuLiYu/sns-bulkupload/internal/worker"
	"github.com/ChuLiYu/sns-bulkupload/pkg/types"
)

// runJob registers one record and appends exactly one line to exactly one
// sink. A returned error aborts the whole run.
func (c *Controller) runJob(ctx context.Context, task worker.Task) error {
	// Another job already failed fatally
	if ctx.Err() != nil {
		return nil
	}

	rec := task.Record
	c.metrics.ObserveDispatchWait(time.Since(task.SubmittedAt))

	c.metrics.RegistrationStarted()
	start := time.Now()
	outcome, err := c.registrar.Register(ctx, c.cfg.ApplicationARN, rec.Token, rec.UserData)
	c.metrics.ObserveRegistration(time.Since(start))
	c.metrics.RegistrationFinished()

	if err != nil {
		if errors.Is(err, registration.ErrApplicationNotFound) {
			return exitcode.Wrap(exitcode.NotFound, err)
		}
		return fmt.Errorf("line %d: %w", rec.Line, err)
	}

	// The run was aborted while this call was in flight. A failure now is
	// the cancellation, not an answer about the token, so nothing is written.
	if !outcome.OK() && ctx.Err() != nil {
		c.log.Debug("Registration cancelled by abort", "line", rec.Line, "token", rec.Token)
		return nil
	}

	if outcome.OK() {
		c.log.Info("Endpoint created",
			"line", rec.Line,
			"token", rec.Token,
			"endpoint_arn", outcome.EndpointARN)

		if err := c.sinks.Accepted.WriteLine(acceptedLine(rec, outcome)); err != nil {
			return exitcode.Wrap(exitcode.FileAccess, err)
		}
		c.accepted.Add(1)
		c.metrics.RecordAccepted()
		return nil
	}

	c.log.Warn("Endpoint not created",
		"line", rec.Line,
		"token", rec.Token,
		"kind", string(outcome.Kind),
		"reason", outcome.Reason)

	if err := c.sinks.Rejected.WriteLine(rejectedLine(rec, outcome)); err != nil {
		return exitcode.Wrap(exitcode.FileAccess, err)
	}
	c.rejected.Add(1)
	if outcome.Kind == types.OutcomeRejected {
		c.metrics.RecordRejected(metrics.ReasonService)
	} else {
		c.metrics.RecordRejected(metrics.ReasonClient)
	}
	return nil
}

// Output line formats. Every line starts with the input line number in
// angle brackets so the input order can be rebuilt afterwards.

func acceptedLine(rec types.Record, o types.Outcome) string {
	return fmt.Sprintf("<%d> %s,%s,%s", rec.Line, o.EndpointARN, rec.Token, rec.UserData)
}

func rejectedLine(rec types.Record, o types.Outcome) string {
	return fmt.Sprintf("<%d> %s %s,%s", rec.Line, o.Reason, rec.Token, rec.UserData)
}

func malformedLine(entry source.Entry) string {
	return fmt.Sprintf("<%d> %s", entry.Line, entry.Raw())
}
