package worker

import (
	"context"
	"time"

	"github.com/ChuLiYu/sns-bulkupload/pkg/types"
)

// Task is one record handed to a worker
type Task struct {
	Record      types.Record // record to register
	SubmittedAt time.Time    // when the dispatcher handed it over
}

// Handler executes one task. A non-nil error is fatal for the whole pool:
// it cancels the pool context and stops every other worker. Per-record
// failures must be handled inside the Handler and reported as nil.
type Handler func(ctx context.Context, task Task) error
