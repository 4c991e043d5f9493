package worker

import (
	"context"
)

// Worker - long-running background job managed by WorkerManager
type Worker interface {
	// Start blocks until the worker stops or ctx is done
	Start(ctx context.Context) error

	// Stop signals the worker to finish; safe to call more than once
	Stop() error

	Name() string
}
