package core

import (
	"context"
)

// Task is the unit of work queued on a pool (Closure)
type Task func(ctx context.Context)

// BatchFunc is one user computation submitted as part of a batch.
// Its result lands in the slot matching its position in the batch.
type BatchFunc func(ctx context.Context) (any, error)

// =============================================================================
// BatchRunner: Define batch submission interface
// =============================================================================

// BatchRunner executes an ordered group of computations and returns their
// results aligned to input order, regardless of completion order.
type BatchRunner interface {
	RunBatch(ctx context.Context, fns []BatchFunc) ([]any, error)
}

// Mapper is a BatchRunner whose lifecycle is owned by the caller.
type Mapper interface {
	BatchRunner
	Close()
}
