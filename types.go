package parallel

import "github.com/Swind/go-parallel/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the parallel package for most use cases.

// BatchFunc is one computation in a batch
type BatchFunc = core.BatchFunc

// BatchRunner is the interface for submitting batches
type BatchRunner = core.BatchRunner

// Mapper is a BatchRunner with a caller-owned lifecycle
type Mapper = core.Mapper

// Block is a contiguous range of the input assigned to one task
type Block = core.Block

// TaskError reports which task in a batch failed and why
type TaskError = core.TaskError

// PanicError wraps a value recovered from a panicking task
type PanicError = core.PanicError

// WorkerPoolConfig configures handlers, metrics and logging for a pool
type WorkerPoolConfig = core.WorkerPoolConfig

// Sentinel errors
var (
	ErrInvalidConfiguration = core.ErrInvalidConfiguration
	ErrInterrupted          = core.ErrInterrupted
	ErrPoolClosed           = core.ErrPoolClosed
	ErrNoSuchElement        = core.ErrNoSuchElement
)

// DefaultWorkerPoolConfig returns a config with default handlers
var DefaultWorkerPoolConfig = core.DefaultWorkerPoolConfig

// Ensure WorkerPool satisfies the batch interfaces
var _ core.Mapper = (*WorkerPool)(nil)
