package core

import (
	"context"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a batch task panics during execution.
// The panic is also reported to the waiting caller as a TaskError, so the
// handler is for logging and alerting only.
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called when a task panics.
	//
	// Parameters:
	// - ctx: The context the task was running with
	// - poolName: The ID of the pool where the panic occurred
	// - workerID: The ID of the worker goroutine
	// - panicInfo: The panic value recovered from the task
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(ctx context.Context, poolName string, workerID int, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler logs the panic through a Logger.
type DefaultPanicHandler struct {
	Logger Logger
}

// HandlePanic logs panic information at error level.
func (h *DefaultPanicHandler) HandlePanic(ctx context.Context, poolName string, workerID int, panicInfo any, stackTrace []byte) {
	logger := h.Logger
	if logger == nil {
		logger = NewDefaultLogger()
	}
	logger.Error("task panicked",
		F("pool", poolName),
		F("worker", workerID),
		F("panic", panicInfo),
		F("stack", string(stackTrace)),
	)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Batch outcomes reported to Metrics.RecordBatch.
const (
	BatchOutcomeOK          = "ok"
	BatchOutcomeFailed      = "failed"
	BatchOutcomeInterrupted = "interrupted"
	BatchOutcomeClosed      = "closed"
)

// Metrics defines the interface for collecting pool execution metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast to avoid impacting task execution performance.
type Metrics interface {
	// RecordTaskDuration records how long a single batch task took to execute.
	RecordTaskDuration(poolName string, duration time.Duration)

	// RecordTaskPanic records that a task panicked during execution.
	RecordTaskPanic(poolName string, panicInfo any)

	// RecordQueueDepth records the current number of queued tasks.
	RecordQueueDepth(poolName string, depth int)

	// RecordTaskRejected records that tasks were rejected or discarded
	// (submission after close, queue cleared on close).
	RecordTaskRejected(poolName string, reason string)

	// RecordBatch records a finished batch: its size, wall time from
	// submission to return, and one of the BatchOutcome* values.
	RecordBatch(poolName string, size int, duration time.Duration, outcome string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordTaskDuration is a no-op.
func (m *NilMetrics) RecordTaskDuration(poolName string, duration time.Duration) {}

// RecordTaskPanic is a no-op.
func (m *NilMetrics) RecordTaskPanic(poolName string, panicInfo any) {}

// RecordQueueDepth is a no-op.
func (m *NilMetrics) RecordQueueDepth(poolName string, depth int) {}

// RecordTaskRejected is a no-op.
func (m *NilMetrics) RecordTaskRejected(poolName string, reason string) {}

// RecordBatch is a no-op.
func (m *NilMetrics) RecordBatch(poolName string, size int, duration time.Duration, outcome string) {
}

// =============================================================================
// RejectedTaskHandler: Interface for handling rejected tasks
// =============================================================================

// RejectedTaskHandler is called when work is rejected by a pool.
// This happens when a batch is submitted after Close, or when a pool
// is asked to drain and stops admitting new batches.
//
// Implementations should be thread-safe as they may be called concurrently.
type RejectedTaskHandler interface {
	HandleRejectedTask(poolName string, reason string)
}

// DefaultRejectedTaskHandler drops rejections silently; the caller already
// receives ErrPoolClosed.
type DefaultRejectedTaskHandler struct{}

// HandleRejectedTask does nothing.
func (h *DefaultRejectedTaskHandler) HandleRejectedTask(poolName string, reason string) {}

// LoggingRejectedTaskHandler logs every rejection at warn level.
type LoggingRejectedTaskHandler struct {
	Logger Logger
}

// HandleRejectedTask logs the rejected task.
func (h *LoggingRejectedTaskHandler) HandleRejectedTask(poolName string, reason string) {
	if h.Logger == nil {
		return
	}
	h.Logger.Warn("task rejected", F("pool", poolName), F("reason", reason))
}

// =============================================================================
// WorkerPoolConfig: Configuration for WorkerPool and its scheduler
// =============================================================================

// WorkerPoolConfig holds configuration options for a worker pool.
// All fields are optional; zero values fall back to the defaults.
type WorkerPoolConfig struct {
	// PanicHandler is called when a task panics. Defaults to DefaultPanicHandler.
	PanicHandler PanicHandler

	// Metrics is called to record execution metrics. Defaults to NilMetrics.
	Metrics Metrics

	// RejectedTaskHandler is called when work is rejected. Defaults to DefaultRejectedTaskHandler.
	RejectedTaskHandler RejectedTaskHandler

	// Logger receives lifecycle and failure logs. Defaults to NoOpLogger.
	Logger Logger

	// HistoryCapacity bounds the number of finished batches kept for
	// RecentBatches. Defaults to 100.
	HistoryCapacity int
}

// DefaultWorkerPoolConfig returns a config with default handlers.
func DefaultWorkerPoolConfig() *WorkerPoolConfig {
	return &WorkerPoolConfig{
		PanicHandler:        &DefaultPanicHandler{},
		Metrics:             &NilMetrics{},
		RejectedTaskHandler: &DefaultRejectedTaskHandler{},
		Logger:              NewNoOpLogger(),
		HistoryCapacity:     defaultBatchHistoryCapacity,
	}
}

// WithDefaults returns a copy of c with every nil field replaced by its default.
// A nil config yields DefaultWorkerPoolConfig().
func (c *WorkerPoolConfig) WithDefaults() *WorkerPoolConfig {
	out := DefaultWorkerPoolConfig()
	if c == nil {
		return out
	}
	if c.Logger != nil {
		out.Logger = c.Logger
	}
	if c.PanicHandler != nil {
		out.PanicHandler = c.PanicHandler
	} else if c.Logger != nil {
		out.PanicHandler = &DefaultPanicHandler{Logger: c.Logger}
	}
	if c.Metrics != nil {
		out.Metrics = c.Metrics
	}
	if c.RejectedTaskHandler != nil {
		out.RejectedTaskHandler = c.RejectedTaskHandler
	}
	if c.HistoryCapacity > 0 {
		out.HistoryCapacity = c.HistoryCapacity
	}
	return out
}
