package core

import "time"

// BatchRecord captures a finished batch.
type BatchRecord struct {
	ID         string
	Pool       string
	Size       int
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Outcome    string
	// FailedIndex is the lowest failing task index, or -1.
	FailedIndex int
}

// PoolStats represents runtime observability state for a worker pool.
type PoolStats struct {
	ID             string
	Workers        int
	Queued         int
	Active         int
	PendingBatches int
	Running        bool
}

// FacadeStats represents runtime observability state for an
// IterativeParallelism instance.
type FacadeStats struct {
	Name           string
	Mode           string // "shared" or "ephemeral"
	Calls          int64
	FailedCalls    int64
	EphemeralPools int64
	Blocks         int64
}
