package parallel

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/Swind/go-parallel/core"
)

type workerIDKey struct{}

// WorkerPool manages a fixed set of worker goroutines sharing one FIFO
// task queue. Batches submitted with RunBatch block until every task has
// completed and return results aligned to input order.
type WorkerPool struct {
	id        string
	workers   int
	scheduler *core.TaskScheduler
	wg        sync.WaitGroup
	cancel    context.CancelFunc

	stateMu  sync.Mutex
	closed   bool
	draining bool
	batches  map[*core.Batch]struct{}

	logger       core.Logger
	metrics      core.Metrics
	panicHandler core.PanicHandler
	rejected     core.RejectedTaskHandler
	history      *core.BatchHistory
}

// NewWorkerPool creates a WorkerPool and starts its workers immediately.
// Returns core.ErrInvalidConfiguration if workers < 1.
func NewWorkerPool(id string, workers int) (*WorkerPool, error) {
	return NewWorkerPoolWithConfig(id, workers, core.DefaultWorkerPoolConfig())
}

// NewWorkerPoolWithConfig creates a WorkerPool with custom handlers.
func NewWorkerPoolWithConfig(id string, workers int, config *core.WorkerPoolConfig) (*WorkerPool, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: got %d workers", core.ErrInvalidConfiguration, workers)
	}
	if id == "" {
		id = fmt.Sprintf("pool-%d", workers)
	}
	cfg := config.WithDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{
		id:           id,
		workers:      workers,
		scheduler:    core.NewFIFOTaskSchedulerWithConfig(id, workers, cfg),
		cancel:       cancel,
		batches:      make(map[*core.Batch]struct{}),
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		panicHandler: cfg.PanicHandler,
		rejected:     cfg.RejectedTaskHandler,
		history:      core.NewBatchHistory(cfg.HistoryCapacity),
	}

	for i := range workers {
		p.wg.Add(1)
		go p.workerLoop(i, ctx)
	}
	p.logger.Debug("worker pool started", core.F("pool", id), core.F("workers", workers))
	return p, nil
}

// ID returns the ID of the pool
func (p *WorkerPool) ID() string {
	return p.id
}

// IsRunning returns whether the pool still accepts batches
func (p *WorkerPool) IsRunning() bool {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return !p.closed && !p.draining
}

// workerLoop is the main loop for each worker
func (p *WorkerPool) workerLoop(id int, ctx context.Context) {
	defer p.wg.Done()
	stopCh := ctx.Done()
	workerCtx := context.WithValue(ctx, workerIDKey{}, id)

	for {
		task, ok := p.scheduler.GetWork(stopCh)
		if !ok {
			// Scheduler shut down or context canceled
			return
		}

		p.scheduler.OnTaskStart()
		func() {
			defer func() {
				p.scheduler.OnTaskEnd()
				if r := recover(); r != nil {
					p.panicHandler.HandlePanic(workerCtx, p.id, id, r, debug.Stack())
				}
			}()
			task(workerCtx)
		}()
	}
}

func workerID(ctx context.Context) int {
	if id, ok := ctx.Value(workerIDKey{}).(int); ok {
		return id
	}
	return -1
}

// RunBatch enqueues one task per function, blocks until all of them have
// completed and returns their results in input order.
//
// It fails with core.ErrInterrupted if ctx is cancelled first, with
// core.ErrPoolClosed if the pool is (or becomes) closed, and with a
// *core.TaskError for the lowest-indexed function that returned an error
// or panicked. Functions receive ctx.
func (p *WorkerPool) RunBatch(ctx context.Context, fns []core.BatchFunc) ([]any, error) {
	batch := core.NewBatch(len(fns))
	if err := p.register(batch); err != nil {
		p.rejected.HandleRejectedTask(p.id, err.Error())
		p.metrics.RecordTaskRejected(p.id, "closed")
		return nil, err
	}
	defer p.unregister(batch)

	for i, fn := range fns {
		ok := p.scheduler.Post(func(workerCtx context.Context) {
			p.runTask(workerCtx, ctx, batch, i, fn)
		})
		if !ok {
			batch.Abort(core.ErrPoolClosed)
			break
		}
	}

	values, err := batch.Wait(ctx)
	p.recordBatch(batch)
	return values, err
}

func (p *WorkerPool) runTask(workerCtx, callerCtx context.Context, batch *core.Batch, index int, fn core.BatchFunc) {
	start := time.Now()
	batch.RunTask(callerCtx, index, fn, func(pe *core.PanicError) {
		if pe != nil {
			p.panicHandler.HandlePanic(callerCtx, p.id, workerID(workerCtx), pe.Value, pe.Stack)
			p.metrics.RecordTaskPanic(p.id, pe.Value)
		}
		p.metrics.RecordTaskDuration(p.id, time.Since(start))
	})
}

func (p *WorkerPool) register(batch *core.Batch) error {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	if p.closed {
		return core.ErrPoolClosed
	}
	if p.draining {
		return fmt.Errorf("%w: draining", core.ErrPoolClosed)
	}
	p.batches[batch] = struct{}{}
	return nil
}

func (p *WorkerPool) unregister(batch *core.Batch) {
	p.stateMu.Lock()
	delete(p.batches, batch)
	p.stateMu.Unlock()
}

func (p *WorkerPool) recordBatch(batch *core.Batch) {
	finishedAt := time.Now()
	outcome := batch.Outcome()
	record := core.BatchRecord{
		ID:          batch.ID(),
		Pool:        p.id,
		Size:        batch.Size(),
		StartedAt:   batch.CreatedAt(),
		FinishedAt:  finishedAt,
		Duration:    finishedAt.Sub(batch.CreatedAt()),
		Outcome:     outcome,
		FailedIndex: batch.FailedIndex(),
	}
	p.history.Add(record)
	p.metrics.RecordBatch(p.id, record.Size, record.Duration, outcome)

	if outcome != core.BatchOutcomeOK {
		p.logger.Warn("batch did not complete",
			core.F("pool", p.id),
			core.F("batch", record.ID),
			core.F("size", record.Size),
			core.F("outcome", outcome),
			core.F("failed_index", record.FailedIndex),
		)
	}
}

// Close signals every worker to exit and returns without waiting for them.
// Queued tasks are discarded and every outstanding batch is aborted with
// core.ErrPoolClosed. A task already executing runs to completion but its
// result is dropped. Close is idempotent.
func (p *WorkerPool) Close() {
	p.stateMu.Lock()
	if p.closed {
		p.stateMu.Unlock()
		return
	}
	p.closed = true
	pending := make([]*core.Batch, 0, len(p.batches))
	for b := range p.batches {
		pending = append(pending, b)
	}
	p.stateMu.Unlock()

	dropped := p.scheduler.Shutdown()
	p.cancel()

	for _, b := range pending {
		b.Abort(core.ErrPoolClosed)
	}

	p.logger.Debug("worker pool closed",
		core.F("pool", p.id),
		core.F("discarded_tasks", dropped),
		core.F("aborted_batches", len(pending)),
	)
}

// CloseGraceful stops admitting batches, waits for outstanding batches to
// finish, then closes the pool and waits for the workers to exit.
// If ctx ends first the pool is closed anyway and ctx's error is returned.
func (p *WorkerPool) CloseGraceful(ctx context.Context) error {
	p.stateMu.Lock()
	if p.closed {
		p.stateMu.Unlock()
		return nil
	}
	p.draining = true
	p.stateMu.Unlock()

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for p.PendingBatchCount() > 0 {
		select {
		case <-ctx.Done():
			p.Close()
			p.Join()
			return fmt.Errorf("close graceful: %w", ctx.Err())
		case <-ticker.C:
		}
	}

	p.Close()
	p.Join()
	return nil
}

// Join waits for all worker goroutines to finish
func (p *WorkerPool) Join() {
	p.wg.Wait()
}

// WorkerCount returns the number of workers
func (p *WorkerPool) WorkerCount() int {
	return p.workers
}

func (p *WorkerPool) QueuedTaskCount() int {
	return p.scheduler.QueuedTaskCount()
}

func (p *WorkerPool) ActiveTaskCount() int {
	return p.scheduler.ActiveTaskCount()
}

// PendingBatchCount returns the number of batches still waiting for results.
func (p *WorkerPool) PendingBatchCount() int {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return len(p.batches)
}

// RecentBatches returns finished batch records, newest first.
func (p *WorkerPool) RecentBatches(limit int) []core.BatchRecord {
	return p.history.Recent(limit)
}

// Stats returns a point-in-time snapshot of pool activity.
func (p *WorkerPool) Stats() core.PoolStats {
	return core.PoolStats{
		ID:             p.id,
		Workers:        p.workers,
		Queued:         p.QueuedTaskCount(),
		Active:         p.ActiveTaskCount(),
		PendingBatches: p.PendingBatchCount(),
		Running:        p.IsRunning(),
	}
}

// =============================================================================
// Global Worker Pool Helper (Singleton)
// =============================================================================

var (
	globalWorkerPool *WorkerPool
	globalMu         sync.Mutex
)

// InitGlobalWorkerPool initializes the global worker pool with the specified
// number of workers. Repeated calls are no-ops.
func InitGlobalWorkerPool(workers int) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalWorkerPool != nil {
		return nil // Already initialized
	}

	pool, err := NewWorkerPool("global-pool", workers)
	if err != nil {
		return err
	}
	globalWorkerPool = pool
	return nil
}

// GlobalWorkerPool returns the global worker pool instance.
// It panics if InitGlobalWorkerPool has not been called.
func GlobalWorkerPool() *WorkerPool {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalWorkerPool == nil {
		panic("GlobalWorkerPool not initialized. Call InitGlobalWorkerPool() first.")
	}
	return globalWorkerPool
}

// ShutdownGlobalWorkerPool closes the global worker pool and waits for its workers.
func ShutdownGlobalWorkerPool() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalWorkerPool != nil {
		globalWorkerPool.Close()
		globalWorkerPool.Join()
		globalWorkerPool = nil
	}
}

// CreateIterativeParallelism returns a façade that borrows the global pool.
func CreateIterativeParallelism() *IterativeParallelism {
	return NewSharedIterativeParallelism(GlobalWorkerPool())
}
