package parallel

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Swind/go-parallel/core"
)

const (
	modeShared    = "shared"
	modeEphemeral = "ephemeral"
)

// poolProvider hands out the runner for one façade call. release must be
// called exactly once on every exit path with the call's error.
type poolProvider interface {
	acquire(blocks int) (runner core.BatchRunner, release func(err error), err error)
	mode() string
}

// sharedPool borrows a caller-owned runner and never closes it.
type sharedPool struct {
	runner core.BatchRunner
}

func (s sharedPool) acquire(int) (core.BatchRunner, func(error), error) {
	return s.runner, func(error) {}, nil
}

func (s sharedPool) mode() string { return modeShared }

// ephemeralPools creates a pool sized to the block count for one call and
// closes it when the call returns.
type ephemeralPools struct {
	config  *core.WorkerPoolConfig
	created *atomic.Int64
}

func (e ephemeralPools) acquire(blocks int) (core.BatchRunner, func(error), error) {
	pool, err := NewWorkerPoolWithConfig(fmt.Sprintf("ephemeral-%d", blocks), blocks, e.config)
	if err != nil {
		return nil, nil, err
	}
	e.created.Add(1)
	return pool, func(err error) {
		pool.Close()
		// After an interrupted call tasks may still be running; don't block on them.
		if err == nil {
			pool.Join()
		}
	}, nil
}

func (e ephemeralPools) mode() string { return modeEphemeral }

// IterativeParallelism runs list operations by splitting the input into
// contiguous blocks, computing each block on a pool and reducing the block
// results in block order.
//
// It either borrows a shared runner (see NewSharedIterativeParallelism) or
// creates a disposable pool per call.
type IterativeParallelism struct {
	provider poolProvider

	mu     sync.Mutex
	logger core.Logger
	name   string

	calls          atomic.Int64
	failedCalls    atomic.Int64
	ephemeralPools atomic.Int64
	blocks         atomic.Int64
}

// NewIterativeParallelism creates a façade that uses a fresh pool per call.
func NewIterativeParallelism() *IterativeParallelism {
	return NewIterativeParallelismWithConfig(nil)
}

// NewIterativeParallelismWithConfig creates a façade whose per-call pools
// are built with config.
func NewIterativeParallelismWithConfig(config *core.WorkerPoolConfig) *IterativeParallelism {
	cfg := config.WithDefaults()
	ip := &IterativeParallelism{logger: cfg.Logger}
	ip.provider = ephemeralPools{config: cfg, created: &ip.ephemeralPools}
	return ip
}

// NewSharedIterativeParallelism creates a façade that runs every call on
// runner. The façade never closes runner. A nil runner falls back to
// per-call pools.
func NewSharedIterativeParallelism(runner core.BatchRunner) *IterativeParallelism {
	if runner == nil {
		return NewIterativeParallelism()
	}
	return &IterativeParallelism{
		provider: sharedPool{runner: runner},
		logger:   core.NewNoOpLogger(),
	}
}

// SetLogger replaces the façade's logger. A nil logger disables logging.
// It is safe to call while operations are running.
func (ip *IterativeParallelism) SetLogger(logger core.Logger) {
	if logger == nil {
		logger = core.NewNoOpLogger()
	}
	ip.mu.Lock()
	defer ip.mu.Unlock()
	ip.logger = logger
}

func (ip *IterativeParallelism) currentLogger() core.Logger {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	return ip.logger
}

// Name returns the name of the façade
func (ip *IterativeParallelism) Name() string {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	return ip.name
}

// SetName sets the name used in stats and logs
func (ip *IterativeParallelism) SetName(name string) {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	ip.name = name
}

// Stats returns current observability data for this façade.
func (ip *IterativeParallelism) Stats() core.FacadeStats {
	name := ip.Name()
	if name == "" {
		name = "iterative"
	}
	return core.FacadeStats{
		Name:           name,
		Mode:           ip.provider.mode(),
		Calls:          ip.calls.Load(),
		FailedCalls:    ip.failedCalls.Load(),
		EphemeralPools: ip.ephemeralPools.Load(),
		Blocks:         ip.blocks.Load(),
	}
}

var (
	defaultParallelism     *IterativeParallelism
	defaultParallelismOnce sync.Once
)

func orDefault(ip *IterativeParallelism) *IterativeParallelism {
	if ip != nil {
		return ip
	}
	defaultParallelismOnce.Do(func() {
		defaultParallelism = NewIterativeParallelism()
	})
	return defaultParallelism
}

// PartitionComputeReduce splits values into at most threads contiguous
// blocks, applies blockFn to every block on the façade's pool and passes
// the block results, in block order, to reduceFn.
//
// Empty input never touches a pool: reduceFn is called with no results.
// Errors from blockFn (including panics) come back as *core.TaskError
// indexed by block. A nil ip uses a shared default façade with per-call
// pools.
func PartitionComputeReduce[T, U, R any](
	ctx context.Context,
	ip *IterativeParallelism,
	threads int,
	values []T,
	blockFn func(ctx context.Context, block []T) (U, error),
	reduceFn func(results []U) (R, error),
) (R, error) {
	var zero R
	ip = orDefault(ip)

	blocks, err := core.Partition(len(values), threads)
	if err != nil {
		return zero, fmt.Errorf("%w: got %d threads", err, threads)
	}
	ip.calls.Add(1)

	if len(blocks) == 0 {
		r, err := reduceFn(nil)
		return observe(ip, r, err)
	}

	ip.blocks.Add(int64(len(blocks)))
	ip.currentLogger().Debug("partitioned input",
		core.F("facade", ip.Name()),
		core.F("elements", len(values)),
		core.F("threads", threads),
		core.F("blocks", len(blocks)),
	)

	parts := core.Split(values, blocks)
	fns := make([]func(ctx context.Context) (U, error), len(parts))
	for i, part := range parts {
		fns[i] = func(ctx context.Context) (U, error) {
			return blockFn(ctx, part)
		}
	}

	runner, release, err := ip.provider.acquire(len(blocks))
	if err != nil {
		return observe(ip, zero, err)
	}
	results, err := core.RunTyped(ctx, runner, fns)
	release(err)
	if err != nil {
		return observe(ip, zero, err)
	}

	r, err := reduceFn(results)
	return observe(ip, r, err)
}

func observe[R any](ip *IterativeParallelism, r R, err error) (R, error) {
	if err != nil {
		ip.failedCalls.Add(1)
	}
	return r, err
}
