package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-parallel/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// PoolSnapshotProvider provides current pool stats snapshots.
type PoolSnapshotProvider interface {
	Stats() core.PoolStats
}

// FacadeSnapshotProvider provides current iterative-parallelism stats snapshots.
type FacadeSnapshotProvider interface {
	Stats() core.FacadeStats
}

// SnapshotPoller periodically exports pool/façade Stats() snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	facadesMu sync.RWMutex
	facades   map[string]FacadeSnapshotProvider

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	facadeCalls          *prom.GaugeVec
	facadeFailedCalls    *prom.GaugeVec
	facadeEphemeralPools *prom.GaugeVec
	facadeBlocks         *prom.GaugeVec

	poolQueued         *prom.GaugeVec
	poolActive         *prom.GaugeVec
	poolPendingBatches *prom.GaugeVec
	poolWorkers        *prom.GaugeVec
	poolRunning        *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	facadeCalls := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: defaultNamespace,
		Name:      "facade_calls",
		Help:      "Operation calls per façade snapshot.",
	}, []string{"facade", "mode"})
	facadeFailedCalls := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: defaultNamespace,
		Name:      "facade_failed_calls",
		Help:      "Failed operation calls per façade snapshot.",
	}, []string{"facade", "mode"})
	facadeEphemeralPools := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: defaultNamespace,
		Name:      "facade_ephemeral_pools",
		Help:      "Per-call pools created per façade snapshot.",
	}, []string{"facade", "mode"})
	facadeBlocks := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: defaultNamespace,
		Name:      "facade_blocks",
		Help:      "Blocks computed per façade snapshot.",
	}, []string{"facade", "mode"})

	poolQueued := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: defaultNamespace,
		Name:      "pool_queued",
		Help:      "Queued tasks per pool.",
	}, []string{"pool"})
	poolActive := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: defaultNamespace,
		Name:      "pool_active",
		Help:      "Active tasks per pool.",
	}, []string{"pool"})
	poolPendingBatches := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: defaultNamespace,
		Name:      "pool_pending_batches",
		Help:      "Batches awaiting results per pool.",
	}, []string{"pool"})
	poolWorkers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: defaultNamespace,
		Name:      "pool_workers",
		Help:      "Worker count per pool.",
	}, []string{"pool"})
	poolRunning := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: defaultNamespace,
		Name:      "pool_running",
		Help:      "Pool running state (1=running, 0=stopped).",
	}, []string{"pool"})

	var err error
	if facadeCalls, err = registerCollector(reg, facadeCalls); err != nil {
		return nil, err
	}
	if facadeFailedCalls, err = registerCollector(reg, facadeFailedCalls); err != nil {
		return nil, err
	}
	if facadeEphemeralPools, err = registerCollector(reg, facadeEphemeralPools); err != nil {
		return nil, err
	}
	if facadeBlocks, err = registerCollector(reg, facadeBlocks); err != nil {
		return nil, err
	}
	if poolQueued, err = registerCollector(reg, poolQueued); err != nil {
		return nil, err
	}
	if poolActive, err = registerCollector(reg, poolActive); err != nil {
		return nil, err
	}
	if poolPendingBatches, err = registerCollector(reg, poolPendingBatches); err != nil {
		return nil, err
	}
	if poolWorkers, err = registerCollector(reg, poolWorkers); err != nil {
		return nil, err
	}
	if poolRunning, err = registerCollector(reg, poolRunning); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:             interval,
		facades:              make(map[string]FacadeSnapshotProvider),
		pools:                make(map[string]PoolSnapshotProvider),
		facadeCalls:          facadeCalls,
		facadeFailedCalls:    facadeFailedCalls,
		facadeEphemeralPools: facadeEphemeralPools,
		facadeBlocks:         facadeBlocks,
		poolQueued:           poolQueued,
		poolActive:           poolActive,
		poolPendingBatches:   poolPendingBatches,
		poolWorkers:          poolWorkers,
		poolRunning:          poolRunning,
	}, nil
}

// AddFacade adds or replaces a façade snapshot provider by name.
func (p *SnapshotPoller) AddFacade(name string, provider FacadeSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "facade")
	p.facadesMu.Lock()
	p.facades[name] = provider
	p.facadesMu.Unlock()
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx, p.done)
}

// Stop stops periodic polling and takes a final snapshot; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	p.CollectOnce()

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.CollectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.CollectOnce()
		}
	}
}

// CollectOnce exports one snapshot of every registered provider.
func (p *SnapshotPoller) CollectOnce() {
	p.facadesMu.RLock()
	for name, provider := range p.facades {
		stats := provider.Stats()
		mode := normalizeLabel(stats.Mode, "unknown")
		p.facadeCalls.WithLabelValues(name, mode).Set(float64(stats.Calls))
		p.facadeFailedCalls.WithLabelValues(name, mode).Set(float64(stats.FailedCalls))
		p.facadeEphemeralPools.WithLabelValues(name, mode).Set(float64(stats.EphemeralPools))
		p.facadeBlocks.WithLabelValues(name, mode).Set(float64(stats.Blocks))
	}
	p.facadesMu.RUnlock()

	p.poolsMu.RLock()
	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.poolActive.WithLabelValues(name).Set(float64(stats.Active))
		p.poolPendingBatches.WithLabelValues(name).Set(float64(stats.PendingBatches))
		p.poolWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		if stats.Running {
			p.poolRunning.WithLabelValues(name).Set(1)
		} else {
			p.poolRunning.WithLabelValues(name).Set(0)
		}
	}
	p.poolsMu.RUnlock()
}
