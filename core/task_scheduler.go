package core

import (
	"sync/atomic"
)

// TaskScheduler owns a pool's shared FIFO queue and the signal channel
// idle workers block on.
type TaskScheduler struct {
	name        string
	queue       TaskQueue
	signal      chan struct{}
	workerCount int

	metricQueued int32 // Waiting in queue
	metricActive int32 // Executing in Worker

	metrics             Metrics
	rejectedTaskHandler RejectedTaskHandler

	// Lifecycle
	shuttingDown int32 // atomic flag
}

func NewFIFOTaskScheduler(name string, workerCount int) *TaskScheduler {
	return NewFIFOTaskSchedulerWithConfig(name, workerCount, DefaultWorkerPoolConfig())
}

func NewFIFOTaskSchedulerWithConfig(name string, workerCount int, config *WorkerPoolConfig) *TaskScheduler {
	s := &TaskScheduler{
		name:        name,
		signal:      make(chan struct{}, workerCount*2),
		workerCount: workerCount,
		queue:       NewFIFOTaskQueue(),
	}

	if config != nil {
		s.metrics = config.Metrics
		s.rejectedTaskHandler = config.RejectedTaskHandler
	}
	if s.metrics == nil {
		s.metrics = &NilMetrics{}
	}
	if s.rejectedTaskHandler == nil {
		s.rejectedTaskHandler = &DefaultRejectedTaskHandler{}
	}

	return s
}

// Post enqueues a task and wakes one idle worker.
// Returns false if the scheduler is shutting down.
func (s *TaskScheduler) Post(task Task) bool {
	if atomic.LoadInt32(&s.shuttingDown) == 1 {
		s.rejectedTaskHandler.HandleRejectedTask(s.name, "shutting down")
		s.metrics.RecordTaskRejected(s.name, "shutting down")
		return false
	}

	s.queue.Push(task)
	queued := atomic.AddInt32(&s.metricQueued, 1)
	s.metrics.RecordQueueDepth(s.name, int(queued))

	select {
	case s.signal <- struct{}{}:
	default:
		// Signal channel full: enough wakeups are already pending
	}
	return true
}

// GetWork (Called by Worker) blocks until a task is available or stopCh is closed.
func (s *TaskScheduler) GetWork(stopCh <-chan struct{}) (Task, bool) {
	for {
		if atomic.LoadInt32(&s.shuttingDown) == 1 {
			return nil, false
		}
		if task, ok := s.queue.Pop(); ok {
			queued := atomic.AddInt32(&s.metricQueued, -1)
			s.metrics.RecordQueueDepth(s.name, int(queued))
			return task, true
		}

		select {
		case <-s.signal:
			continue
		case <-stopCh:
			return nil, false
		}
	}
}

// Shutdown stops accepting tasks and discards everything still queued.
// Returns the number of discarded tasks.
func (s *TaskScheduler) Shutdown() int {
	if !atomic.CompareAndSwapInt32(&s.shuttingDown, 0, 1) {
		return 0
	}

	dropped := s.queue.Clear()
	atomic.AddInt32(&s.metricQueued, -int32(dropped))
	s.metrics.RecordQueueDepth(s.name, 0)
	if dropped > 0 {
		s.metrics.RecordTaskRejected(s.name, "discarded on close")
	}
	return dropped
}

// IsShuttingDown reports whether Shutdown has been called.
func (s *TaskScheduler) IsShuttingDown() bool {
	return atomic.LoadInt32(&s.shuttingDown) == 1
}

// Metrics
func (s *TaskScheduler) WorkerCount() int     { return s.workerCount }
func (s *TaskScheduler) QueuedTaskCount() int { return int(atomic.LoadInt32(&s.metricQueued)) }
func (s *TaskScheduler) ActiveTaskCount() int { return int(atomic.LoadInt32(&s.metricActive)) }

func (s *TaskScheduler) OnTaskStart() {
	atomic.AddInt32(&s.metricActive, 1)
}

func (s *TaskScheduler) OnTaskEnd() {
	atomic.AddInt32(&s.metricActive, -1)
}

// GetMetrics returns the metrics collector for this scheduler
func (s *TaskScheduler) GetMetrics() Metrics {
	return s.metrics
}
