package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Batch is one positionally-ordered group of tasks awaited as a unit.
//
// It owns the output slots and the completion counter. The counter starts at
// the batch size and the batch finishes exactly when it reaches zero, or
// earlier if the batch is aborted. Finishing closes Done() once; later
// completions are ignored.
type Batch struct {
	id        string
	createdAt time.Time

	mu        sync.Mutex
	results   []any
	remaining int
	failed    *TaskError
	aborted   error
	finished  bool
	done      chan struct{}
}

// NewBatch creates a batch with size empty slots.
func NewBatch(size int) *Batch {
	b := &Batch{
		id:        uuid.NewString(),
		createdAt: time.Now(),
		results:   make([]any, size),
		remaining: size,
		done:      make(chan struct{}),
	}
	if size == 0 {
		b.finishLocked()
	}
	return b
}

// ID returns the batch's unique identifier.
func (b *Batch) ID() string { return b.id }

// Size returns the number of slots.
func (b *Batch) Size() int { return len(b.results) }

// CreatedAt returns the time the batch was created.
func (b *Batch) CreatedAt() time.Time { return b.createdAt }

// Done returns a channel closed when the batch finishes.
func (b *Batch) Done() <-chan struct{} { return b.done }

// IsFinished reports whether the batch has finished or been aborted.
func (b *Batch) IsFinished() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.finished
}

// Remaining returns how many tasks have not yet completed.
func (b *Batch) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

// Complete stores the outcome of the task at index and decrements the
// counter. A failed task still counts as completed; the failure with the
// lowest index is kept.
func (b *Batch) Complete(index int, value any, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}

	if err != nil {
		if b.failed == nil || index < b.failed.Index {
			b.failed = &TaskError{Index: index, Cause: err}
		}
	} else {
		b.results[index] = value
	}

	b.remaining--
	if b.remaining == 0 {
		b.finishLocked()
	}
}

// Abort finishes the batch early with err. Returns false if the batch had
// already finished.
func (b *Batch) Abort(err error) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return false
	}
	b.aborted = err
	b.finishLocked()
	return true
}

func (b *Batch) finishLocked() {
	b.finished = true
	close(b.done)
}

// Wait blocks until the batch finishes or ctx is cancelled. On cancellation
// the batch is aborted with ErrInterrupted.
func (b *Batch) Wait(ctx context.Context) ([]any, error) {
	select {
	case <-b.done:
	case <-ctx.Done():
		b.Abort(fmt.Errorf("%w: %w", ErrInterrupted, context.Cause(ctx)))
	}
	return b.Result()
}

// Result returns the ordered results, or the abort error, or the lowest
// indexed TaskError. It must only be called after Done() is closed.
func (b *Batch) Result() ([]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.finished {
		return nil, fmt.Errorf("batch %s: result read before completion", b.id)
	}
	if b.aborted != nil {
		return nil, b.aborted
	}
	if b.failed != nil {
		return nil, b.failed
	}
	return b.results, nil
}

// Outcome classifies a finished batch into one of the BatchOutcome* values.
func (b *Batch) Outcome() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.aborted != nil && errors.Is(b.aborted, ErrInterrupted):
		return BatchOutcomeInterrupted
	case b.aborted != nil:
		return BatchOutcomeClosed
	case b.failed != nil:
		return BatchOutcomeFailed
	default:
		return BatchOutcomeOK
	}
}

// FailedIndex returns the lowest failing task index, or -1.
func (b *Batch) FailedIndex() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failed == nil {
		return -1
	}
	return b.failed.Index
}

// RunTask executes fn as the task at index and records the outcome. It is
// a no-op if the batch has already finished. If report is non-nil it is
// called with the recovered panic (nil if fn returned normally) before the
// slot is completed, so anything it records is visible once Wait returns.
func (b *Batch) RunTask(ctx context.Context, index int, fn BatchFunc, report func(pe *PanicError)) *PanicError {
	if b.IsFinished() {
		return nil
	}

	value, err := Invoke(ctx, fn)
	pe, _ := err.(*PanicError)
	if report != nil {
		report(pe)
	}
	b.Complete(index, value, err)
	return pe
}

// Invoke calls fn, converting a panic into a *PanicError returned as err.
func Invoke(ctx context.Context, fn BatchFunc) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = newPanicError(r)
		}
	}()
	return fn(ctx)
}
