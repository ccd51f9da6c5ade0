package core

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrInvalidConfiguration is returned when a pool or a façade call is
	// asked to run with fewer than one thread.
	ErrInvalidConfiguration = errors.New("parallel: thread count must be at least 1")

	// ErrInterrupted is returned when the caller's context is cancelled while
	// it waits for a batch. The batch is abandoned; nothing is retried.
	ErrInterrupted = errors.New("parallel: interrupted while waiting for batch")

	// ErrPoolClosed is returned for batches submitted to a closed pool and for
	// batches still outstanding when the pool is closed.
	ErrPoolClosed = errors.New("parallel: pool is closed")

	// ErrNoSuchElement is returned by Maximum and Minimum on empty input.
	ErrNoSuchElement = errors.New("parallel: no such element")
)

// TaskError reports the failure of one task in a batch. Index is the
// task's position in the batch (for façade calls, the block index).
type TaskError struct {
	Index int
	Cause error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d failed: %v", e.Index, e.Cause)
}

func (e *TaskError) Unwrap() error {
	return e.Cause
}

// IsTaskError reports whether err (or any error in its chain) is a [*TaskError].
func IsTaskError(err error) bool {
	if err == nil {
		return false
	}
	var te *TaskError
	return errors.As(err, &te)
}

// CauseOf returns the cause of the first [*TaskError] in err's chain.
// If err is not a TaskError, it is returned as-is.
func CauseOf(err error) error {
	if err == nil {
		return nil
	}

	var te *TaskError
	if errors.As(err, &te) {
		return te.Cause
	}

	return err
}

// PanicError wraps a value recovered from a panicking task together with
// the goroutine stack at the point of the panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func newPanicError(v any) *PanicError {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{
		Value: v,
		Stack: buf[:n],
	}
}
