package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func markTask(out *[]int, id int) Task {
	return func(ctx context.Context) {
		*out = append(*out, id)
	}
}

// TestFIFOTaskQueue_FIFO verifies first-in-first-out behavior
// Given: A FIFO queue with 3 tasks
// When: Tasks are popped from the queue
// Then: Tasks come out in insertion order
func TestFIFOTaskQueue_FIFO(t *testing.T) {
	// Arrange
	q := NewFIFOTaskQueue()
	var order []int

	// Act
	q.Push(markTask(&order, 1))
	q.Push(markTask(&order, 2))
	q.Push(markTask(&order, 3))

	for range 3 {
		task, ok := q.Pop()
		require.True(t, ok)
		task(context.Background())
	}

	// Assert
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.True(t, q.IsEmpty())
}

// TestFIFOTaskQueue_PopEmpty verifies popping from an empty queue
// Given: An empty queue
// When: Pop is called
// Then: Returns false and a nil task
func TestFIFOTaskQueue_PopEmpty(t *testing.T) {
	q := NewFIFOTaskQueue()

	task, ok := q.Pop()

	assert.False(t, ok)
	assert.Nil(t, task)
}

// TestFIFOTaskQueue_Clear verifies clearing reports dropped tasks
// Given: A queue with 5 tasks
// When: Clear is called
// Then: Returns 5 and the queue is empty
func TestFIFOTaskQueue_Clear(t *testing.T) {
	q := NewFIFOTaskQueue()
	noop := func(ctx context.Context) {}
	for range 5 {
		q.Push(noop)
	}

	dropped := q.Clear()

	assert.Equal(t, 5, dropped)
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Clear())
}

// TestFIFOTaskQueue_MaybeCompact verifies FIFO queue memory compaction
// Given: An emptied FIFO queue that previously held 200 tasks
// When: MaybeCompact is called
// Then: Underlying slice capacity is reduced and queue remains functional
func TestFIFOTaskQueue_MaybeCompact(t *testing.T) {
	// Arrange
	q := NewFIFOTaskQueue()
	noop := func(ctx context.Context) {}

	for range 200 {
		q.Push(noop)
	}
	for range 200 {
		q.Pop()
	}

	// Act
	q.MaybeCompact()

	// Assert - compacted back to the default capacity
	q.mu.Lock()
	c := cap(q.tasks)
	q.mu.Unlock()
	assert.LessOrEqual(t, c, defaultQueueCap)

	var order []int
	q.Push(markTask(&order, 7))
	require.Equal(t, 1, q.Len())

	task, ok := q.Pop()
	require.True(t, ok)
	task(context.Background())
	assert.Equal(t, []int{7}, order)
}

// TestFIFOTaskQueue_DrainResetsCapacity verifies draining alone releases the backing array
// Given: A FIFO queue that grew to hold 200 tasks
// When: Every task is popped
// Then: The queue is back at the default capacity without calling MaybeCompact
func TestFIFOTaskQueue_DrainResetsCapacity(t *testing.T) {
	q := NewFIFOTaskQueue()
	noop := func(ctx context.Context) {}
	for range 200 {
		q.Push(noop)
	}

	for !q.IsEmpty() {
		q.Pop()
	}

	q.mu.Lock()
	c := cap(q.tasks)
	q.mu.Unlock()
	assert.Equal(t, defaultQueueCap, c)
}

// TestFIFOTaskQueue_CompactKeepsOrder verifies compaction with live items
// Given: A queue with 100 tasks of which 90 are popped
// When: The remaining tasks are popped
// Then: They keep insertion order across the compaction
func TestFIFOTaskQueue_CompactKeepsOrder(t *testing.T) {
	q := NewFIFOTaskQueue()
	var order []int
	for i := range 100 {
		q.Push(markTask(&order, i))
	}
	for range 90 {
		q.Pop()
	}

	for !q.IsEmpty() {
		task, _ := q.Pop()
		task(context.Background())
	}

	assert.Equal(t, []int{90, 91, 92, 93, 94, 95, 96, 97, 98, 99}, order)
}
