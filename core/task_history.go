package core

import (
	"sync"
)

const defaultBatchHistoryCapacity = 100

// BatchHistory is a fixed-capacity ring buffer of finished batches.
type BatchHistory struct {
	mu    sync.Mutex
	items []BatchRecord
	head  int
	count int
}

// NewBatchHistory creates a history holding at most capacity records.
func NewBatchHistory(capacity int) *BatchHistory {
	if capacity < 1 {
		capacity = defaultBatchHistoryCapacity
	}
	return &BatchHistory{items: make([]BatchRecord, capacity)}
}

func (h *BatchHistory) Add(record BatchRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) == 0 {
		return
	}

	h.items[h.head] = record
	h.head = (h.head + 1) % len(h.items)
	if h.count < len(h.items) {
		h.count++
	}
}

// Recent returns up to limit records, newest first. limit <= 0 returns all.
func (h *BatchHistory) Recent(limit int) []BatchRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return nil
	}

	if limit <= 0 || limit > h.count {
		limit = h.count
	}

	out := make([]BatchRecord, 0, limit)
	for i := range limit {
		idx := (h.head - 1 - i + len(h.items)) % len(h.items)
		out = append(out, h.items[idx])
	}
	return out
}

func (h *BatchHistory) Last() (BatchRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return BatchRecord{}, false
	}

	idx := (h.head - 1 + len(h.items)) % len(h.items)
	return h.items[idx], true
}
