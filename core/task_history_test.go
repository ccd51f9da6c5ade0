package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchHistory_RecentNewestFirst(t *testing.T) {
	h := NewBatchHistory(3)

	for _, id := range []string{"a", "b", "c", "d"} {
		h.Add(BatchRecord{ID: id})
	}

	recent := h.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "d", recent[0].ID)
	assert.Equal(t, "c", recent[1].ID)
	assert.Equal(t, "b", recent[2].ID)

	limited := h.Recent(2)
	require.Len(t, limited, 2)
	assert.Equal(t, "d", limited[0].ID)

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, "d", last.ID)
}

func TestBatchHistory_Empty(t *testing.T) {
	h := NewBatchHistory(0)

	assert.Nil(t, h.Recent(5))
	_, ok := h.Last()
	assert.False(t, ok)
}
