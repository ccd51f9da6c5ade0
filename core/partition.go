package core

// Block is the half-open range [Lo, Hi) of an input sequence assigned to one task.
type Block struct {
	Index int
	Lo    int
	Hi    int
}

// Len returns the number of elements in the block.
func (b Block) Len() int { return b.Hi - b.Lo }

// Partition splits n elements into at most threads contiguous blocks.
//
// The block count is min(threads, n). Every block gets n/blocks elements and
// the first n%blocks blocks get one extra, so 10 elements over 3 threads
// yields sizes [4, 3, 3]. Zero elements yield zero blocks.
func Partition(n, threads int) ([]Block, error) {
	if threads < 1 {
		return nil, ErrInvalidConfiguration
	}
	if n <= 0 {
		return nil, nil
	}

	count := min(threads, n)
	size := n / count
	extra := n % count

	blocks := make([]Block, count)
	lo := 0
	for i := range count {
		hi := lo + size
		if i < extra {
			hi++
		}
		blocks[i] = Block{Index: i, Lo: lo, Hi: hi}
		lo = hi
	}
	return blocks, nil
}

// Split returns the sub-slices of values described by blocks. The
// sub-slices share values' backing array.
func Split[T any](values []T, blocks []Block) [][]T {
	out := make([][]T, len(blocks))
	for i, b := range blocks {
		out[i] = values[b.Lo:b.Hi:b.Hi]
	}
	return out
}
