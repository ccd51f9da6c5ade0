package parallel

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Swind/go-parallel/core"
)

// Join concatenates the fmt.Sprint form of every value, in order, with no
// separator. Empty input yields "".
func Join[T any](ctx context.Context, ip *IterativeParallelism, threads int, values []T) (string, error) {
	return PartitionComputeReduce(ctx, ip, threads, values,
		func(_ context.Context, block []T) (string, error) {
			var b strings.Builder
			for _, v := range block {
				b.WriteString(fmt.Sprint(v))
			}
			return b.String(), nil
		},
		func(parts []string) (string, error) {
			return strings.Join(parts, ""), nil
		},
	)
}

// Filter returns the values matching predicate, in input order.
// Empty input yields an empty, non-nil slice.
func Filter[T any](ctx context.Context, ip *IterativeParallelism, threads int, values []T, predicate func(T) bool) ([]T, error) {
	return PartitionComputeReduce(ctx, ip, threads, values,
		func(_ context.Context, block []T) ([]T, error) {
			var kept []T
			for _, v := range block {
				if predicate(v) {
					kept = append(kept, v)
				}
			}
			return kept, nil
		},
		concatBlocks[T],
	)
}

// Map returns f applied to every value, in input order.
// Empty input yields an empty, non-nil slice.
func Map[T, U any](ctx context.Context, ip *IterativeParallelism, threads int, values []T, f func(T) U) ([]U, error) {
	return PartitionComputeReduce(ctx, ip, threads, values,
		func(_ context.Context, block []T) ([]U, error) {
			out := make([]U, len(block))
			for i, v := range block {
				out[i] = f(v)
			}
			return out, nil
		},
		concatBlocks[U],
	)
}

func concatBlocks[T any](blocks [][]T) ([]T, error) {
	n := 0
	for _, b := range blocks {
		n += len(b)
	}
	out := make([]T, 0, n)
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out, nil
}

// Maximum returns the greatest value according to cmp. On ties the first
// maximal value in input order wins. Empty input fails with
// core.ErrNoSuchElement.
func Maximum[T any](ctx context.Context, ip *IterativeParallelism, threads int, values []T, cmp func(a, b T) int) (T, error) {
	return PartitionComputeReduce(ctx, ip, threads, values,
		func(_ context.Context, block []T) (T, error) {
			return slices.MaxFunc(block, cmp), nil
		},
		func(maxima []T) (T, error) {
			if len(maxima) == 0 {
				var zero T
				return zero, core.ErrNoSuchElement
			}
			return slices.MaxFunc(maxima, cmp), nil
		},
	)
}

// Minimum returns the smallest value according to cmp, computed as
// Maximum with the comparator reversed. Empty input fails with
// core.ErrNoSuchElement.
func Minimum[T any](ctx context.Context, ip *IterativeParallelism, threads int, values []T, cmp func(a, b T) int) (T, error) {
	return Maximum(ctx, ip, threads, values, Reversed(cmp))
}

// Reversed returns the comparator ordering values opposite to cmp.
func Reversed[T any](cmp func(a, b T) int) func(a, b T) int {
	return func(a, b T) int {
		return cmp(b, a)
	}
}

// All reports whether predicate holds for every value. Empty input yields true.
func All[T any](ctx context.Context, ip *IterativeParallelism, threads int, values []T, predicate func(T) bool) (bool, error) {
	return PartitionComputeReduce(ctx, ip, threads, values,
		func(_ context.Context, block []T) (bool, error) {
			for _, v := range block {
				if !predicate(v) {
					return false, nil
				}
			}
			return true, nil
		},
		func(results []bool) (bool, error) {
			for _, ok := range results {
				if !ok {
					return false, nil
				}
			}
			return true, nil
		},
	)
}

// Any reports whether predicate holds for at least one value, computed as
// the negation of All over the negated predicate. Empty input yields false.
func Any[T any](ctx context.Context, ip *IterativeParallelism, threads int, values []T, predicate func(T) bool) (bool, error) {
	all, err := All(ctx, ip, threads, values, func(v T) bool {
		return !predicate(v)
	})
	if err != nil {
		return false, err
	}
	return !all, nil
}

// Count returns the number of values matching predicate. Empty input yields 0.
func Count[T any](ctx context.Context, ip *IterativeParallelism, threads int, values []T, predicate func(T) bool) (int, error) {
	return PartitionComputeReduce(ctx, ip, threads, values,
		func(_ context.Context, block []T) (int, error) {
			n := 0
			for _, v := range block {
				if predicate(v) {
					n++
				}
			}
			return n, nil
		},
		func(counts []int) (int, error) {
			total := 0
			for _, c := range counts {
				total += c
			}
			return total, nil
		},
	)
}
