package core

import (
	"context"
	"fmt"
)

// RunTyped submits fns as one batch on r and returns their typed results in
// input order.
func RunTyped[R any](ctx context.Context, r BatchRunner, fns []func(ctx context.Context) (R, error)) ([]R, error) {
	batch := make([]BatchFunc, len(fns))
	for i, fn := range fns {
		batch[i] = func(ctx context.Context) (any, error) {
			return fn(ctx)
		}
	}

	raw, err := r.RunBatch(ctx, batch)
	if err != nil {
		return nil, err
	}
	return castResults[R](raw)
}

// Apply runs f over every element of args on r, one task per element, and
// returns the results in the order of args.
func Apply[T, R any](ctx context.Context, r BatchRunner, f func(ctx context.Context, arg T) (R, error), args []T) ([]R, error) {
	fns := make([]func(ctx context.Context) (R, error), len(args))
	for i, arg := range args {
		fns[i] = func(ctx context.Context) (R, error) {
			return f(ctx, arg)
		}
	}
	return RunTyped(ctx, r, fns)
}

func castResults[R any](raw []any) ([]R, error) {
	out := make([]R, len(raw))
	for i, v := range raw {
		if v == nil {
			continue
		}
		typed, ok := v.(R)
		if !ok {
			var zero R
			return nil, fmt.Errorf("batch result %d: got %T, want %T", i, v, zero)
		}
		out[i] = typed
	}
	return out, nil
}
