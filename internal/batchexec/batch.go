// Package batchexec runs bounded concurrent batches of same-shaped work
// and collects results in input order. A source run is one-shot
// pagination, not a standing worker pool, so a single errgroup fan-out
// (optionally rate-limited) covers every caller.
package batchexec

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Run executes fn for every item concurrently and returns results in the
// same order as items, or the first error any fn call returned (the rest
// are abandoned via context cancellation, same as errgroup.Wait semantics).
func Run[T any, R any](ctx context.Context, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	return RunLimited(ctx, nil, items, fn)
}

// RunLimited is Run with each fn call gated on limiter, so a source's
// concurrent pagination can't exceed the request rate its upstream (or the
// anti-bot gateway plan) tolerates. A nil limiter means unthrottled.
func RunLimited[T any, R any](ctx context.Context, limiter *rate.Limiter, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))

	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
			}
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
