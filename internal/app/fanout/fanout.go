// Package fanout runs one function per item on a bounded pool of goroutines
// and collects the results in input order.
//
// Results are correlated to inputs by index, never by completion order:
// out[i] always belongs to items[i].
package fanout

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrPanicked wraps the value of a panic raised by fn.
var ErrPanicked = errors.New("panicked")

// Map calls fn for every item using at most limit concurrent goroutines and
// returns the results index-aligned with items. A limit of zero or less runs
// every item at once.
//
// fallback supplies the result for an item that could not produce one: it
// receives ctx.Err() when ctx was done before the item got a worker, or an
// error wrapping ErrPanicked when fn panicked. Neither case affects sibling
// items, and items already running are never interrupted by Map itself.
//
// Map blocks until every item has a result. An empty items slice yields an
// empty non-nil slice.
func Map[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) R, fallback func(T, error) R) []R {
	out := make([]R, len(items))
	if len(items) == 0 {
		return out
	}

	var g errgroup.Group
	if limit > 0 && limit < len(items) {
		g.SetLimit(limit)
	}

	for i, item := range items {
		g.Go(func() error {
			defer func() {
				if v := recover(); v != nil {
					out[i] = fallback(item, fmt.Errorf("%w: %v", ErrPanicked, v))
				}
			}()

			if err := ctx.Err(); err != nil {
				out[i] = fallback(item, err)
				return nil
			}
			out[i] = fn(ctx, item)
			return nil
		})
	}

	_ = g.Wait()
	return out
}
