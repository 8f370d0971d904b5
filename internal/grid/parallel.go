package grid

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ForRows calls fn once for every row in [0, rows), spreading rows across a
// bounded pool of goroutines. fn must only write cells belonging to its own
// row. The first error cancels the remaining rows and is returned.
func ForRows(ctx context.Context, rows int, fn func(y int) error) error {
	if rows <= 0 {
		return nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > rows {
		workers = rows
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for y := 0; y < rows; y++ {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(y)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
