package gen

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parForEach runs f(i) for i in [0, n) across a bounded worker pool,
// failing fast: the first error cancels the group and is returned once all
// in-flight calls settle. Grounded on the teacher's
// evolution.ParallelEvaluator channel/WaitGroup worker pool
// (evolution/parallel.go), generalized to errgroup for the fail-fast
// cancellation semantics the generation pipeline requires (a single bad
// fitness aborts the whole iteration, per spec.md §5).
func parForEach(n int, f func(i int) error) error {
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return f(i)
		})
	}
	return g.Wait()
}
