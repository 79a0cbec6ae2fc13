// Package pool runs independent tasks on a fixed number of workers and
// gathers the successful results into a single synchronized sink.
package pool

import (
	"context"
	"fmt"
	"sync"

	conc "github.com/sourcegraph/conc/pool"
)

// Task checks one item. It reports ok=false to drop the item.
type Task[In, Out any] func(ctx context.Context, in In) (out Out, ok bool)

// PanicHandler is told about a task that panicked; the item is dropped.
type PanicHandler func(recovered any)

// Options tunes Collect. The zero value is valid.
type Options struct {
	OnPanic PanicHandler
}

// Collect runs fn over items with at most limit tasks in flight and returns
// the outputs of the tasks that succeeded, in completion order.
// Once ctx is cancelled no further items are admitted; tasks already running
// are expected to observe ctx themselves.
func Collect[In, Out any](ctx context.Context, items []In, limit int, fn Task[In, Out], opts ...Options) []Out {
	if limit <= 0 {
		limit = 1
	}

	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	var (
		mu      sync.Mutex
		results = make([]Out, 0, len(items))
	)

	p := conc.New().WithMaxGoroutines(limit)
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			out, ok := run(ctx, item, fn, opt.OnPanic)
			if !ok {
				return
			}
			mu.Lock()
			results = append(results, out)
			mu.Unlock()
		})
	}
	p.Wait()

	return results
}

func run[In, Out any](ctx context.Context, in In, fn Task[In, Out], onPanic PanicHandler) (out Out, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if onPanic != nil {
				onPanic(r)
			}
			var zero Out
			out, ok = zero, false
		}
	}()
	return fn(ctx, in)
}

// PanicError wraps a recovered panic value for logging.
func PanicError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return fmt.Errorf("task panicked: %w", err)
	}
	return fmt.Errorf("task panicked: %v", recovered)
}
