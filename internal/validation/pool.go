package validation

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// foldPool fans independent fold jobs out over a bounded set of workers.
// Each job owns a distinct slot in the shared result slice, so workers
// never touch the same memory and results keep their submission order.
type foldPool struct {
	workers int
	timeout time.Duration
}

func newFoldPool(workers int, timeout time.Duration) *foldPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &foldPool{workers: workers, timeout: timeout}
}

// run executes n jobs concurrently. Jobs observe ctx cancellation at fold
// granularity: already-finished folds keep their results, pending folds are
// abandoned.
func (p *foldPool) run(ctx context.Context, n int, job func(ctx context.Context, i int)) {
	if n == 0 {
		return
	}
	workers := p.workers
	if workers > n {
		workers = n
	}

	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				job(ctx, i)
			}
		}()
	}
	wg.Wait()
}

// callModel runs a model fit/predict closure with panic recovery and the
// pool's per-fold timeout. A fold that times out or panics is reported as
// an error so the caller can skip it; the pipeline never crashes on a
// misbehaving model capability.
func (p *foldPool) callModel(ctx context.Context, fn func() error) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("model panicked: %v", r)
			}
		}()
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
