// Package workerpool runs bounded concurrent work over a slice of items.
package workerpool

import (
	"context"
	"errors"
	"sync"
)

// Process runs fn for every item on up to workerCount goroutines and stops at the
// first error, canceling the context handed to in-flight calls. onCancel, when set,
// is invoked once before cancellation.
func Process[T any](
	ctx context.Context,
	workerCount int,
	items []T,
	fn func(context.Context, T) error,
	onCancel func(),
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			if onCancel != nil {
				onCancel()
			}
			cancel()
		})
	}

	run(ctx, workerCount, items, func(ctx context.Context, item T) {
		if err := fn(ctx, item); err != nil {
			fail(err)
		}
	})

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// ForEach runs fn for every item on up to workerCount goroutines without stopping
// on failures. All errors are joined into the returned error.
func ForEach[T any](
	ctx context.Context,
	workerCount int,
	items []T,
	fn func(context.Context, T) error,
) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	run(ctx, workerCount, items, func(ctx context.Context, item T) {
		if err := fn(ctx, item); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
	})

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func run[T any](ctx context.Context, workerCount int, items []T, fn func(context.Context, T)) {
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > len(items) {
		workerCount = len(items)
	}

	next := make(chan T)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range next {
				if ctx.Err() != nil {
					continue
				}
				fn(ctx, item)
			}
		}()
	}

feed:
	for _, item := range items {
		select {
		case <-ctx.Done():
			break feed
		case next <- item:
		}
	}
	close(next)
	wg.Wait()
}
