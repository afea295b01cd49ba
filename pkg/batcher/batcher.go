// Package batcher buffers items in memory and hands them to a sink in batches.
package batcher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// Sink receives a flushed batch. The slice is reused after the call returns.
type Sink[T any] func(context.Context, []T) error

// Options configures a Batcher.
type Options struct {
	// Size is the number of buffered items that triggers a flush.
	Size int
	// Interval flushes a partial batch when no size flush happened in time.
	Interval time.Duration
	// FlushesPerSecond caps how often the sink is invoked.
	FlushesPerSecond int
	// Capacity bounds the queue between producers and the flush loop.
	// Defaults to twice Size.
	Capacity int
}

// Batcher groups items by size or interval and flushes them on one goroutine.
type Batcher[T any] struct {
	sink    Sink[T]
	opts    Options
	queue   chan T
	limiter ratelimit.Limiter
	logger  *zap.Logger

	dropped atomic.Uint64
	closed  atomic.Bool
	done    chan struct{}
	quit    chan struct{}
	once    sync.Once
}

// New constructs a Batcher. Call Start to begin flushing.
func New[T any](logger *zap.Logger, sink Sink[T], opts Options) *Batcher[T] {
	if opts.Size <= 0 {
		opts.Size = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.FlushesPerSecond <= 0 {
		opts.FlushesPerSecond = 10
	}
	if opts.Capacity <= 0 {
		opts.Capacity = opts.Size * 2
	}
	return &Batcher[T]{
		sink:    sink,
		opts:    opts,
		queue:   make(chan T, opts.Capacity),
		limiter: ratelimit.New(opts.FlushesPerSecond),
		logger:  logger,
		done:    make(chan struct{}),
		quit:    make(chan struct{}),
	}
}

// Start launches the flush loop. Canceling ctx flushes what is buffered and stops.
func (b *Batcher[T]) Start(ctx context.Context) {
	go b.loop(ctx)
}

// TryAdd queues an item without waiting. A full queue or a closed batcher
// drops the item and reports false.
func (b *Batcher[T]) TryAdd(item T) bool {
	if b.closed.Load() {
		b.dropped.Add(1)
		return false
	}
	select {
	case b.queue <- item:
		return true
	default:
		b.dropped.Add(1)
		return false
	}
}

// Dropped reports how many items TryAdd discarded.
func (b *Batcher[T]) Dropped() uint64 {
	return b.dropped.Load()
}

// Close stops accepting items and waits for the loop to flush the remainder,
// or for ctx to expire.
func (b *Batcher[T]) Close(ctx context.Context) error {
	b.once.Do(func() {
		b.closed.Store(true)
		close(b.quit)
	})
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Batcher[T]) loop(ctx context.Context) {
	defer close(b.done)

	ticker := time.NewTicker(b.opts.Interval)
	defer ticker.Stop()

	buf := make([]T, 0, b.opts.Size)
	flush := func(ctx context.Context) {
		if len(buf) == 0 {
			return
		}
		b.limiter.Take()
		if err := b.sink(ctx, buf); err != nil {
			b.logger.Error("batch flush failed", zap.Int("size", len(buf)), zap.Error(err))
		} else {
			b.logger.Debug("batch flushed", zap.Int("size", len(buf)))
		}
		buf = buf[:0]
	}
	drain := func(ctx context.Context) {
		for {
			select {
			case item := <-b.queue:
				buf = append(buf, item)
				if len(buf) >= b.opts.Size {
					flush(ctx)
				}
			default:
				flush(ctx)
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			drain(context.WithoutCancel(ctx))
			return
		case <-b.quit:
			drain(ctx)
			return
		case item := <-b.queue:
			buf = append(buf, item)
			if len(buf) >= b.opts.Size {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		}
	}
}
