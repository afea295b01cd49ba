// Package journal appends contract submission lifecycle events to the ledger
// journal without blocking the signer.
package journal

import (
	"context"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/model"
	"github.com/goodnatureofminers/electionledger-backend/pkg/batcher"
	"go.uber.org/zap"
)

const (
	defaultBatchSize     = 256
	defaultFlushInterval = 2 * time.Second
)

// Config tunes batching of journal writes.
type Config struct {
	BatchSize        int
	FlushInterval    time.Duration
	FlushesPerSecond int
	QueueSize        int
}

// Journal buffers ledger events and writes them to a Store in batches.
type Journal struct {
	batcher *batcher.Batcher[model.LedgerEvent]
	logger  *zap.Logger
}

// New constructs a Journal writing to store. Call Start before recording.
func New(store Store, cfg Config, logger *zap.Logger) *Journal {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	logger = logger.Named("journal")
	return &Journal{
		batcher: batcher.New[model.LedgerEvent](logger, store.InsertLedgerEvents, batcher.Options{
			Size:             cfg.BatchSize,
			Interval:         cfg.FlushInterval,
			FlushesPerSecond: cfg.FlushesPerSecond,
			Capacity:         cfg.QueueSize,
		}),
		logger: logger,
	}
}

// Start launches the flush loop.
func (j *Journal) Start(ctx context.Context) {
	j.batcher.Start(ctx)
}

// Record queues an event. It never blocks; when the queue is full the event
// is dropped and logged.
func (j *Journal) Record(event model.LedgerEvent) {
	if j.batcher.TryAdd(event) {
		return
	}
	j.logger.Warn("ledger event dropped",
		zap.String("kind", string(event.Kind)),
		zap.String("function", event.Function),
		zap.String("tx_hash", event.TxHash),
		zap.Uint64("dropped_total", j.batcher.Dropped()),
	)
}

// Close flushes buffered events and stops the loop.
func (j *Journal) Close(ctx context.Context) error {
	return j.batcher.Close(ctx)
}
