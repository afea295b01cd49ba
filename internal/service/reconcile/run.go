package reconcile

import (
	"context"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/clock"
	"go.uber.org/zap"
)

// Run reconciles pending votes until ctx is canceled. Consecutive failed
// passes double the pause up to the configured maximum; a successful pass
// resets it.
func (r *Reconciler) Run(ctx context.Context) error {
	backoff := r.interval
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := r.RunOnce(ctx)
		var wait time.Duration
		switch {
		case err != nil:
			wait = backoff
			backoff = clock.Backoff(backoff, r.maxBackoff)
			r.logger.Warn("reconciliation pass failed, backing off", zap.Error(err), zap.Duration("sleep", wait))
		case n == 0:
			wait, backoff = r.idleInterval, r.interval
			r.logger.Debug("no pending votes; sleeping", zap.Duration("sleep", wait))
		default:
			wait, backoff = r.interval, r.interval
		}
		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// RunOnce enriches one batch of pending votes and reports how many it examined.
func (r *Reconciler) RunOnce(ctx context.Context) (n int, err error) {
	started := time.Now()
	defer func() {
		r.metrics.ObserveBatch(err, n, started)
	}()

	votes, err := r.repo.PendingVotes(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(votes) == 0 {
		return 0, nil
	}

	applied, err := r.Enrich(ctx, votes)
	r.logger.Info("reconciliation pass",
		zap.Int("pending", len(votes)),
		zap.Int("resolved", len(applied)),
	)
	return len(votes), err
}
