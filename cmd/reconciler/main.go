// Command reconciler resolves pending votes against the ledger until stopped.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/bootstrap"
	"github.com/goodnatureofminers/electionledger-backend/internal/metrics"
	"github.com/goodnatureofminers/electionledger-backend/internal/service/reconcile"
	"go.uber.org/zap"
)

type config struct {
	BatchSize    int           `long:"batch-size" env:"ELECTIONLEDGER_RECONCILE_BATCH_SIZE" description:"pending votes per pass" default:"100"`
	Workers      int           `long:"workers" env:"ELECTIONLEDGER_RECONCILE_WORKERS" description:"concurrent receipt lookups" default:"8"`
	Interval     time.Duration `long:"interval" env:"ELECTIONLEDGER_RECONCILE_INTERVAL" description:"pause between passes with work" default:"15s"`
	IdleInterval time.Duration `long:"idle-interval" env:"ELECTIONLEDGER_RECONCILE_IDLE_INTERVAL" description:"pause after a pass found nothing" default:"1m"`
	MaxBackoff   time.Duration `long:"max-backoff" env:"ELECTIONLEDGER_RECONCILE_MAX_BACKOFF" description:"longest pause after repeated failed passes" default:"5m"`
	MetricsAddr  string        `long:"metrics-addr" env:"ELECTIONLEDGER_RECONCILE_METRICS_ADDR" description:"address for metrics server" default:":2112"`

	Log     bootstrap.LogOptions     `group:"logging"`
	Chain   bootstrap.ChainOptions   `group:"chain"`
	Storage bootstrap.StorageOptions `group:"storage"`
}

func main() {
	cfg := config{}
	ok, err := bootstrap.ParseFlags(&cfg)
	if err != nil {
		os.Exit(2)
	}
	if !ok {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("reconciler failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	bootstrap.StartMetricsServer(ctx, cfg.MetricsAddr, logger)

	mirror, err := bootstrap.OpenMirror(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := mirror.Close(); err != nil {
			logger.Warn("close mirror", zap.Error(err))
		}
	}()

	// Reads only; the journal is not needed here.
	ledger, err := bootstrap.ConnectLedger(ctx, cfg.Chain, nil, logger)
	if err != nil {
		return fmt.Errorf("connect ledger: %w", err)
	}
	defer ledger.Close()

	r, err := reconcile.New(ledger.Client, mirror, metrics.NewReconciler(), reconcile.Config{
		BatchSize:    cfg.BatchSize,
		WorkerCount:  cfg.Workers,
		Interval:     cfg.Interval,
		IdleInterval: cfg.IdleInterval,
		MaxBackoff:   cfg.MaxBackoff,
	}, logger)
	if err != nil {
		return err
	}
	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("reconciler stopped")
	return nil
}
