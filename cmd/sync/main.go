// Command sync projects one election from the relational mirror onto the
// ledger. Run it again to continue after the transaction cap was reached.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goodnatureofminers/electionledger-backend/internal/bootstrap"
	"github.com/goodnatureofminers/electionledger-backend/internal/chain"
	"github.com/goodnatureofminers/electionledger-backend/internal/clock"
	"github.com/goodnatureofminers/electionledger-backend/internal/metrics"
	"github.com/goodnatureofminers/electionledger-backend/internal/service/projector"
	"go.uber.org/zap"
)

type config struct {
	Election    string `long:"election" env:"ELECTIONLEDGER_SYNC_ELECTION" description:"election code to sync" required:"true"`
	TxCap       int    `long:"tx-cap" env:"ELECTIONLEDGER_SYNC_TX_CAP" description:"write transactions per run" default:"200"`
	ReadWorkers int    `long:"read-workers" env:"ELECTIONLEDGER_SYNC_READ_WORKERS" description:"concurrent existence reads" default:"8"`

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

	report, err := run(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("election sync failed", zap.Error(err))
	}
	if !report.Complete {
		logger.Warn("transaction cap reached; run sync again to continue",
			zap.String("election", report.Election),
			zap.Int("writes", report.Writes),
		)
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) (projector.SyncReport, error) {
	mirror, err := bootstrap.OpenMirror(cfg.Storage)
	if err != nil {
		return projector.SyncReport{}, err
	}
	defer func() {
		if err := mirror.Close(); err != nil {
			logger.Warn("close mirror", zap.Error(err))
		}
	}()

	journal, err := bootstrap.StartJournal(ctx, cfg.Storage, logger)
	if err != nil {
		return projector.SyncReport{}, err
	}
	defer journal.Close(logger)

	ledger, err := bootstrap.ConnectLedger(ctx, cfg.Chain, journal.Recorder(), logger)
	if err != nil {
		return projector.SyncReport{}, fmt.Errorf("connect ledger: %w", err)
	}
	defer ledger.Close()

	proj, err := projector.New(
		chain.NewBallot(ledger.Client),
		mirror,
		metrics.NewProjector(),
		clock.System{},
		projector.Config{TxCap: cfg.TxCap, ReadWorkers: cfg.ReadWorkers},
		logger,
	)
	if err != nil {
		return projector.SyncReport{}, err
	}
	return proj.SyncElection(ctx, cfg.Election)
}
