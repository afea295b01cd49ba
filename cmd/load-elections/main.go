// Command load-elections upserts elections, positions and candidates from a
// YAML fixture into the relational mirror. Loading the same file twice is a no-op.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goodnatureofminers/electionledger-backend/internal/bootstrap"
	"go.uber.org/zap"
)

type config struct {
	File string `long:"file" short:"f" env:"ELECTIONLEDGER_FIXTURE" description:"YAML fixture to load" required:"true"`

	Log     bootstrap.LogOptions     `group:"logging"`
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
		logger.Fatal("load elections failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	f, err := os.Open(cfg.File)
	if err != nil {
		return fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	elections, err := parseFixture(f)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.File, err)
	}

	mirror, err := bootstrap.OpenMirror(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := mirror.Close(); err != nil {
			logger.Warn("close mirror", zap.Error(err))
		}
	}()

	for _, e := range elections {
		if err := mirror.SaveElection(ctx, e); err != nil {
			return err
		}
		candidates := 0
		for _, p := range e.Positions {
			candidates += len(p.Candidates)
		}
		logger.Info("election loaded",
			zap.String("election", e.Code),
			zap.Int("positions", len(e.Positions)),
			zap.Int("candidates", candidates),
		)
	}
	return nil
}
