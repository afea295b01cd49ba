package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/bootstrap"
	"github.com/goodnatureofminers/electionledger-backend/internal/chain"
	"github.com/goodnatureofminers/electionledger-backend/internal/clock"
	"github.com/goodnatureofminers/electionledger-backend/internal/eligibility"
	"github.com/goodnatureofminers/electionledger-backend/internal/metrics"
	"github.com/goodnatureofminers/electionledger-backend/internal/service/projector"
	"github.com/goodnatureofminers/electionledger-backend/internal/service/reconcile"
	"github.com/goodnatureofminers/electionledger-backend/internal/service/voting"
	"github.com/goodnatureofminers/electionledger-backend/internal/transport/rest"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type config struct {
	Addr        string   `long:"addr" env:"ELECTIONLEDGER_API_ADDR" description:"REST listen address" default:":8000"`
	TxCap       int      `long:"tx-cap" env:"ELECTIONLEDGER_SYNC_TX_CAP" description:"write transactions per sync request" default:"200"`
	CORSOrigins []string `long:"cors-origin" env:"ELECTIONLEDGER_CORS_ORIGINS" env-delim:"," description:"allowed CORS origins; any when empty"`

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
		logger.Fatal("api failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	// The signer loop and the journal outlive the signal until the server has
	// drained; the deferred closes below stop them after serve returns.
	background, stopBackground := context.WithCancel(context.WithoutCancel(ctx))
	defer stopBackground()

	mirror, err := bootstrap.OpenMirror(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := mirror.Close(); err != nil {
			logger.Warn("close mirror", zap.Error(err))
		}
	}()

	journal, err := bootstrap.StartJournal(background, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer journal.Close(logger)

	ledger, err := bootstrap.ConnectLedger(background, cfg.Chain, journal.Recorder(), logger)
	if err != nil {
		return fmt.Errorf("connect ledger: %w", err)
	}
	defer ledger.Close()

	ballot := chain.NewBallot(ledger.Client)
	enricher, err := reconcile.New(ledger.Client, mirror, metrics.NewReconciler(), reconcile.Config{}, logger)
	if err != nil {
		return err
	}
	votes, err := voting.New(ballot, mirror, eligibility.NewRules(), enricher, metrics.NewVoting(), clock.System{}, logger)
	if err != nil {
		return err
	}
	proj, err := projector.New(ballot, mirror, metrics.NewProjector(), clock.System{}, projector.Config{TxCap: cfg.TxCap}, logger)
	if err != nil {
		return err
	}

	checks := map[string]rest.Pinger{"ledger": ledger.Client, "mirror": mirror}
	var events rest.LedgerEvents
	if journal.Store != nil {
		events = journal.Store
		checks["journal"] = journal.Store
	}
	handler, err := rest.NewHandler(votes, proj, events, checks, logger)
	if err != nil {
		return err
	}

	router := handler.Router()
	router.Handle("/metrics", promhttp.Handler())

	corsOpts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID", "X-Voter-DID", "X-Voter-Level", "X-Voter-Department", "X-Voter-Gender"},
	}
	if len(cfg.CORSOrigins) > 0 {
		corsOpts.AllowedOrigins = cfg.CORSOrigins
	}

	// a cast can wait the full receipt timeout
	requestTimeout := cfg.Chain.ReceiptTimeout + 30*time.Second
	s := &http.Server{
		Handler:           cors.New(corsOpts).Handler(router),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      requestTimeout,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
	return serve(ctx, s, ln, requestTimeout, logger)
}
