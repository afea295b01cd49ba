// Package bootstrap holds the flag groups and wiring shared by the binaries.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goodnatureofminers/electionledger-backend/internal/chain"
	"github.com/goodnatureofminers/electionledger-backend/internal/journal"
	"github.com/goodnatureofminers/electionledger-backend/internal/metrics"
	"github.com/goodnatureofminers/electionledger-backend/internal/repository/clickhouse"
	"github.com/goodnatureofminers/electionledger-backend/internal/repository/sqlite"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// LogOptions selects the logger encoding.
type LogOptions struct {
	JSON bool `long:"log-json" env:"ELECTIONLEDGER_LOG_JSON" description:"log JSON lines instead of console output"`
}

// ChainOptions configures the ledger node connection and the signer.
type ChainOptions struct {
	RPCURL             string        `long:"rpc-url" env:"ELECTIONLEDGER_RPC_URL" description:"ledger node JSON-RPC URL" required:"true"`
	ChainID            int64         `long:"chain-id" env:"ELECTIONLEDGER_CHAIN_ID" description:"expected chain id" required:"true"`
	Contract           string        `long:"contract" env:"ELECTIONLEDGER_CONTRACT" description:"ballot contract address" required:"true"`
	ABIPath            string        `long:"abi" env:"ELECTIONLEDGER_ABI" description:"contract ABI or build artifact; the built-in ABI when empty"`
	PrivateKey         string        `long:"private-key" env:"ELECTIONLEDGER_PRIVATE_KEY" description:"signer private key in hex; set it through the environment"`
	Wallet             string        `long:"wallet" env:"ELECTIONLEDGER_WALLET" description:"signer address, checked against the private key"`
	ReceiptTimeout     time.Duration `long:"receipt-timeout" env:"ELECTIONLEDGER_RECEIPT_TIMEOUT" description:"how long to wait for a transaction to mine" default:"60s"`
	PollInterval       time.Duration `long:"poll-interval" env:"ELECTIONLEDGER_POLL_INTERVAL" description:"receipt poll interval" default:"5s"`
	GasLimitMultiplier float64       `long:"gas-limit-multiplier" env:"ELECTIONLEDGER_GAS_LIMIT_MULTIPLIER" description:"headroom applied to estimated gas" default:"1.2"`
	GasPriceMultiplier float64       `long:"gas-price-multiplier" env:"ELECTIONLEDGER_GAS_PRICE_MULTIPLIER" description:"multiplier applied to the suggested gas price" default:"1.4"`
	MinGasPriceWei     string        `long:"min-gas-price" env:"ELECTIONLEDGER_MIN_GAS_PRICE" description:"gas price floor in wei"`
	QueueSize          int           `long:"submit-queue" env:"ELECTIONLEDGER_SUBMIT_QUEUE" description:"pending submissions buffered for the signer" default:"64"`
}

// StorageOptions locates the relational mirror and the ledger journal.
type StorageOptions struct {
	SQLitePath    string `long:"sqlite-path" env:"ELECTIONLEDGER_SQLITE_PATH" description:"relational mirror database file" default:"electionledger.db"`
	ClickhouseDSN string `long:"clickhouse-dsn" env:"ELECTIONLEDGER_CLICKHOUSE_DSN" description:"ledger journal DSN; journal disabled when empty"`
}

// ParseFlags fills cfg from os.Args and the environment. It reports false
// when --help was requested. Parse errors are already printed to stderr.
func ParseFlags(cfg any) (bool, error) {
	if _, err := flags.ParseArgs(cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NewLogger builds the process logger.
func NewLogger(opts LogOptions) (*zap.Logger, error) {
	if opts.JSON {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// StartMetricsServer serves /metrics on addr until ctx is done.
func StartMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}

// OpenMirror opens the relational mirror.
func OpenMirror(opts StorageOptions) (*sqlite.Repository, error) {
	repo, err := sqlite.Open(opts.SQLitePath, metrics.NewSQLiteRepository())
	if err != nil {
		return nil, fmt.Errorf("open mirror: %w", err)
	}
	return repo, nil
}

// Journal is the started ledger journal and its store. Both are nil when no
// ClickHouse DSN is configured.
type Journal struct {
	Writer *journal.Journal
	Store  *clickhouse.Repository
}

// StartJournal connects to ClickHouse and starts the batching writer.
func StartJournal(ctx context.Context, opts StorageOptions, logger *zap.Logger) (*Journal, error) {
	if opts.ClickhouseDSN == "" {
		logger.Info("ledger journal disabled")
		return &Journal{}, nil
	}
	store, err := clickhouse.NewRepository(opts.ClickhouseDSN, metrics.NewClickhouseRepository())
	if err != nil {
		return nil, fmt.Errorf("init journal repository: %w", err)
	}
	w := journal.New(store, journal.Config{}, logger)
	w.Start(ctx)
	return &Journal{Writer: w, Store: store}, nil
}

// Recorder returns the journal as a chain event recorder, or nil.
func (j *Journal) Recorder() chain.EventRecorder {
	if j.Writer == nil {
		return nil
	}
	return j.Writer
}

// Close flushes buffered events and closes the store.
func (j *Journal) Close(logger *zap.Logger) {
	if j.Writer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := j.Writer.Close(ctx); err != nil {
		logger.Warn("journal flush incomplete", zap.Error(err))
	}
	if err := j.Store.Close(); err != nil {
		logger.Warn("close journal repository", zap.Error(err))
	}
}

// Ledger is a connected, started chain client.
type Ledger struct {
	Client *chain.Client
	close  func()
}

// Close stops the send loop and drops the node connection.
func (l *Ledger) Close() {
	l.close()
}

// ConnectLedger dials the node, checks the signer and starts the submission loop.
func ConnectLedger(ctx context.Context, opts ChainOptions, recorder chain.EventRecorder, logger *zap.Logger) (*Ledger, error) {
	if !common.IsHexAddress(opts.Contract) {
		return nil, fmt.Errorf("%w: invalid contract address %q", chain.ErrContractUnavailable, opts.Contract)
	}
	key, from, err := chain.ParseSigner(opts.PrivateKey, opts.Wallet)
	if err != nil {
		return nil, err
	}
	contractABI, err := chain.LoadABI(opts.ABIPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", chain.ErrContractUnavailable, err)
	}
	var minGasPrice *big.Int
	if opts.MinGasPriceWei != "" {
		v, ok := new(big.Int).SetString(opts.MinGasPriceWei, 10)
		if !ok || v.Sign() < 0 {
			return nil, fmt.Errorf("invalid min gas price %q", opts.MinGasPriceWei)
		}
		minGasPrice = v
	}

	chainID := big.NewInt(opts.ChainID)
	eth, err := chain.Dial(ctx, opts.RPCURL, chainID)
	if err != nil {
		return nil, err
	}
	observed := chain.NewObservedClient(eth, metrics.NewChainRPC(chainID.String()))
	client, err := chain.New(observed, contractABI, key, chain.Config{
		ChainID:            chainID,
		Contract:           common.HexToAddress(opts.Contract),
		ReceiptTimeout:     opts.ReceiptTimeout,
		PollInterval:       opts.PollInterval,
		GasLimitMultiplier: opts.GasLimitMultiplier,
		GasPriceMultiplier: opts.GasPriceMultiplier,
		MinGasPrice:        minGasPrice,
		QueueSize:          opts.QueueSize,
	}, recorder, metrics.NewSubmissions(), logger.Named("chain"))
	if err != nil {
		eth.Close()
		return nil, err
	}
	client.Start(ctx)
	logger.Info("ledger connected",
		zap.String("chain_id", chainID.String()),
		zap.String("signer", from.Hex()),
		zap.String("contract", opts.Contract),
	)
	return &Ledger{
		Client: client,
		close: func() {
			client.Close()
			eth.Close()
		},
	}, nil
}
