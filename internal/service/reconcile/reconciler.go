// Package reconcile fills block metadata into votes whose transactions were
// broadcast, and flips their status from pending to success or failed.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goodnatureofminers/electionledger-backend/internal/chain"
	"github.com/goodnatureofminers/electionledger-backend/internal/clock"
	"github.com/goodnatureofminers/electionledger-backend/internal/model"
	"github.com/goodnatureofminers/electionledger-backend/pkg/safe"
	"github.com/goodnatureofminers/electionledger-backend/pkg/workerpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultBatchSize    = 100
	defaultWorkerCount  = 8
	defaultInterval     = 15 * time.Second
	defaultIdleInterval = time.Minute
	defaultMaxBackoff   = 5 * time.Minute

	// nativeDecimals converts wei to the chain's native unit.
	nativeDecimals = 18

	outcomeSuccess  = "success"
	outcomeFailed   = "failed"
	outcomeNotMined = "not_mined"
	outcomeError    = "error"
)

// ErrNotMined means the transaction has no receipt yet.
var ErrNotMined = errors.New("transaction not mined yet")

// Config tunes the reconciliation loop.
type Config struct {
	BatchSize    int
	WorkerCount  int
	Interval     time.Duration
	IdleInterval time.Duration
	// MaxBackoff caps the doubling pause after consecutive failed passes.
	MaxBackoff time.Duration
}

// Reconciler resolves pending votes against the ledger.
type Reconciler struct {
	chain        Chain
	repo         Repository
	metrics      Metrics
	logger       *zap.Logger
	sleep        clock.SleepFunc
	batchSize    int
	workerCount  int
	interval     time.Duration
	idleInterval time.Duration
	maxBackoff   time.Duration
}

// New builds a Reconciler.
func New(chain Chain, repo Repository, metrics Metrics, cfg Config, logger *zap.Logger) (*Reconciler, error) {
	if chain == nil {
		return nil, errors.New("reconciler chain is required")
	}
	if repo == nil {
		return nil, errors.New("reconciler repository is required")
	}
	if metrics == nil {
		return nil, errors.New("reconciler metrics is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaultWorkerCount
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = defaultIdleInterval
	}
	if cfg.MaxBackoff < cfg.Interval {
		cfg.MaxBackoff = max(defaultMaxBackoff, cfg.Interval)
	}
	return &Reconciler{
		chain:        chain,
		repo:         repo,
		metrics:      metrics,
		logger:       logger.Named("reconciler"),
		sleep:        clock.Sleep,
		batchSize:    cfg.BatchSize,
		workerCount:  cfg.WorkerCount,
		interval:     cfg.Interval,
		idleInterval: cfg.IdleInterval,
		maxBackoff:   cfg.MaxBackoff,
	}, nil
}

// Resolve reads the receipt and block of txHash. It returns ErrNotMined when
// no receipt exists yet.
func (r *Reconciler) Resolve(ctx context.Context, txHash string) (model.Enrichment, error) {
	if !isTxHash(txHash) {
		return model.Enrichment{}, fmt.Errorf("invalid transaction hash %q", txHash)
	}
	receipt, err := r.chain.TransactionReceipt(ctx, common.HexToHash(txHash))
	if errors.Is(err, chain.ErrReceiptNotFound) {
		return model.Enrichment{}, ErrNotMined
	}
	if err != nil {
		return model.Enrichment{}, err
	}

	block, err := safe.Uint64FromBig(receipt.BlockNumber)
	if err != nil {
		return model.Enrichment{}, fmt.Errorf("receipt block number: %w", err)
	}
	latest, err := r.chain.LatestBlock(ctx)
	if err != nil {
		return model.Enrichment{}, err
	}
	at, err := r.chain.BlockTime(ctx, block)
	if err != nil {
		return model.Enrichment{}, err
	}

	status := model.VoteStatusSuccess
	if receipt.Status != types.ReceiptStatusSuccessful {
		status = model.VoteStatusFailed
	}
	return model.Enrichment{
		Status:         status,
		BlockNumber:    block,
		Confirmations:  safe.Sub(latest, block),
		BlockTimestamp: at,
		NetworkFee:     networkFee(receipt),
	}, nil
}

// Enrich resolves the transactions of votes and stores the metadata on each
// vote still pending. The returned map holds the enrichment per vote id.
// Votes whose transaction is not mined yet are left out without error.
func (r *Reconciler) Enrich(ctx context.Context, votes []model.Vote) (map[string]model.Enrichment, error) {
	var (
		mu      sync.Mutex
		applied = make(map[string]model.Enrichment, len(votes))
	)
	err := workerpool.ForEach(ctx, r.workerCount, groupByTx(votes), func(ctx context.Context, g txGroup) error {
		e, err := r.enrichGroup(ctx, g)
		if err != nil || e == nil {
			return err
		}
		mu.Lock()
		for _, v := range g.votes {
			applied[v.ID] = *e
		}
		mu.Unlock()
		return nil
	})
	return applied, err
}

func (r *Reconciler) enrichGroup(ctx context.Context, g txGroup) (*model.Enrichment, error) {
	e, err := r.Resolve(ctx, g.txHash)
	if errors.Is(err, ErrNotMined) {
		r.metrics.ObserveEnrich(outcomeNotMined)
		return nil, nil
	}
	if err != nil {
		r.metrics.ObserveEnrich(outcomeError)
		return nil, fmt.Errorf("resolve %s: %w", g.txHash, err)
	}

	for _, v := range g.votes {
		updated, err := r.repo.UpdateVoteEnrichment(ctx, v.ID, e)
		if err != nil {
			r.metrics.ObserveEnrich(outcomeError)
			return nil, fmt.Errorf("store enrichment of vote %s: %w", v.ID, err)
		}
		if !updated {
			r.logger.Debug("vote already enriched", zap.String("vote", v.ID))
			continue
		}
		if e.Status == model.VoteStatusSuccess {
			r.metrics.ObserveEnrich(outcomeSuccess)
		} else {
			r.metrics.ObserveEnrich(outcomeFailed)
		}
	}
	return &e, nil
}

type txGroup struct {
	txHash string
	votes  []model.Vote
}

func groupByTx(votes []model.Vote) []txGroup {
	index := make(map[string]int)
	var groups []txGroup
	for _, v := range votes {
		i, ok := index[v.TxHash]
		if !ok {
			i = len(groups)
			index[v.TxHash] = i
			groups = append(groups, txGroup{txHash: v.TxHash})
		}
		groups[i].votes = append(groups[i].votes, v)
	}
	return groups
}

func networkFee(receipt *types.Receipt) decimal.Decimal {
	if receipt.EffectiveGasPrice == nil {
		return decimal.Zero
	}
	wei := new(big.Int).Mul(new(big.Int).SetUint64(receipt.GasUsed), receipt.EffectiveGasPrice)
	return decimal.NewFromBigInt(wei, -nativeDecimals)
}

func isTxHash(s string) bool {
	return len(s) == 66 && s[:2] == "0x"
}
