// Package projector makes off-chain elections, positions and candidates exist
// on the ledger exactly once and mirrors that back into the local sync flags.
package projector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/chain"
	"github.com/goodnatureofminers/electionledger-backend/internal/clock"
	"go.uber.org/zap"
)

const (
	DefaultTxCap       = 200
	defaultReadWorkers = 8

	entityElection  = "election"
	entityPosition  = "position"
	entityCandidate = "candidate"
)

var (
	// ErrParentNotSynced means the parent entity is not on the ledger yet.
	ErrParentNotSynced = errors.New("parent entity not synced to ledger")
	// ErrParentMismatch means a code was supplied under the wrong parent.
	ErrParentMismatch = errors.New("entity belongs to a different parent")

	errBudgetExhausted = errors.New("write budget exhausted")
)

// Outcome tells whether an ensure call wrote to the ledger.
type Outcome int

const (
	// Created means a transaction created the entity.
	Created Outcome = iota + 1
	// AlreadyExists means the entity was already on the ledger.
	AlreadyExists
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case AlreadyExists:
		return "exists"
	default:
		return "unknown"
	}
}

// Config tunes a Projector.
type Config struct {
	// TxCap bounds the write transactions of one SyncElection call.
	TxCap int
	// ReadWorkers bounds concurrent existence reads.
	ReadWorkers int
}

// Projector projects mirror entities onto the ledger.
type Projector struct {
	ledger      Ledger
	repo        Repository
	metrics     Metrics
	clock       clock.Clock
	logger      *zap.Logger
	txCap       int
	readWorkers int
}

// New builds a Projector.
func New(ledger Ledger, repo Repository, metrics Metrics, clk clock.Clock, cfg Config, logger *zap.Logger) (*Projector, error) {
	if ledger == nil {
		return nil, errors.New("projector ledger is required")
	}
	if repo == nil {
		return nil, errors.New("projector repository is required")
	}
	if metrics == nil {
		return nil, errors.New("projector metrics is required")
	}
	if clk == nil {
		clk = clock.System{}
	}
	if cfg.TxCap <= 0 {
		cfg.TxCap = DefaultTxCap
	}
	if cfg.ReadWorkers <= 0 {
		cfg.ReadWorkers = defaultReadWorkers
	}
	return &Projector{
		ledger:      ledger,
		repo:        repo,
		metrics:     metrics,
		clock:       clk,
		logger:      logger.Named("projector"),
		txCap:       cfg.TxCap,
		readWorkers: cfg.ReadWorkers,
	}, nil
}

// ensureOp is one entity to make present on the ledger.
type ensureOp struct {
	entity string
	code   string
	// synced is the local flag; marking is skipped when already set.
	synced bool
	// known short-circuits the existence read when set.
	known  *bool
	exists func(context.Context) (bool, error)
	parent func(context.Context) (bool, error)
	create func(context.Context) (*chain.Submission, error)
	mark   func(context.Context, time.Time) error
}

func (p *Projector) ensure(ctx context.Context, op ensureOp, budget *writeBudget) (outcome Outcome, err error) {
	defer func() {
		p.metrics.ObserveEnsure(op.entity, outcomeLabel(outcome, err))
	}()

	var present bool
	if op.known != nil {
		present = *op.known
	} else if present, err = op.exists(ctx); err != nil {
		return 0, fmt.Errorf("check %s %q: %w", op.entity, op.code, err)
	}
	if present {
		return AlreadyExists, p.markSynced(ctx, op)
	}

	if op.parent != nil {
		ok, err := op.parent(ctx)
		if err != nil {
			return 0, fmt.Errorf("check parent of %s %q: %w", op.entity, op.code, err)
		}
		if !ok {
			return 0, fmt.Errorf("%s %q: %w", op.entity, op.code, ErrParentNotSynced)
		}
	}

	if !budget.take() {
		return 0, errBudgetExhausted
	}

	sub, err := op.create(ctx)
	if err != nil {
		var revert *chain.RevertError
		if errors.As(err, &revert) {
			// Another writer may have created it since the read.
			if again, readErr := op.exists(ctx); readErr == nil && again {
				return AlreadyExists, p.markSynced(ctx, op)
			}
		}
		return 0, fmt.Errorf("create %s %q: %w", op.entity, op.code, err)
	}

	p.logger.Info("entity written to ledger",
		zap.String("entity", op.entity),
		zap.String("code", op.code),
		zap.String("tx_hash", sub.TxHash.Hex()),
	)
	return Created, p.markSynced(ctx, op)
}

func (p *Projector) markSynced(ctx context.Context, op ensureOp) error {
	if op.synced {
		return nil
	}
	if err := op.mark(ctx, p.clock.Now()); err != nil {
		return fmt.Errorf("mark %s %q synced: %w", op.entity, op.code, err)
	}
	return nil
}

func outcomeLabel(o Outcome, err error) string {
	switch {
	case errors.Is(err, errBudgetExhausted):
		return "deferred"
	case err != nil:
		return "error"
	default:
		return o.String()
	}
}

// writeBudget counts write transactions. A nil budget is unlimited.
type writeBudget struct {
	limit int
	used  int
}

func (b *writeBudget) take() bool {
	if b == nil {
		return true
	}
	if b.used >= b.limit {
		return false
	}
	b.used++
	return true
}

func (b *writeBudget) spent() int {
	if b == nil {
		return 0
	}
	return b.used
}
