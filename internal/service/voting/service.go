// Package voting casts single votes and ballots, and answers verification,
// history and results queries.
package voting

import (
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/clock"
	"github.com/goodnatureofminers/electionledger-backend/internal/codec"
	"github.com/goodnatureofminers/electionledger-backend/pkg/keyedmutex"
	"go.uber.org/zap"
)

const enrichTimeout = 15 * time.Second

// ValidationError is a failed local precondition. No ledger call was made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// Service is the vote caster and its read side.
type Service struct {
	ledger      Ledger
	repo        Repository
	eligibility Eligibility
	enricher    Enricher
	metrics     Metrics
	clock       clock.Clock
	receipts    codec.ReceiptSource
	locks       *keyedmutex.KeyedMutex
	logger      *zap.Logger
}

// New builds a Service. enricher may be nil, in which case votes stay pending
// until the reconciler picks them up.
func New(
	ledger Ledger,
	repo Repository,
	eligibility Eligibility,
	enricher Enricher,
	metrics Metrics,
	clk clock.Clock,
	logger *zap.Logger,
) (*Service, error) {
	if ledger == nil {
		return nil, errors.New("voting ledger is required")
	}
	if repo == nil {
		return nil, errors.New("voting repository is required")
	}
	if eligibility == nil {
		return nil, errors.New("voting eligibility is required")
	}
	if metrics == nil {
		return nil, errors.New("voting metrics is required")
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		ledger:      ledger,
		repo:        repo,
		eligibility: eligibility,
		enricher:    enricher,
		metrics:     metrics,
		clock:       clk,
		receipts:    codec.RandomReceipts{},
		locks:       keyedmutex.New(),
		logger:      logger.Named("voting"),
	}, nil
}
