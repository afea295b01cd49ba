package projector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/model"
	"github.com/goodnatureofminers/electionledger-backend/pkg/workerpool"
	"go.uber.org/zap"
)

// SyncReport summarizes one SyncElection call.
type SyncReport struct {
	Election string
	// Writes is the number of write transactions attempted.
	Writes   int
	Created  int
	Existing int
	// Complete is false when the transaction cap stopped the run early;
	// calling SyncElection again continues.
	Complete bool
}

// SyncElection ensures the election, then each of its positions and their
// candidates. At most the configured tx cap of writes is issued per call.
func (p *Projector) SyncElection(ctx context.Context, code string) (report SyncReport, err error) {
	started := time.Now()
	budget := &writeBudget{limit: p.txCap}
	defer func() {
		report.Writes = budget.spent()
		p.metrics.ObserveSync(err, report.Writes, started)
	}()
	report.Election = code

	election, err := p.repo.ElectionByCode(ctx, code)
	if err != nil {
		return report, fmt.Errorf("load election: %w", err)
	}
	logger := p.logger.With(zap.String("election", code))

	op, err := p.electionOp(election)
	if err != nil {
		return report, err
	}
	if err = p.tally(ctx, &report, op, budget); err != nil {
		return p.stop(report, err, logger)
	}

	for i := range election.Positions {
		position := &election.Positions[i]
		op, err = p.positionOp(position, election.Code)
		if err != nil {
			return report, err
		}
		if err = p.tally(ctx, &report, op, budget); err != nil {
			return p.stop(report, err, logger)
		}
		if err = p.syncCandidates(ctx, &report, position, budget); err != nil {
			return p.stop(report, err, logger)
		}
	}

	report.Complete = true
	logger.Info("election synced",
		zap.Int("writes", budget.spent()),
		zap.Int("created", report.Created),
		zap.Int("existing", report.Existing),
	)
	return report, nil
}

// syncCandidates reads candidate existence concurrently, then writes the
// missing ones one by one.
func (p *Projector) syncCandidates(ctx context.Context, report *SyncReport, position *model.Position, budget *writeBudget) error {
	ops := make([]ensureOp, len(position.Candidates))
	present := make([]bool, len(position.Candidates))
	indexes := make([]int, len(position.Candidates))
	for i := range position.Candidates {
		op, err := p.candidateOp(&position.Candidates[i], position.Code)
		if err != nil {
			return err
		}
		ops[i] = op
		indexes[i] = i
	}

	err := workerpool.Process(ctx, p.readWorkers, indexes, func(ctx context.Context, i int) error {
		ok, err := ops[i].exists(ctx)
		if err != nil {
			return fmt.Errorf("check candidate %q: %w", ops[i].code, err)
		}
		present[i] = ok
		return nil
	}, nil)
	if err != nil {
		return err
	}

	for i := range ops {
		ops[i].known = &present[i]
		if err := p.tally(ctx, report, ops[i], budget); err != nil {
			return err
		}
	}
	return nil
}

func (p *Projector) tally(ctx context.Context, report *SyncReport, op ensureOp, budget *writeBudget) error {
	outcome, err := p.ensure(ctx, op, budget)
	if err != nil {
		return err
	}
	switch outcome {
	case Created:
		report.Created++
	case AlreadyExists:
		report.Existing++
	}
	return nil
}

func (p *Projector) stop(report SyncReport, err error, logger *zap.Logger) (SyncReport, error) {
	if errors.Is(err, errBudgetExhausted) {
		logger.Info("tx cap reached; sync incomplete", zap.Int("cap", p.txCap))
		return report, nil
	}
	return report, err
}
