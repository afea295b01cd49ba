package projector

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/chain"
	"github.com/goodnatureofminers/electionledger-backend/internal/codec"
	"github.com/goodnatureofminers/electionledger-backend/internal/model"
)

// EnsureElection makes the election with code present on the ledger.
func (p *Projector) EnsureElection(ctx context.Context, code string) (Outcome, error) {
	election, err := p.repo.ElectionByCode(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("load election: %w", err)
	}
	op, err := p.electionOp(election)
	if err != nil {
		return 0, err
	}
	return p.ensure(ctx, op, nil)
}

// EnsurePosition makes a position present on the ledger under its election.
// The election must already be on the ledger.
func (p *Projector) EnsurePosition(ctx context.Context, code, title, electionCode string) (Outcome, error) {
	position, err := p.repo.PositionByCode(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("load position: %w", err)
	}
	if position.Election == nil || position.Election.Code != electionCode {
		return 0, fmt.Errorf("position %q under election %q: %w", code, electionCode, ErrParentMismatch)
	}
	if title != "" {
		position.Title = title
	}

	op, err := p.positionOp(position, electionCode)
	if err != nil {
		return 0, err
	}
	electionID, err := codec.Encode(electionCode)
	if err != nil {
		return 0, fmt.Errorf("election %q: %w", electionCode, err)
	}
	op.parent = func(ctx context.Context) (bool, error) {
		return p.ledger.ElectionExists(ctx, electionID)
	}
	return p.ensure(ctx, op, nil)
}

// EnsureCandidate makes a candidate present on the ledger under its position.
// The position must already be on the ledger.
func (p *Projector) EnsureCandidate(ctx context.Context, positionCode, code, name string) (Outcome, error) {
	candidate, err := p.repo.CandidateByCode(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("load candidate: %w", err)
	}
	if candidate.Position == nil || candidate.Position.Code != positionCode {
		return 0, fmt.Errorf("candidate %q under position %q: %w", code, positionCode, ErrParentMismatch)
	}
	if name != "" {
		candidate.FullName = name
	}

	op, err := p.candidateOp(candidate, positionCode)
	if err != nil {
		return 0, err
	}
	positionID, err := codec.Encode(positionCode)
	if err != nil {
		return 0, fmt.Errorf("position %q: %w", positionCode, err)
	}
	op.parent = func(ctx context.Context) (bool, error) {
		return p.ledger.PositionExists(ctx, positionID)
	}
	return p.ensure(ctx, op, nil)
}

func (p *Projector) electionOp(e *model.Election) (ensureOp, error) {
	id, err := codec.Encode(e.Code)
	if err != nil {
		return ensureOp{}, fmt.Errorf("election %q: %w", e.Code, err)
	}
	return ensureOp{
		entity: entityElection,
		code:   e.Code,
		synced: e.IsSynced,
		exists: func(ctx context.Context) (bool, error) {
			return p.ledger.ElectionExists(ctx, id)
		},
		create: func(ctx context.Context) (*chain.Submission, error) {
			return p.ledger.AddElection(ctx, id)
		},
		mark: func(ctx context.Context, at time.Time) error {
			return p.repo.MarkElectionSynced(ctx, e.ID, at)
		},
	}, nil
}

func (p *Projector) positionOp(pos *model.Position, electionCode string) (ensureOp, error) {
	id, err := codec.Encode(pos.Code)
	if err != nil {
		return ensureOp{}, fmt.Errorf("position %q: %w", pos.Code, err)
	}
	electionID, err := codec.Encode(electionCode)
	if err != nil {
		return ensureOp{}, fmt.Errorf("election %q: %w", electionCode, err)
	}
	return ensureOp{
		entity: entityPosition,
		code:   pos.Code,
		synced: pos.IsSynced,
		exists: func(ctx context.Context) (bool, error) {
			return p.ledger.PositionExists(ctx, id)
		},
		create: func(ctx context.Context) (*chain.Submission, error) {
			return p.ledger.AddPosition(ctx, id, pos.Title, electionID)
		},
		mark: func(ctx context.Context, at time.Time) error {
			return p.repo.MarkPositionSynced(ctx, pos.ID, at)
		},
	}, nil
}

func (p *Projector) candidateOp(c *model.Candidate, positionCode string) (ensureOp, error) {
	id, err := codec.Encode(c.Code)
	if err != nil {
		return ensureOp{}, fmt.Errorf("candidate %q: %w", c.Code, err)
	}
	positionID, err := codec.Encode(positionCode)
	if err != nil {
		return ensureOp{}, fmt.Errorf("position %q: %w", positionCode, err)
	}
	return ensureOp{
		entity: entityCandidate,
		code:   c.Code,
		synced: c.IsSynced,
		exists: func(ctx context.Context) (bool, error) {
			return p.ledger.CandidateExists(ctx, positionID, id)
		},
		create: func(ctx context.Context) (*chain.Submission, error) {
			return p.ledger.AddCandidate(ctx, positionID, id, c.FullName)
		},
		mark: func(ctx context.Context, at time.Time) error {
			return p.repo.MarkCandidateSynced(ctx, c.ID, at)
		},
	}, nil
}
