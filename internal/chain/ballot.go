package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/goodnatureofminers/electionledger-backend/internal/codec"
)

// ErrArrayLengthMismatch is returned when parallel ballot arrays differ in length.
var ErrArrayLengthMismatch = errors.New("ballot arrays differ in length")

// Tally is an on-chain vote count for one candidate.
type Tally struct {
	Position  codec.Identifier
	Candidate codec.Identifier
	Votes     *big.Int
}

// Ballot is the typed binding of the ballot contract.
type Ballot struct {
	contract Contract
}

// NewBallot binds the ballot functions to contract.
func NewBallot(contract Contract) *Ballot {
	return &Ballot{contract: contract}
}

func (b *Ballot) ElectionExists(ctx context.Context, election codec.Identifier) (bool, error) {
	return b.exists(ctx, "electionExists", [32]byte(election))
}

func (b *Ballot) PositionExists(ctx context.Context, position codec.Identifier) (bool, error) {
	return b.exists(ctx, "positionExists", [32]byte(position))
}

func (b *Ballot) CandidateExists(ctx context.Context, position, candidate codec.Identifier) (bool, error) {
	return b.exists(ctx, "candidateExists", [32]byte(position), [32]byte(candidate))
}

func (b *Ballot) AddElection(ctx context.Context, election codec.Identifier) (*Submission, error) {
	return b.contract.Submit(ctx, "addElection", [32]byte(election))
}

func (b *Ballot) AddPosition(ctx context.Context, position codec.Identifier, title string, election codec.Identifier) (*Submission, error) {
	return b.contract.Submit(ctx, "addPosition", [32]byte(position), title, [32]byte(election))
}

func (b *Ballot) AddCandidate(ctx context.Context, position, candidate codec.Identifier, name string) (*Submission, error) {
	return b.contract.Submit(ctx, "addCandidate", [32]byte(position), [32]byte(candidate), name)
}

func (b *Ballot) Vote(ctx context.Context, position, candidate, receipt codec.Identifier) (*Submission, error) {
	return b.contract.Submit(ctx, "vote", [32]byte(position), [32]byte(candidate), [32]byte(receipt))
}

// VoteBatch casts every line in one transaction. The three slices are parallel.
func (b *Ballot) VoteBatch(ctx context.Context, positions, candidates, receipts []codec.Identifier) (*Submission, error) {
	if len(positions) != len(candidates) || len(positions) != len(receipts) {
		return nil, fmt.Errorf("%w: %d positions, %d candidates, %d receipts",
			ErrArrayLengthMismatch, len(positions), len(candidates), len(receipts))
	}
	return b.contract.Submit(ctx, "voteBatch", raw(positions), raw(candidates), raw(receipts))
}

// GetResults returns the on-chain tallies of one position.
func (b *Ballot) GetResults(ctx context.Context, position codec.Identifier) ([]Tally, error) {
	out, err := b.contract.Call(ctx, "getResults", [32]byte(position))
	if err != nil {
		return nil, err
	}
	if len(out) != 2 {
		return nil, fmt.Errorf("getResults: unexpected %d outputs", len(out))
	}
	candidates, ok := out[0].([][32]byte)
	if !ok {
		return nil, fmt.Errorf("getResults: candidates have type %T", out[0])
	}
	counts, ok := out[1].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("getResults: counts have type %T", out[1])
	}
	if len(candidates) != len(counts) {
		return nil, fmt.Errorf("getResults: %w", ErrArrayLengthMismatch)
	}

	tallies := make([]Tally, 0, len(candidates))
	for i := range candidates {
		tallies = append(tallies, Tally{
			Position:  position,
			Candidate: codec.Identifier(candidates[i]),
			Votes:     counts[i],
		})
	}
	return tallies, nil
}

// GetBallotResults returns the on-chain tallies of every position of an election.
func (b *Ballot) GetBallotResults(ctx context.Context, election codec.Identifier) ([]Tally, error) {
	out, err := b.contract.Call(ctx, "getBallotResults", [32]byte(election))
	if err != nil {
		return nil, err
	}
	if len(out) != 3 {
		return nil, fmt.Errorf("getBallotResults: unexpected %d outputs", len(out))
	}
	positions, ok := out[0].([][32]byte)
	if !ok {
		return nil, fmt.Errorf("getBallotResults: positions have type %T", out[0])
	}
	candidates, ok := out[1].([][32]byte)
	if !ok {
		return nil, fmt.Errorf("getBallotResults: candidates have type %T", out[1])
	}
	counts, ok := out[2].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("getBallotResults: counts have type %T", out[2])
	}
	if len(positions) != len(candidates) || len(positions) != len(counts) {
		return nil, fmt.Errorf("getBallotResults: %w", ErrArrayLengthMismatch)
	}

	tallies := make([]Tally, 0, len(positions))
	for i := range positions {
		tallies = append(tallies, Tally{
			Position:  codec.Identifier(positions[i]),
			Candidate: codec.Identifier(candidates[i]),
			Votes:     counts[i],
		})
	}
	return tallies, nil
}

func (b *Ballot) exists(ctx context.Context, function string, args ...interface{}) (bool, error) {
	out, err := b.contract.Call(ctx, function, args...)
	if err != nil {
		return false, err
	}
	if len(out) != 1 {
		return false, fmt.Errorf("%s: unexpected %d outputs", function, len(out))
	}
	ok, isBool := out[0].(bool)
	if !isBool {
		return false, fmt.Errorf("%s: result has type %T", function, out[0])
	}
	return ok, nil
}

func raw(ids []codec.Identifier) [][32]byte {
	out := make([][32]byte, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
