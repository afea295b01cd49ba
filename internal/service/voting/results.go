package voting

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/electionledger-backend/internal/chain"
	"github.com/goodnatureofminers/electionledger-backend/internal/codec"
	"github.com/goodnatureofminers/electionledger-backend/internal/model"
	"github.com/goodnatureofminers/electionledger-backend/pkg/safe"
	"github.com/shopspring/decimal"
)

// ElectionResults are the local tallies of an election.
type ElectionResults struct {
	ElectionCode     string
	ElectionTitle    string
	TotalVotesCast   int64
	TotalVotesSynced int64
	PercentSynced    float64
	Positions        []PositionResults
}

// PositionResults are the tallies of one position.
type PositionResults struct {
	Code       string
	Title      string
	TotalVotes int64
	Candidates []CandidateResult
}

// CandidateResult is one candidate's share of a position. Every candidate
// tied at the highest non-zero count is a winner.
type CandidateResult struct {
	Code     string
	FullName string
	Votes    int64
	Percent  float64
	IsWinner bool
}

// ChainTally is an on-chain count with decoded codes.
type ChainTally struct {
	PositionCode  string
	CandidateCode string
	Votes         uint64
}

// Results tallies the local mirror. A non-empty positionCode restricts the
// result to that position.
func (s *Service) Results(ctx context.Context, electionCode, positionCode string) (*ElectionResults, error) {
	election, err := s.repo.ElectionByCode(ctx, electionCode)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.ElectionCounts(ctx, election.ID)
	if err != nil {
		return nil, err
	}

	out := &ElectionResults{
		ElectionCode:     election.Code,
		ElectionTitle:    election.Title,
		TotalVotesCast:   counts.Cast,
		TotalVotesSynced: counts.Synced,
		PercentSynced:    percent(counts.Synced, counts.Cast),
	}
	for _, position := range election.Positions {
		if positionCode != "" && position.Code != positionCode {
			continue
		}
		candidates, err := s.repo.CandidateCounts(ctx, position.ID)
		if err != nil {
			return nil, err
		}
		out.Positions = append(out.Positions, positionResults(position, candidates))
	}
	if positionCode != "" && len(out.Positions) == 0 {
		return nil, fmt.Errorf("position %q in election %q: %w", positionCode, electionCode, model.ErrNotFound)
	}
	return out, nil
}

func positionResults(position model.Position, counts []model.CandidateCount) PositionResults {
	var total, best int64
	for _, c := range counts {
		total += c.Votes
		if c.Votes > best {
			best = c.Votes
		}
	}
	res := PositionResults{
		Code:       position.Code,
		Title:      position.Title,
		TotalVotes: total,
		Candidates: make([]CandidateResult, len(counts)),
	}
	for i, c := range counts {
		res.Candidates[i] = CandidateResult{
			Code:     c.Code,
			FullName: c.FullName,
			Votes:    c.Votes,
			Percent:  percent(c.Votes, total),
			IsWinner: best > 0 && c.Votes == best,
		}
	}
	return res
}

// percent is part/total*100 rounded half away from zero to 2 places.
func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(total), 2).
		InexactFloat64()
}

// ChainResults reads a position's tally straight from the ledger.
func (s *Service) ChainResults(ctx context.Context, positionCode string) ([]ChainTally, error) {
	position, err := codec.Encode(positionCode)
	if err != nil {
		return nil, invalid("position code: %v", err)
	}
	tallies, err := s.ledger.GetResults(ctx, position)
	if err != nil {
		return nil, fmt.Errorf("chain results of %q: %w", positionCode, err)
	}
	return decodeTallies(tallies)
}

// ElectionChainResults reads every position tally of an election from the ledger.
func (s *Service) ElectionChainResults(ctx context.Context, electionCode string) ([]ChainTally, error) {
	election, err := codec.Encode(electionCode)
	if err != nil {
		return nil, invalid("election code: %v", err)
	}
	tallies, err := s.ledger.GetBallotResults(ctx, election)
	if err != nil {
		return nil, fmt.Errorf("chain results of election %q: %w", electionCode, err)
	}
	return decodeTallies(tallies)
}

func decodeTallies(tallies []chain.Tally) ([]ChainTally, error) {
	out := make([]ChainTally, 0, len(tallies))
	for _, t := range tallies {
		votes, err := safe.Uint64FromBig(t.Votes)
		if err != nil {
			return nil, fmt.Errorf("tally of %s: %w", codec.Decode(t.Candidate), err)
		}
		out = append(out, ChainTally{
			PositionCode:  codec.Decode(t.Position),
			CandidateCode: codec.Decode(t.Candidate),
			Votes:         votes,
		})
	}
	return out, nil
}
