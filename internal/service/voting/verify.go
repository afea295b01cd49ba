package voting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/codec"
	"github.com/goodnatureofminers/electionledger-backend/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Verification describes the vote behind a receipt.
type Verification struct {
	Receipt        string
	TxHash         string
	Status         model.VoteStatus
	ElectionTitle  string
	PositionTitle  string
	CandidateName  string
	BlockNumber    *uint64
	Confirmations  *uint64
	BlockTimestamp *time.Time
	NetworkFee     decimal.NullDecimal
}

// HistoryEntry is one of the voter's own votes.
type HistoryEntry struct {
	ElectionCode  string
	ElectionTitle string
	PositionCode  string
	PositionTitle string
	CandidateCode string
	CandidateName string
	Receipt       string
	TxHash        string
	Status        model.VoteStatus
	CastAt        time.Time
}

// Verify looks a vote up by receipt. A vote still pending is enriched on the
// spot when its transaction has mined since.
func (s *Service) Verify(ctx context.Context, receipt string) (*Verification, error) {
	if receipt == "" {
		return nil, invalid("receipt is required")
	}
	parsed, err := codec.ParseReceipt(receipt)
	if err != nil {
		return nil, fmt.Errorf("receipt %q: %w", receipt, model.ErrNotFound)
	}
	vote, err := s.repo.VoteByReceipt(ctx, parsed.String())
	if err != nil {
		return nil, err
	}
	if vote.Status == model.VoteStatusPending && s.enricher != nil {
		s.refresh(ctx, vote)
	}
	return verification(vote), nil
}

func (s *Service) refresh(ctx context.Context, vote *model.Vote) {
	applied, err := s.enricher.Enrich(ctx, []model.Vote{*vote})
	if err != nil {
		s.logger.Debug("pending vote not enriched", zap.String("tx_hash", vote.TxHash), zap.Error(err))
	}
	e, ok := applied[vote.ID]
	if !ok {
		return
	}
	blockNumber, confirmations, blockTime := e.BlockNumber, e.Confirmations, e.BlockTimestamp
	vote.Status = e.Status
	vote.BlockNumber = &blockNumber
	vote.Confirmations = &confirmations
	vote.BlockTimestamp = &blockTime
	vote.NetworkFee = decimal.NewNullDecimal(e.NetworkFee)
}

func verification(v *model.Vote) *Verification {
	out := &Verification{
		Receipt:        v.Receipt,
		TxHash:         v.TxHash,
		Status:         v.Status,
		BlockNumber:    v.BlockNumber,
		Confirmations:  v.Confirmations,
		BlockTimestamp: v.BlockTimestamp,
		NetworkFee:     v.NetworkFee,
	}
	if v.Election != nil {
		out.ElectionTitle = v.Election.Title
	}
	if v.Position != nil {
		out.PositionTitle = v.Position.Title
	}
	if v.Candidate != nil {
		out.CandidateName = v.Candidate.FullName
	}
	return out
}

// History lists the voter's votes, newest first.
func (s *Service) History(ctx context.Context, voter model.Voter) ([]HistoryEntry, error) {
	if voter.DID == "" {
		return nil, invalid("voter identity is required")
	}
	votes, err := s.repo.VotesByVoter(ctx, codec.VoterDigest(voter.DID))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]HistoryEntry, 0, len(votes))
	for _, v := range votes {
		entry := HistoryEntry{
			Receipt: v.Receipt,
			TxHash:  v.TxHash,
			Status:  v.Status,
			CastAt:  v.CreatedAt,
		}
		if v.Election != nil {
			entry.ElectionCode, entry.ElectionTitle = v.Election.Code, v.Election.Title
		}
		if v.Position != nil {
			entry.PositionCode, entry.PositionTitle = v.Position.Code, v.Position.Title
		}
		if v.Candidate != nil {
			entry.CandidateCode, entry.CandidateName = v.Candidate.Code, v.Candidate.FullName
		}
		out = append(out, entry)
	}
	return out, nil
}
