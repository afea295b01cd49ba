package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VoteExists reports whether the voter already has a vote for the position.
func (r *Repository) VoteExists(ctx context.Context, voterDigest string, positionID uint) (exists bool, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("vote_exists", err, started)
	}()

	var count int64
	err = r.db.WithContext(ctx).
		Model(&model.Vote{}).
		Where("voter_digest = ? AND position_id = ?", voterDigest, positionID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count votes: %w", translate(err))
	}
	return count > 0, nil
}

// CreateVotes inserts all votes atomically. A uniqueness violation on the
// voter/position pair or the receipt yields model.ErrDuplicate.
func (r *Repository) CreateVotes(ctx context.Context, votes []model.Vote) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("create_votes", err, started)
	}()

	if len(votes) == 0 {
		return nil
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Position", "Candidate", "Election").Create(&votes).Error
	})
	if err != nil {
		return fmt.Errorf("insert votes: %w", translate(err))
	}
	return nil
}

// UpdateVoteEnrichment applies block metadata to a pending vote. It reports
// false when the vote was already enriched.
func (r *Repository) UpdateVoteEnrichment(ctx context.Context, id string, e model.Enrichment) (updated bool, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("update_vote_enrichment", err, started)
	}()

	res := r.db.WithContext(ctx).
		Model(&model.Vote{}).
		Where("id = ? AND status = ?", id, model.VoteStatusPending).
		Updates(map[string]interface{}{
			"status":          e.Status,
			"block_number":    e.BlockNumber,
			"confirmations":   e.Confirmations,
			"block_timestamp": e.BlockTimestamp.UTC(),
			"network_fee":     decimal.NewNullDecimal(e.NetworkFee),
		})
	if res.Error != nil {
		return false, fmt.Errorf("update vote %s: %w", id, translate(res.Error))
	}
	return res.RowsAffected > 0, nil
}

// PendingVotes returns up to limit votes awaiting enrichment, oldest first.
func (r *Repository) PendingVotes(ctx context.Context, limit int) (votes []model.Vote, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("pending_votes", err, started)
	}()

	err = r.db.WithContext(ctx).
		Where("status = ?", model.VoteStatusPending).
		Order("created_at").
		Limit(limit).
		Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("pending votes: %w", translate(err))
	}
	return votes, nil
}

// VoteByReceipt loads a vote with its election, position and candidate.
func (r *Repository) VoteByReceipt(ctx context.Context, receipt string) (vote *model.Vote, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("vote_by_receipt", err, started)
	}()

	var row model.Vote
	err = r.db.WithContext(ctx).
		Preload("Election").
		Preload("Position").
		Preload("Candidate").
		Where("receipt = ?", receipt).
		First(&row).Error
	if err != nil {
		return nil, fmt.Errorf("vote by receipt: %w", translate(err))
	}
	return &row, nil
}

// VotesByVoter lists a voter's votes, newest first.
func (r *Repository) VotesByVoter(ctx context.Context, voterDigest string) (votes []model.Vote, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("votes_by_voter", err, started)
	}()

	err = r.db.WithContext(ctx).
		Preload("Election").
		Preload("Position").
		Preload("Candidate").
		Where("voter_digest = ?", voterDigest).
		Order("created_at DESC").
		Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("votes by voter: %w", translate(err))
	}
	return votes, nil
}
