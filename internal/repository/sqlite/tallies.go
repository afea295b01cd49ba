package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/model"
)

// CandidateCounts returns every candidate of a position with its local vote
// count, zero included, ordered by candidate id. Votes whose transaction
// failed on the ledger are not counted.
func (r *Repository) CandidateCounts(ctx context.Context, positionID uint) (counts []model.CandidateCount, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("candidate_counts", err, started)
	}()

	err = r.db.WithContext(ctx).
		Table("candidates").
		Select("candidates.id AS candidate_id, candidates.code AS code, candidates.full_name AS full_name, COUNT(votes.id) AS votes").
		Joins("LEFT JOIN votes ON votes.candidate_id = candidates.id AND votes.status <> ?", model.VoteStatusFailed).
		Where("candidates.position_id = ?", positionID).
		Group("candidates.id, candidates.code, candidates.full_name").
		Order("candidates.id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("candidate counts of position %d: %w", positionID, translate(err))
	}
	return counts, nil
}

// ElectionCounts returns the votes cast in an election, failed transactions
// excluded, and how many of them are confirmed on the ledger.
func (r *Repository) ElectionCounts(ctx context.Context, electionID uint) (counts model.ElectionCounts, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("election_counts", err, started)
	}()

	var row struct {
		TotalCast   int64
		TotalSynced int64
	}
	err = r.db.WithContext(ctx).
		Table("votes").
		Select("COUNT(*) AS total_cast, COALESCE(SUM(CASE WHEN tx_hash <> '' AND status = ? THEN 1 ELSE 0 END), 0) AS total_synced", model.VoteStatusSuccess).
		Where("election_id = ? AND status <> ?", electionID, model.VoteStatusFailed).
		Scan(&row).Error
	if err != nil {
		return model.ElectionCounts{}, fmt.Errorf("election counts %d: %w", electionID, translate(err))
	}
	return model.ElectionCounts{Cast: row.TotalCast, Synced: row.TotalSynced}, nil
}
