package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/model"
	"gorm.io/gorm"
)

// ElectionByCode loads an election with its positions and their candidates,
// each ordered by id.
func (r *Repository) ElectionByCode(ctx context.Context, code string) (election *model.Election, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("election_by_code", err, started)
	}()

	var row model.Election
	err = r.db.WithContext(ctx).
		Preload("Positions", func(db *gorm.DB) *gorm.DB { return db.Order("positions.id") }).
		Preload("Positions.Candidates", func(db *gorm.DB) *gorm.DB { return db.Order("candidates.id") }).
		Where("code = ?", code).
		First(&row).Error
	if err != nil {
		return nil, fmt.Errorf("election %q: %w", code, translate(err))
	}
	return &row, nil
}

// PositionByCode loads a position with its election.
func (r *Repository) PositionByCode(ctx context.Context, code string) (position *model.Position, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("position_by_code", err, started)
	}()

	var row model.Position
	err = r.db.WithContext(ctx).
		Preload("Election").
		Where("code = ?", code).
		First(&row).Error
	if err != nil {
		return nil, fmt.Errorf("position %q: %w", code, translate(err))
	}
	return &row, nil
}

// CandidateByCode loads a candidate with its position and election.
func (r *Repository) CandidateByCode(ctx context.Context, code string) (candidate *model.Candidate, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("candidate_by_code", err, started)
	}()

	var row model.Candidate
	err = r.db.WithContext(ctx).
		Preload("Position.Election").
		Where("code = ?", code).
		First(&row).Error
	if err != nil {
		return nil, fmt.Errorf("candidate %q: %w", code, translate(err))
	}
	return &row, nil
}

// MarkElectionSynced flags an election as present on the ledger.
func (r *Repository) MarkElectionSynced(ctx context.Context, id uint, at time.Time) error {
	return r.markSynced(ctx, "mark_election_synced", &model.Election{}, id, at)
}

// MarkPositionSynced flags a position as present on the ledger.
func (r *Repository) MarkPositionSynced(ctx context.Context, id uint, at time.Time) error {
	return r.markSynced(ctx, "mark_position_synced", &model.Position{}, id, at)
}

// MarkCandidateSynced flags a candidate as present on the ledger.
func (r *Repository) MarkCandidateSynced(ctx context.Context, id uint, at time.Time) error {
	return r.markSynced(ctx, "mark_candidate_synced", &model.Candidate{}, id, at)
}

// markSynced only touches rows that are not synced yet, so the first sync time
// is kept.
func (r *Repository) markSynced(ctx context.Context, operation string, table interface{}, id uint, at time.Time) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe(operation, err, started)
	}()

	err = r.db.WithContext(ctx).
		Model(table).
		Where("id = ? AND is_synced = ?", id, false).
		Updates(map[string]interface{}{
			"is_synced":      true,
			"last_synced_at": at.UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("%s %d: %w", operation, id, translate(err))
	}
	return nil
}
