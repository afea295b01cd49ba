package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaveElection upserts an election with its positions and candidates by code.
// Descriptive fields are overwritten; sync state is left untouched.
func (r *Repository) SaveElection(ctx context.Context, election model.Election) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("save_election", err, started)
	}()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := model.Election{
			Code:     election.Code,
			Title:    election.Title,
			StartsAt: election.StartsAt.UTC(),
			EndsAt:   election.EndsAt.UTC(),
		}
		if err := upsert(tx, &row, "title", "starts_at", "ends_at"); err != nil {
			return fmt.Errorf("election %q: %w", election.Code, err)
		}

		for _, p := range election.Positions {
			pos := model.Position{
				Code:                p.Code,
				ElectionID:          row.ID,
				Title:               p.Title,
				EligibleLevels:      p.EligibleLevels,
				EligibleDepartments: p.EligibleDepartments,
				Gender:              p.Gender,
			}
			if err := upsert(tx, &pos, "election_id", "title", "eligible_levels", "eligible_departments", "gender"); err != nil {
				return fmt.Errorf("position %q: %w", p.Code, err)
			}

			for _, c := range p.Candidates {
				cand := model.Candidate{
					Code:       c.Code,
					PositionID: pos.ID,
					FullName:   c.FullName,
				}
				if err := upsert(tx, &cand, "position_id", "full_name"); err != nil {
					return fmt.Errorf("candidate %q: %w", c.Code, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save election: %w", translate(err))
	}
	return nil
}

// upsert inserts row or updates columns of the row sharing its code, then
// reloads row so its primary key is set.
func upsert[T any](tx *gorm.DB, row *T, columns ...string) error {
	err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
	}).Create(row).Error
	if err != nil {
		return err
	}
	var loaded T
	if err := tx.Where("code = ?", codeOf(row)).First(&loaded).Error; err != nil {
		return err
	}
	*row = loaded
	return nil
}

func codeOf(row interface{}) string {
	switch v := row.(type) {
	case *model.Election:
		return v.Code
	case *model.Position:
		return v.Code
	case *model.Candidate:
		return v.Code
	default:
		panic(fmt.Sprintf("codeOf: unsupported %T", row))
	}
}
