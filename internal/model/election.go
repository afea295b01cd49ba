// Package model holds the relational mirror entities and ledger journal records.
package model

import (
	"strings"
	"time"
)

// SyncState records whether an entity has been projected onto the ledger.
// It only ever moves from unsynced to synced.
type SyncState struct {
	IsSynced     bool `gorm:"not null;default:false;index"`
	LastSyncedAt *time.Time
}

// Election is an off-chain election record.
type Election struct {
	ID        uint   `gorm:"primarykey"`
	Code      string `gorm:"size:64;not null;uniqueIndex"`
	Title     string `gorm:"not null"`
	StartsAt  time.Time
	EndsAt    time.Time
	Positions []Position `gorm:"foreignKey:ElectionID"`
	SyncState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasStarted reports whether voting opened at or before now.
func (e Election) HasStarted(now time.Time) bool {
	return !now.Before(e.StartsAt)
}

// HasEnded reports whether voting closed strictly before now.
func (e Election) HasEnded(now time.Time) bool {
	return now.After(e.EndsAt)
}

// IsOpen reports whether votes are accepted at now.
func (e Election) IsOpen(now time.Time) bool {
	return e.HasStarted(now) && !e.HasEnded(now)
}

// GenderAll is the restriction value that admits every voter.
const GenderAll = "A"

// Position is a contested seat within an election.
type Position struct {
	ID                  uint        `gorm:"primarykey"`
	Code                string      `gorm:"size:64;not null;uniqueIndex"`
	ElectionID          uint        `gorm:"not null;index"`
	Election            *Election   `gorm:"constraint:OnDelete:RESTRICT"`
	Title               string      `gorm:"not null"`
	EligibleLevels      []int       `gorm:"serializer:json"`
	EligibleDepartments []string    `gorm:"serializer:json"`
	Gender              string      `gorm:"size:1"`
	Candidates          []Candidate `gorm:"foreignKey:PositionID"`
	SyncState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GenderRestricted reports whether the position admits only one gender.
func (p Position) GenderRestricted() bool {
	g := strings.TrimSpace(p.Gender)
	return g != "" && !strings.EqualFold(g, GenderAll)
}

// Candidate stands for a position.
type Candidate struct {
	ID         uint      `gorm:"primarykey"`
	Code       string    `gorm:"size:64;not null;uniqueIndex"`
	PositionID uint      `gorm:"not null;index"`
	Position   *Position `gorm:"constraint:OnDelete:RESTRICT"`
	FullName   string    `gorm:"not null"`
	SyncState
	CreatedAt time.Time
	UpdatedAt time.Time
}
