package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoteStatus is the lifecycle state of a persisted vote.
type VoteStatus string

const (
	VoteStatusPending VoteStatus = "pending"
	VoteStatusSuccess VoteStatus = "success"
	VoteStatusFailed  VoteStatus = "failed"
)

// Vote is one line of a cast, keyed by the voter digest and position.
// Rows are created once with status pending and enriched at most once.
type Vote struct {
	ID             string     `gorm:"primaryKey;size:36"`
	VoterDigest    string     `gorm:"size:64;not null;uniqueIndex:idx_votes_voter_position"`
	PositionID     uint       `gorm:"not null;uniqueIndex:idx_votes_voter_position"`
	Position       *Position  `gorm:"constraint:OnDelete:RESTRICT"`
	CandidateID    uint       `gorm:"not null;index"`
	Candidate      *Candidate `gorm:"constraint:OnDelete:RESTRICT"`
	ElectionID     uint       `gorm:"not null;index"`
	Election       *Election  `gorm:"constraint:OnDelete:RESTRICT"`
	Receipt        string     `gorm:"size:64;not null;uniqueIndex"`
	TxHash         string     `gorm:"size:66;not null;index"`
	Status         VoteStatus `gorm:"size:16;not null;index"`
	BlockNumber    *uint64
	Confirmations  *uint64
	BlockTimestamp *time.Time
	NetworkFee     decimal.NullDecimal `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Enrichment carries the block metadata resolved for a mined transaction.
type Enrichment struct {
	Status         VoteStatus
	BlockNumber    uint64
	Confirmations  uint64
	BlockTimestamp time.Time
	NetworkFee     decimal.Decimal
}

// CandidateCount is a candidate's local vote tally.
type CandidateCount struct {
	CandidateID uint
	Code        string
	FullName    string
	Votes       int64
}

// ElectionCounts are election-wide vote totals.
type ElectionCounts struct {
	Cast   int64
	Synced int64
}

// Voter is the identity of the caller casting a vote.
type Voter struct {
	DID        string
	Level      int
	Department string
	Gender     string
}
