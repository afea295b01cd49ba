package voting

import (
	"context"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/chain"
	"github.com/goodnatureofminers/electionledger-backend/internal/codec"
	"github.com/goodnatureofminers/electionledger-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Ledger is the part of the ballot contract used for voting and tallies.
	Ledger interface {
		Vote(ctx context.Context, position, candidate, receipt codec.Identifier) (*chain.Submission, error)
		VoteBatch(ctx context.Context, positions, candidates, receipts []codec.Identifier) (*chain.Submission, error)
		GetResults(ctx context.Context, position codec.Identifier) ([]chain.Tally, error)
		GetBallotResults(ctx context.Context, election codec.Identifier) ([]chain.Tally, error)
	}
	Repository interface {
		ElectionByCode(ctx context.Context, code string) (*model.Election, error)
		CandidateByCode(ctx context.Context, code string) (*model.Candidate, error)
		VoteExists(ctx context.Context, voterDigest string, positionID uint) (bool, error)
		CreateVotes(ctx context.Context, votes []model.Vote) error
		VoteByReceipt(ctx context.Context, receipt string) (*model.Vote, error)
		VotesByVoter(ctx context.Context, voterDigest string) ([]model.Vote, error)
		CandidateCounts(ctx context.Context, positionID uint) ([]model.CandidateCount, error)
		ElectionCounts(ctx context.Context, electionID uint) (model.ElectionCounts, error)
	}
	// Eligibility decides whether a voter may vote for a position.
	Eligibility interface {
		IsEligible(voter model.Voter, position model.Position) bool
	}
	// Enricher fills block metadata into freshly written votes.
	Enricher interface {
		Enrich(ctx context.Context, votes []model.Vote) (map[string]model.Enrichment, error)
	}
	Metrics interface {
		ObserveCast(kind, outcome string, started time.Time)
	}
)
