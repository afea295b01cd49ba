package projector

import (
	"context"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/chain"
	"github.com/goodnatureofminers/electionledger-backend/internal/codec"
	"github.com/goodnatureofminers/electionledger-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Ledger is the part of the ballot contract the projector reads and writes.
	Ledger interface {
		ElectionExists(ctx context.Context, election codec.Identifier) (bool, error)
		PositionExists(ctx context.Context, position codec.Identifier) (bool, error)
		CandidateExists(ctx context.Context, position, candidate codec.Identifier) (bool, error)
		AddElection(ctx context.Context, election codec.Identifier) (*chain.Submission, error)
		AddPosition(ctx context.Context, position codec.Identifier, title string, election codec.Identifier) (*chain.Submission, error)
		AddCandidate(ctx context.Context, position, candidate codec.Identifier, name string) (*chain.Submission, error)
	}
	Repository interface {
		ElectionByCode(ctx context.Context, code string) (*model.Election, error)
		PositionByCode(ctx context.Context, code string) (*model.Position, error)
		CandidateByCode(ctx context.Context, code string) (*model.Candidate, error)
		MarkElectionSynced(ctx context.Context, id uint, at time.Time) error
		MarkPositionSynced(ctx context.Context, id uint, at time.Time) error
		MarkCandidateSynced(ctx context.Context, id uint, at time.Time) error
	}
	Metrics interface {
		ObserveEnsure(entity, outcome string)
		ObserveSync(err error, writes int, started time.Time)
	}
)
