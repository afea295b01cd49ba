package rest

import (
	"context"

	"github.com/goodnatureofminers/electionledger-backend/internal/model"
	"github.com/goodnatureofminers/electionledger-backend/internal/service/projector"
	"github.com/goodnatureofminers/electionledger-backend/internal/service/voting"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Voting is the vote caster and its read side.
	Voting interface {
		CastVote(ctx context.Context, voter model.Voter, req voting.CastRequest) (voting.CastResult, error)
		CastBallot(ctx context.Context, voter model.Voter, req voting.BallotRequest) (voting.CastResult, error)
		Verify(ctx context.Context, receipt string) (*voting.Verification, error)
		History(ctx context.Context, voter model.Voter) ([]voting.HistoryEntry, error)
		Results(ctx context.Context, electionCode, positionCode string) (*voting.ElectionResults, error)
		ChainResults(ctx context.Context, positionCode string) ([]voting.ChainTally, error)
		ElectionChainResults(ctx context.Context, electionCode string) ([]voting.ChainTally, error)
	}
	// Projector pushes an election onto the ledger.
	Projector interface {
		SyncElection(ctx context.Context, code string) (projector.SyncReport, error)
	}
	// LedgerEvents reads the submission journal.
	LedgerEvents interface {
		LedgerEventsByTxHash(ctx context.Context, txHash string) ([]model.LedgerEvent, error)
	}
	// Pinger is a dependency checked by the health endpoint.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
