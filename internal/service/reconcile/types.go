package reconcile

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goodnatureofminers/electionledger-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Chain reads mined transaction metadata.
	Chain interface {
		TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
		LatestBlock(ctx context.Context) (uint64, error)
		BlockTime(ctx context.Context, number uint64) (time.Time, error)
	}
	Repository interface {
		PendingVotes(ctx context.Context, limit int) ([]model.Vote, error)
		UpdateVoteEnrichment(ctx context.Context, id string, e model.Enrichment) (bool, error)
	}
	Metrics interface {
		ObserveEnrich(outcome string)
		ObserveBatch(err error, n int, started time.Time)
	}
)
