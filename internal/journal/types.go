package journal

import (
	"context"

	"github.com/goodnatureofminers/electionledger-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Store persists journal rows.
	Store interface {
		InsertLedgerEvents(ctx context.Context, events []model.LedgerEvent) error
	}
)
