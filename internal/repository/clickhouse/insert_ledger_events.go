package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/model"
)

const insertLedgerEventsQuery = `
INSERT INTO ledger_events (
	event_time,
	chain_id,
	kind,
	contract_function,
	tx_hash,
	signer,
	nonce,
	gas_limit,
	gas_price_wei,
	block_number,
	gas_used,
	reason
) VALUES`

// InsertLedgerEvents appends journal rows in one batch.
func (r *Repository) InsertLedgerEvents(ctx context.Context, events []model.LedgerEvent) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("insert_ledger_events", err, started)
	}()

	if len(events) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertLedgerEventsQuery)
	if err != nil {
		return fmt.Errorf("prepare ledger events batch: %w", err)
	}

	for _, e := range events {
		if err = batch.Append(
			e.EventTime.UTC(),
			e.ChainID,
			string(e.Kind),
			e.Function,
			e.TxHash,
			e.Signer,
			e.Nonce,
			e.GasLimit,
			e.GasPriceWei,
			e.BlockNumber,
			e.GasUsed,
			e.Reason,
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append ledger event: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert ledger events: %w", err)
	}
	return nil
}
