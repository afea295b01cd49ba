package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/model"
)

const ledgerEventsByTxHashQuery = `
SELECT
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
FROM ledger_events
WHERE tx_hash = ?
ORDER BY event_time`

// LedgerEventsByTxHash returns the journal of one transaction in time order.
func (r *Repository) LedgerEventsByTxHash(ctx context.Context, txHash string) (events []model.LedgerEvent, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("ledger_events_by_tx_hash", err, started)
	}()

	rows, err := r.conn.Query(ctx, ledgerEventsByTxHashQuery, txHash)
	if err != nil {
		return nil, fmt.Errorf("query ledger events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e    model.LedgerEvent
			kind string
		)
		if err = rows.Scan(
			&e.EventTime,
			&e.ChainID,
			&kind,
			&e.Function,
			&e.TxHash,
			&e.Signer,
			&e.Nonce,
			&e.GasLimit,
			&e.GasPriceWei,
			&e.BlockNumber,
			&e.GasUsed,
			&e.Reason,
		); err != nil {
			return nil, fmt.Errorf("scan ledger event: %w", err)
		}
		e.Kind = model.LedgerEventKind(kind)
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger events: %w", err)
	}
	return events, nil
}
