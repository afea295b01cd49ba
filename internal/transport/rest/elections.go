package rest

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

type syncResponse struct {
	Election string `json:"election"`
	Writes   int    `json:"writes"`
	Created  int    `json:"created"`
	Existing int    `json:"existing"`
	Complete bool   `json:"complete"`
}

// sync answers 202 when the transaction cap cut the run short.
func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	report, err := h.projector.SyncElection(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if !report.Complete {
		status = http.StatusAccepted
	}
	h.writeJSON(w, status, syncResponse(report))
}

type ledgerEvent struct {
	EventTime   time.Time `json:"event_time"`
	ChainID     uint64    `json:"chain_id"`
	Kind        string    `json:"kind"`
	Function    string    `json:"function"`
	TxHash      string    `json:"tx_hash"`
	Signer      string    `json:"signer"`
	Nonce       uint64    `json:"nonce"`
	GasLimit    uint64    `json:"gas_limit"`
	GasPriceWei string    `json:"gas_price_wei"`
	BlockNumber uint64    `json:"block_number,omitempty"`
	GasUsed     uint64    `json:"gas_used,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

func (h *Handler) ledgerEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.LedgerEventsByTxHash(r.Context(), mux.Vars(r)["tx_hash"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]ledgerEvent, 0, len(events))
	for _, e := range events {
		out = append(out, ledgerEvent{
			EventTime:   e.EventTime,
			ChainID:     e.ChainID,
			Kind:        string(e.Kind),
			Function:    e.Function,
			TxHash:      e.TxHash,
			Signer:      e.Signer,
			Nonce:       e.Nonce,
			GasLimit:    e.GasLimit,
			GasPriceWei: e.GasPriceWei,
			BlockNumber: e.BlockNumber,
			GasUsed:     e.GasUsed,
			Reason:      e.Reason,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}
