package model

import "time"

// LedgerEventKind names a submission lifecycle transition.
type LedgerEventKind string

const (
	LedgerEventSubmitted LedgerEventKind = "submitted"
	LedgerEventMined     LedgerEventKind = "mined"
	LedgerEventFailed    LedgerEventKind = "failed"
	LedgerEventReverted  LedgerEventKind = "reverted"
	LedgerEventTimedOut  LedgerEventKind = "timed_out"
)

// LedgerEvent is one journal row describing a contract write.
type LedgerEvent struct {
	EventTime   time.Time
	ChainID     uint64
	Kind        LedgerEventKind
	Function    string
	TxHash      string
	Signer      string
	Nonce       uint64
	GasLimit    uint64
	GasPriceWei string
	BlockNumber uint64
	GasUsed     uint64
	Reason      string
}
