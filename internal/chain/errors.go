package chain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	// ErrConnectionUnavailable means the node endpoint is unset or unreachable.
	ErrConnectionUnavailable = errors.New("ledger connection unavailable")
	// ErrContractUnavailable means the contract ABI was not loaded.
	ErrContractUnavailable = errors.New("contract interface unavailable")
	// ErrReceiptNotFound means the transaction has not been mined yet.
	ErrReceiptNotFound = errors.New("transaction receipt not found")
	// ErrSignerMismatch means the configured wallet is not the key's address.
	ErrSignerMismatch = errors.New("wallet address does not match private key")
	// ErrClientClosed is returned by Submit after Close.
	ErrClientClosed = errors.New("chain client closed")
)

// EstimationError wraps a gas estimation failure that was not a revert.
type EstimationError struct {
	Function string
	Err      error
}

func (e *EstimationError) Error() string {
	return fmt.Sprintf("gas estimation failed for %s: %v", e.Function, e.Err)
}

func (e *EstimationError) Unwrap() error { return e.Err }

// RevertError is a contract revert observed during estimation, broadcast or
// after mining. TxHash is set when the reverting transaction was mined.
type RevertError struct {
	Function string
	Reason   string
	TxHash   string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s reverted", e.Function)
	}
	return fmt.Sprintf("%s reverted: %s", e.Function, e.Reason)
}

// NotMinedError reports a broadcast transaction with no receipt before the
// wait timed out. The outcome is unknown; the transaction may still mine.
type NotMinedError struct {
	Function string
	TxHash   string
	Reason   string
}

func (e *NotMinedError) Error() string {
	msg := fmt.Sprintf("%s transaction %s not mined in time", e.Function, e.TxHash)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// IsRevert reports whether err is a RevertError whose reason contains substr.
func IsRevert(err error, substr string) bool {
	var rerr *RevertError
	if !errors.As(err, &rerr) {
		return false
	}
	return strings.Contains(strings.ToLower(rerr.Reason), strings.ToLower(substr))
}

const revertPrefix = "execution reverted"

// revertReason extracts a revert reason from a node error. ok is false when
// err does not describe a revert.
func revertReason(err error) (reason string, ok bool) {
	if err == nil {
		return "", false
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if s, isStr := dataErr.ErrorData().(string); isStr {
			if data, decErr := hexutil.Decode(s); decErr == nil {
				if unpacked, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
					return unpacked, true
				}
			}
		}
	}

	msg := err.Error()
	i := strings.Index(msg, revertPrefix)
	if i < 0 {
		return "", false
	}
	reason = strings.TrimPrefix(msg[i+len(revertPrefix):], ":")
	return strings.TrimSpace(reason), true
}
