package chain

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goodnatureofminers/electionledger-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// EthClient is the subset of the node API the client relies on.
	EthClient interface {
		ChainID(ctx context.Context) (*big.Int, error)
		PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
		SuggestGasPrice(ctx context.Context) (*big.Int, error)
		EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
		SendTransaction(ctx context.Context, tx *types.Transaction) error
		TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
		CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
		HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
		BlockNumber(ctx context.Context) (uint64, error)
	}
	// Contract invokes ABI functions on the deployed ballot contract.
	Contract interface {
		Call(ctx context.Context, function string, args ...interface{}) ([]interface{}, error)
		Submit(ctx context.Context, function string, args ...interface{}) (*Submission, error)
	}
	// EventRecorder receives submission lifecycle events.
	EventRecorder interface {
		Record(event model.LedgerEvent)
	}
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
	SubmissionMetrics interface {
		Observe(function, outcome string, started time.Time)
		QueueDepth(n int)
	}
)
