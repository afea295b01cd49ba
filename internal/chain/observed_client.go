package chain

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ObservedClient decorates an EthClient with per-operation metrics.
type ObservedClient struct {
	client     EthClient
	rpcMetrics RPCMetrics
}

// NewObservedClient wraps client so every call is recorded by rpcMetrics.
func NewObservedClient(client EthClient, rpcMetrics RPCMetrics) *ObservedClient {
	return &ObservedClient{
		client:     client,
		rpcMetrics: rpcMetrics,
	}
}

func (r *ObservedClient) ChainID(ctx context.Context) (id *big.Int, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("chain_id", err, started)
	}()
	return r.client.ChainID(ctx)
}

func (r *ObservedClient) PendingNonceAt(ctx context.Context, account common.Address) (nonce uint64, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("pending_nonce_at", err, started)
	}()
	return r.client.PendingNonceAt(ctx, account)
}

func (r *ObservedClient) SuggestGasPrice(ctx context.Context) (price *big.Int, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("suggest_gas_price", err, started)
	}()
	return r.client.SuggestGasPrice(ctx)
}

func (r *ObservedClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (gas uint64, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("estimate_gas", err, started)
	}()
	return r.client.EstimateGas(ctx, msg)
}

func (r *ObservedClient) SendTransaction(ctx context.Context, tx *types.Transaction) (err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("send_transaction", err, started)
	}()
	return r.client.SendTransaction(ctx, tx)
}

// TransactionReceipt does not count a pending transaction as an error.
func (r *ObservedClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (receipt *types.Receipt, err error) {
	started := time.Now()
	defer func() {
		observed := err
		if errors.Is(err, ethereum.NotFound) {
			observed = nil
		}
		r.rpcMetrics.Observe("transaction_receipt", observed, started)
	}()
	return r.client.TransactionReceipt(ctx, txHash)
}

func (r *ObservedClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) (out []byte, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("call_contract", err, started)
	}()
	return r.client.CallContract(ctx, msg, blockNumber)
}

func (r *ObservedClient) HeaderByNumber(ctx context.Context, number *big.Int) (header *types.Header, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("header_by_number", err, started)
	}()
	return r.client.HeaderByNumber(ctx, number)
}

func (r *ObservedClient) BlockNumber(ctx context.Context) (number uint64, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("block_number", err, started)
	}()
	return r.client.BlockNumber(ctx)
}
