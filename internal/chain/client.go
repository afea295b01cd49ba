// Package chain talks to the ballot contract through one signing account.
package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/goodnatureofminers/electionledger-backend/internal/clock"
	"github.com/goodnatureofminers/electionledger-backend/internal/model"
	"go.uber.org/zap"
)

const (
	DefaultReceiptTimeout     = 60 * time.Second
	DefaultPollInterval       = 5 * time.Second
	DefaultGasLimitMultiplier = 1.2
	DefaultGasPriceMultiplier = 1.4
	DefaultQueueSize          = 64

	simulateTimeout = 10 * time.Second
)

// Submission outcomes reported to SubmissionMetrics.
const (
	outcomeMined            = "mined"
	outcomeFailed           = "failed"
	outcomeReverted         = "reverted"
	outcomeEstimationFailed = "estimation_failed"
	outcomeTimedOut         = "timed_out"
	outcomeError            = "error"
)

var errWaitExhausted = errors.New("receipt wait exhausted")

// Config tunes contract submissions.
type Config struct {
	ChainID            *big.Int
	Contract           common.Address
	ReceiptTimeout     time.Duration
	PollInterval       time.Duration
	GasLimitMultiplier float64
	GasPriceMultiplier float64
	MinGasPrice        *big.Int
	QueueSize          int
}

func (c Config) withDefaults() Config {
	if c.ReceiptTimeout <= 0 {
		c.ReceiptTimeout = DefaultReceiptTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.GasLimitMultiplier <= 0 {
		c.GasLimitMultiplier = DefaultGasLimitMultiplier
	}
	if c.GasPriceMultiplier <= 0 {
		c.GasPriceMultiplier = DefaultGasPriceMultiplier
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	return c
}

// Submission describes a broadcast contract write. Receipt is nil until mined.
type Submission struct {
	Function string
	TxHash   common.Hash
	Nonce    uint64
	GasLimit uint64
	GasPrice *big.Int
	Receipt  *types.Receipt
}

type sendRequest struct {
	ctx      context.Context
	function string
	data     []byte
	gasLimit uint64
	result   chan sendResult
}

type sendResult struct {
	sub *Submission
	err error
}

// Client owns the node connection, the contract ABI and the signer's nonce
// sequence. All writes pass through a single send loop started by Start.
type Client struct {
	eth      EthClient
	abi      *abi.ABI
	key      *ecdsa.PrivateKey
	from     common.Address
	cfg      Config
	signer   types.Signer
	recorder EventRecorder
	metrics  SubmissionMetrics
	logger   *zap.Logger
	sleep    clock.SleepFunc
	now      func() time.Time

	queue   chan *sendRequest
	stop    chan struct{}
	done    chan struct{}
	started atomic.Bool
	once    sync.Once
	waiting atomic.Int64

	// owned by the send loop
	nextNonce  uint64
	nonceKnown bool
}

// New constructs a Client. contractABI may be nil, in which case every contract
// call fails with ErrContractUnavailable.
func New(
	eth EthClient,
	contractABI *abi.ABI,
	key *ecdsa.PrivateKey,
	cfg Config,
	recorder EventRecorder,
	metrics SubmissionMetrics,
	logger *zap.Logger,
) (*Client, error) {
	if eth == nil {
		return nil, ErrConnectionUnavailable
	}
	if key == nil {
		return nil, errors.New("signing key is required")
	}
	if cfg.ChainID == nil || cfg.ChainID.Sign() <= 0 {
		return nil, errors.New("chain id is required")
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	cfg = cfg.withDefaults()

	return &Client{
		eth:      eth,
		abi:      contractABI,
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		cfg:      cfg,
		signer:   types.LatestSignerForChainID(cfg.ChainID),
		recorder: recorder,
		metrics:  metrics,
		logger:   logger,
		sleep:    clock.Sleep,
		now:      time.Now,
		queue:    make(chan *sendRequest, cfg.QueueSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the send loop. It stops when ctx is done or Close is called.
func (c *Client) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go c.loop(ctx)
}

// Close stops the send loop and waits for an in-flight send to finish.
func (c *Client) Close() {
	c.once.Do(func() { close(c.stop) })
	if c.started.Load() {
		<-c.done
	}
}

// Ping checks that the node answers with the configured chain id.
func (c *Client) Ping(ctx context.Context) error {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionUnavailable, err)
	}
	if id.Cmp(c.cfg.ChainID) != 0 {
		return fmt.Errorf("%w: node chain id %s, expected %s", ErrConnectionUnavailable, id, c.cfg.ChainID)
	}
	return nil
}

// Call runs a read-only contract function at the latest block.
func (c *Client) Call(ctx context.Context, function string, args ...interface{}) ([]interface{}, error) {
	data, err := c.pack(function, args...)
	if err != nil {
		return nil, err
	}
	out, err := c.eth.CallContract(ctx, c.callMsg(data), nil)
	if err != nil {
		if reason, ok := revertReason(err); ok {
			return nil, &RevertError{Function: function, Reason: reason}
		}
		return nil, fmt.Errorf("call %s: %w", function, err)
	}
	values, err := c.abi.Unpack(function, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", function, err)
	}
	return values, nil
}

// Submit estimates, signs and broadcasts a contract write, then waits for it to
// be mined. A transaction without a receipt in time yields a NotMinedError and
// the Submission, which stays valid for later reconciliation.
func (c *Client) Submit(ctx context.Context, function string, args ...interface{}) (*Submission, error) {
	started := c.now()
	outcome := outcomeError
	defer func() {
		c.metrics.Observe(function, outcome, started)
	}()

	data, err := c.pack(function, args...)
	if err != nil {
		return nil, err
	}
	msg := c.callMsg(data)

	estimate, err := c.eth.EstimateGas(ctx, msg)
	if err != nil {
		if reason, ok := revertReason(err); ok {
			outcome = outcomeReverted
			c.record(model.LedgerEvent{Kind: model.LedgerEventReverted, Function: function, Reason: reason})
			return nil, &RevertError{Function: function, Reason: reason}
		}
		outcome = outcomeEstimationFailed
		return nil, &EstimationError{Function: function, Err: err}
	}

	sub, err := c.enqueue(ctx, function, data, scaleGas(estimate, c.cfg.GasLimitMultiplier))
	if err != nil {
		if reason, ok := revertReason(err); ok {
			outcome = outcomeReverted
			c.record(model.LedgerEvent{Kind: model.LedgerEventReverted, Function: function, Reason: reason})
			return nil, &RevertError{Function: function, Reason: reason}
		}
		return nil, err
	}

	log := c.logger.With(zap.String("function", function), zap.String("tx_hash", sub.TxHash.Hex()))

	receipt, err := c.waitMined(ctx, sub.TxHash)
	if err != nil {
		notMined := &NotMinedError{Function: function, TxHash: sub.TxHash.Hex()}
		if errors.Is(err, errWaitExhausted) {
			notMined.Reason = c.simulate(ctx, msg)
		} else {
			notMined.Reason = err.Error()
		}
		outcome = outcomeTimedOut
		c.record(model.LedgerEvent{
			Kind:     model.LedgerEventTimedOut,
			Function: function,
			TxHash:   sub.TxHash.Hex(),
			Nonce:    sub.Nonce,
			Reason:   notMined.Reason,
		})
		log.Warn("transaction not mined in time", zap.String("reason", notMined.Reason))
		return sub, notMined
	}
	sub.Receipt = receipt

	event := model.LedgerEvent{
		Function: function,
		TxHash:   sub.TxHash.Hex(),
		Nonce:    sub.Nonce,
		GasUsed:  receipt.GasUsed,
	}
	if receipt.BlockNumber != nil {
		event.BlockNumber = receipt.BlockNumber.Uint64()
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		reason := c.simulate(ctx, msg)
		outcome = outcomeFailed
		event.Kind = model.LedgerEventFailed
		event.Reason = reason
		c.record(event)
		log.Warn("transaction mined with failure status", zap.String("reason", reason))
		return sub, &RevertError{Function: function, Reason: reason, TxHash: sub.TxHash.Hex()}
	}

	outcome = outcomeMined
	event.Kind = model.LedgerEventMined
	c.record(event)
	log.Info("transaction mined", zap.Uint64("block", event.BlockNumber), zap.Uint64("gas_used", receipt.GasUsed))
	return sub, nil
}

// TransactionReceipt returns the receipt of a mined transaction or
// ErrReceiptNotFound.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := c.eth.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("transaction receipt %s: %w", hash.Hex(), err)
	}
	return receipt, nil
}

// LatestBlock returns the current head number.
func (c *Client) LatestBlock(ctx context.Context) (uint64, error) {
	n, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("block number: %w", err)
	}
	return n, nil
}

// BlockTime returns the timestamp of block number.
func (c *Client) BlockTime(ctx context.Context, number uint64) (time.Time, error) {
	header, err := c.eth.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return time.Time{}, fmt.Errorf("header %d: %w", number, err)
	}
	return time.Unix(int64(header.Time), 0).UTC(), nil
}

func (c *Client) pack(function string, args ...interface{}) ([]byte, error) {
	if c.abi == nil {
		return nil, fmt.Errorf("%s: %w", function, ErrContractUnavailable)
	}
	if _, ok := c.abi.Methods[function]; !ok {
		return nil, fmt.Errorf("%s not in abi: %w", function, ErrContractUnavailable)
	}
	data, err := c.abi.Pack(function, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", function, err)
	}
	return data, nil
}

func (c *Client) callMsg(data []byte) ethereum.CallMsg {
	to := c.cfg.Contract
	return ethereum.CallMsg{From: c.from, To: &to, Data: data}
}

func (c *Client) enqueue(ctx context.Context, function string, data []byte, gasLimit uint64) (*Submission, error) {
	req := &sendRequest{
		ctx:      ctx,
		function: function,
		data:     data,
		gasLimit: gasLimit,
		result:   make(chan sendResult, 1),
	}

	c.metrics.QueueDepth(int(c.waiting.Add(1)))
	defer func() {
		c.metrics.QueueDepth(int(c.waiting.Add(-1)))
	}()

	select {
	case <-c.stop:
		return nil, ErrClientClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case c.queue <- req:
	}

	// The loop answers every request it dequeues, canceled or not.
	select {
	case res := <-req.result:
		return res.sub, res.err
	case <-c.done:
		select {
		case res := <-req.result:
			return res.sub, res.err
		default:
			return nil, ErrClientClosed
		}
	}
}

func (c *Client) loop(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case req := <-c.queue:
			req.result <- c.send(req)
		}
	}
}

func (c *Client) send(req *sendRequest) sendResult {
	ctx := req.ctx
	if err := ctx.Err(); err != nil {
		return sendResult{err: err}
	}

	pending, err := c.eth.PendingNonceAt(ctx, c.from)
	if err != nil {
		return sendResult{err: fmt.Errorf("pending nonce: %w", err)}
	}
	nonce := pending
	if c.nonceKnown && c.nextNonce > nonce {
		nonce = c.nextNonce
	}

	suggested, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return sendResult{err: fmt.Errorf("suggest gas price: %w", err)}
	}
	gasPrice := c.gasPrice(suggested)

	to := c.cfg.Contract
	tx, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      req.gasLimit,
		To:       &to,
		Data:     req.data,
	}), c.signer, c.key)
	if err != nil {
		return sendResult{err: fmt.Errorf("sign %s: %w", req.function, err)}
	}

	if err := c.eth.SendTransaction(ctx, tx); err != nil {
		c.nonceKnown = false
		return sendResult{err: fmt.Errorf("send %s: %w", req.function, err)}
	}
	c.nextNonce = nonce + 1
	c.nonceKnown = true

	sub := &Submission{
		Function: req.function,
		TxHash:   tx.Hash(),
		Nonce:    nonce,
		GasLimit: req.gasLimit,
		GasPrice: gasPrice,
	}
	c.record(model.LedgerEvent{
		Kind:        model.LedgerEventSubmitted,
		Function:    req.function,
		TxHash:      sub.TxHash.Hex(),
		Nonce:       nonce,
		GasLimit:    req.gasLimit,
		GasPriceWei: gasPrice.String(),
	})
	c.logger.Debug("transaction submitted",
		zap.String("function", req.function),
		zap.String("tx_hash", sub.TxHash.Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas_limit", req.gasLimit),
		zap.Stringer("gas_price", gasPrice),
	)
	return sendResult{sub: sub}
}

func (c *Client) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	attempts := int(c.cfg.ReceiptTimeout / c.cfg.PollInterval)
	for i := 0; ; i++ {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			c.logger.Warn("receipt lookup failed", zap.String("tx_hash", hash.Hex()), zap.Error(err))
		}
		if i >= attempts {
			return nil, errWaitExhausted
		}
		if err := c.sleep(ctx, c.cfg.PollInterval); err != nil {
			return nil, err
		}
	}
}

// simulate replays msg at the latest block and returns the revert reason, if any.
func (c *Client) simulate(ctx context.Context, msg ethereum.CallMsg) string {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), simulateTimeout)
	defer cancel()

	_, err := c.eth.CallContract(ctx, msg, nil)
	reason, _ := revertReason(err)
	return reason
}

func (c *Client) gasPrice(suggested *big.Int) *big.Int {
	price := scaleBig(suggested, c.cfg.GasPriceMultiplier)
	if c.cfg.MinGasPrice != nil && price.Cmp(c.cfg.MinGasPrice) < 0 {
		return new(big.Int).Set(c.cfg.MinGasPrice)
	}
	return price
}

func (c *Client) record(event model.LedgerEvent) {
	event.EventTime = c.now().UTC()
	event.ChainID = c.cfg.ChainID.Uint64()
	event.Signer = c.from.Hex()
	c.recorder.Record(event)
}

// scaleBig multiplies v by m rounded to per-mille, in integer arithmetic.
func scaleBig(v *big.Int, m float64) *big.Int {
	out := new(big.Int).Mul(v, big.NewInt(int64(math.Round(m*1000))))
	return out.Quo(out, big.NewInt(1000))
}

func scaleGas(v uint64, m float64) uint64 {
	return scaleBig(new(big.Int).SetUint64(v), m).Uint64()
}

type nopRecorder struct{}

func (nopRecorder) Record(model.LedgerEvent) {}
