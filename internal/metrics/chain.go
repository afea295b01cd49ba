package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chainRPCTotal, chainRPCDuration = operationVecs("chain_rpc", "ledger node RPC operations", "operation", "chain")

	chainSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chain",
		Name:      "submissions_total",
		Help:      "Count of contract write submissions by outcome.",
	}, []string{"function", "outcome"})

	chainSubmissionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "chain",
		Name:      "submission_duration_seconds",
		Help:      "Time from submit to receipt or give-up.",
		Buckets:   durationBuckets,
	}, []string{"function", "outcome"})

	chainQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "chain",
		Name:      "submission_queue_depth",
		Help:      "Submissions waiting for the signer.",
	})
)

// ChainRPC tracks metrics for calls to the ledger node.
type ChainRPC struct {
	chain string
}

// NewChainRPC constructs a ChainRPC collector labelled with the chain id.
func NewChainRPC(chain string) *ChainRPC {
	if chain == "" {
		chain = "unknown"
	}
	return &ChainRPC{chain: chain}
}

// Observe records a single RPC call outcome and duration.
func (m ChainRPC) Observe(operation string, err error, started time.Time) {
	s := status(err)
	chainRPCTotal.WithLabelValues(operation, m.chain, s).Inc()
	chainRPCDuration.WithLabelValues(operation, m.chain, s).Observe(seconds(started))
}

// Submissions tracks contract write outcomes and the signer queue.
type Submissions struct{}

// NewSubmissions constructs a Submissions collector.
func NewSubmissions() *Submissions {
	return &Submissions{}
}

// Observe records a finished submission. outcome is one of mined, failed,
// reverted, estimation_failed, timed_out or error.
func (Submissions) Observe(function, outcome string, started time.Time) {
	chainSubmissionsTotal.WithLabelValues(function, outcome).Inc()
	chainSubmissionDuration.WithLabelValues(function, outcome).Observe(seconds(started))
}

// QueueDepth sets the number of pending submissions.
func (Submissions) QueueDepth(n int) {
	chainQueueDepth.Set(float64(n))
}
