package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	projectorEnsureTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "projector",
		Name:      "ensure_total",
		Help:      "Count of entity ensure calls by entity and outcome.",
	}, []string{"entity", "outcome"})

	projectorSyncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "projector",
		Name:      "sync_duration_seconds",
		Help:      "Duration of election sync runs.",
		Buckets:   durationBuckets,
	}, []string{"status"})

	projectorSyncWrites = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "projector",
		Name:      "sync_writes",
		Help:      "Write transactions issued per election sync run.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 9), // 1..256
	})

	votingCastTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "voting",
		Name:      "cast_total",
		Help:      "Count of cast attempts by kind and outcome.",
	}, []string{"kind", "outcome"})

	votingCastDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "voting",
		Name:      "cast_duration_seconds",
		Help:      "Duration of cast attempts.",
		Buckets:   durationBuckets,
	}, []string{"kind", "outcome"})

	reconcileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "enrich_total",
		Help:      "Count of vote enrichment attempts by outcome.",
	}, []string{"outcome"})

	reconcileBatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "batch_duration_seconds",
		Help:      "Duration of reconciliation passes.",
		Buckets:   durationBuckets,
	}, []string{"status"})

	reconcileBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "batch_size",
		Help:      "Pending votes examined per pass.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1..2048
	})
)

// Projector tracks EntityProjector outcomes.
type Projector struct{}

// NewProjector constructs a Projector collector.
func NewProjector() *Projector {
	return &Projector{}
}

// ObserveEnsure counts one ensure call. outcome is created, exists or error.
func (Projector) ObserveEnsure(entity, outcome string) {
	projectorEnsureTotal.WithLabelValues(entity, outcome).Inc()
}

// ObserveSync records a sync run and the number of writes it issued.
func (Projector) ObserveSync(err error, writes int, started time.Time) {
	projectorSyncDuration.WithLabelValues(status(err)).Observe(seconds(started))
	projectorSyncWrites.Observe(float64(writes))
}

// Voting tracks VoteCaster outcomes.
type Voting struct{}

// NewVoting constructs a Voting collector.
func NewVoting() *Voting {
	return &Voting{}
}

// ObserveCast records a cast attempt. kind is single or ballot.
func (Voting) ObserveCast(kind, outcome string, started time.Time) {
	votingCastTotal.WithLabelValues(kind, outcome).Inc()
	votingCastDuration.WithLabelValues(kind, outcome).Observe(seconds(started))
}

// Reconciler tracks ReconciliationPoller outcomes.
type Reconciler struct{}

// NewReconciler constructs a Reconciler collector.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// ObserveEnrich counts one enrichment attempt. outcome is success, failed,
// not_mined or error.
func (Reconciler) ObserveEnrich(outcome string) {
	reconcileTotal.WithLabelValues(outcome).Inc()
}

// ObserveBatch records a reconciliation pass over n pending votes.
func (Reconciler) ObserveBatch(err error, n int, started time.Time) {
	reconcileBatchDuration.WithLabelValues(status(err)).Observe(seconds(started))
	reconcileBatchSize.Observe(float64(n))
}
