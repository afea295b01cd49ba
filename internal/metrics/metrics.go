// Package metrics exposes application metrics collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "electionledger"

var durationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 60}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func seconds(started time.Time) float64 {
	return time.Since(started).Seconds()
}

func operationVecs(subsystem, help string, labels ...string) (*prometheus.CounterVec, *prometheus.HistogramVec) {
	labels = append(labels, "status")
	total := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "operations_total",
		Help:      "Count of " + help + ".",
	}, labels)
	duration := promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "operation_duration_seconds",
		Help:      "Duration of " + help + ".",
		Buckets:   durationBuckets,
	}, labels)
	return total, duration
}
