// Package metrics exposes prometheus collectors for the quote service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes of a quote.
const (
	OutcomeOK       = "ok"
	OutcomeAdvisory = "advisory"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

type Metrics struct {
	quotes         *prometheus.CounterVec
	quoteDuration  *prometheus.HistogramVec
	snapshotBlocks prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pino_quotes_total",
		Help: "Total number of quotes by kind and outcome",
	}, []string{"kind", "outcome"})
	quoteDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pino_quote_duration_seconds",
		Help:    "Quote duration in seconds, chain reads included",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"kind"})
	snapshotBlocks := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pino_snapshot_block",
		Help: "Block number of the latest chain snapshot",
	})

	reg.MustRegister(quotes, quoteDuration, snapshotBlocks)

	return &Metrics{
		quotes:         quotes,
		quoteDuration:  quoteDuration,
		snapshotBlocks: snapshotBlocks,
	}
}

// TrackQuote records one quote of kind that started at start.
func (m *Metrics) TrackQuote(kind, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(kind, outcome).Inc()
	m.quoteDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// SetSnapshotBlock records the block the latest snapshot was pinned to.
func (m *Metrics) SetSnapshotBlock(block uint64) {
	if m == nil {
		return
	}
	m.snapshotBlocks.Set(float64(block))
}
