// Package metrics exposes prometheus collectors for the four keepers,
// ambient observability carried regardless of external wire framing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors bundles the counters and histograms shared by every keeper.
// A single instance is constructed at app wiring time and injected into
// each keeper constructor rather than referenced via package-level
// globals.
type Collectors struct {
	OperationsTotal *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	SharesOutstanding *prometheus.GaugeVec
}

// NewCollectors builds and registers the collectors against reg. Passing a
// fresh *prometheus.Registry (rather than prometheus.DefaultRegisterer)
// keeps tests hermetic.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "restaking",
			Name: "operations_total",
			Help: "Count of keeper operations by component, operation and outcome.",
		}, []string{"component", "operation", "outcome"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "restaking",
			Name: "operation_duration_seconds",
			Help: "Latency of keeper operations by component and operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"component", "operation"}),
		SharesOutstanding: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "restaking",
			Name: "strategy_shares_outstanding",
			Help: "Total shares outstanding per strategy.",
		}, []string{"strategy"}),
	}
	reg.MustRegister(c.OperationsTotal, c.OperationDuration, c.SharesOutstanding)
	return c
}

// ObserveOutcome records a single operation's outcome. err determines the
// "outcome" label ("ok" or "error").
func (c *Collectors) ObserveOutcome(component, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.OperationsTotal.WithLabelValues(component, operation, outcome).Inc()
}

