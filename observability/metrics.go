package observability

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type rpcMetrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

type ledgerMetrics struct {
	transfers     *prometheus.CounterVec
	feesAccrued   prometheus.Counter
	distributions *prometheus.CounterVec
	stakes        *prometheus.CounterVec
}

var (
	rpcMetricsOnce sync.Once
	rpcRegistry    *rpcMetrics

	ledgerMetricsOnce sync.Once
	ledgerRegistry    *ledgerMetrics
)

// RPCMetrics returns the lazily-initialised registry used to record JSON-RPC
// activity.
func RPCMetrics() *rpcMetrics {
	rpcMetricsOnce.Do(func() {
		rpcRegistry = &rpcMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ember",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total JSON-RPC requests segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ember",
				Subsystem: "rpc",
				Name:      "errors_total",
				Help:      "Total JSON-RPC errors segmented by method and error label.",
			}, []string{"method", "label"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "ember",
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for JSON-RPC handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
		}
		prometheus.MustRegister(
			rpcRegistry.requests,
			rpcRegistry.errors,
			rpcRegistry.latency,
		)
	})
	return rpcRegistry
}

// Observe records the outcome of one RPC call. label is the ledger error
// label, empty on success.
func (m *rpcMetrics) Observe(method, label string, duration time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	outcome := "success"
	if label != "" {
		outcome = "error"
		m.errors.WithLabelValues(method, label).Inc()
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.latency.WithLabelValues(method).Observe(duration.Seconds())
}

// LedgerMetrics returns the lazily-initialised registry used to record ledger
// state transitions.
func LedgerMetrics() *ledgerMetrics {
	ledgerMetricsOnce.Do(func() {
		ledgerRegistry = &ledgerMetrics{
			transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ember",
				Subsystem: "ledger",
				Name:      "transfers_total",
				Help:      "Total value transfers segmented by kind (plain, buy, sell, internal).",
			}, []string{"kind"}),
			feesAccrued: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "ember",
				Subsystem: "ledger",
				Name:      "fees_accrued_units_total",
				Help:      "Total fee units withheld by taxed transfers.",
			}),
			distributions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ember",
				Subsystem: "ledger",
				Name:      "distributions_total",
				Help:      "Fee distribution cycles segmented by outcome.",
			}, []string{"outcome"}),
			stakes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ember",
				Subsystem: "staking",
				Name:      "operations_total",
				Help:      "Staking operations segmented by tier and kind.",
			}, []string{"tier", "kind"}),
		}
		prometheus.MustRegister(
			ledgerRegistry.transfers,
			ledgerRegistry.feesAccrued,
			ledgerRegistry.distributions,
			ledgerRegistry.stakes,
		)
	})
	return ledgerRegistry
}

// RecordTransfer counts one completed transfer of the given kind.
func (m *ledgerMetrics) RecordTransfer(kind string) {
	if m == nil {
		return
	}
	m.transfers.WithLabelValues(kind).Inc()
}

// RecordFee adds the withheld fee units for one taxed transfer. Values beyond
// float64 precision saturate rather than panic.
func (m *ledgerMetrics) RecordFee(units float64) {
	if m == nil || units <= 0 {
		return
	}
	m.feesAccrued.Add(units)
}

// RecordDistribution counts one distribution attempt.
func (m *ledgerMetrics) RecordDistribution(success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.distributions.WithLabelValues(outcome).Inc()
}

// RecordStakeOp counts one staking operation.
func (m *ledgerMetrics) RecordStakeOp(tier fmt.Stringer, kind string) {
	if m == nil || tier == nil {
		return
	}
	m.stakes.WithLabelValues(tier.String(), kind).Inc()
}

// MetricsHandler exposes the default registry for the node's /metrics route.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
