package core

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus collectors for the settlement engine and
// the gateway's L402 flow. Construct once per process with NewMetrics
// and register on a prometheus.Registerer of the caller's choosing.
type Metrics struct {
	EpochsSettled      prometheus.Counter
	SettlementDuration prometheus.Histogram
	HostsPaid          prometheus.Gauge
	TotalPaidSats      prometheus.Counter
	ReceiptPowDuration prometheus.Histogram

	PaidBlockRequests  *prometheus.CounterVec // labels: outcome = ok|unpaid|underpaid|not_found
	L402Challenges     prometheus.Counter
}

// NewMetrics constructs the collector set without registering it.
func NewMetrics() *Metrics {
	return &Metrics{
		EpochsSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synnergy_storage", Name: "epochs_settled_total",
			Help: "Number of epochs successfully settled.",
		}),
		SettlementDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "synnergy_storage", Name: "settlement_duration_seconds",
			Help: "Wall-clock time spent in SettleEpoch.", Buckets: prometheus.DefBuckets,
		}),
		HostsPaid: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "synnergy_storage", Name: "hosts_paid",
			Help: "Number of (host, cid) groups paid in the most recently settled epoch.",
		}),
		TotalPaidSats: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synnergy_storage", Name: "paid_sats_total",
			Help: "Cumulative satoshis paid out across all settled epochs.",
		}),
		ReceiptPowDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "synnergy_storage", Name: "receipt_pow_seconds",
			Help: "Time spent mining receipt proof-of-work for a client request.",
			Buckets: prometheus.DefBuckets,
		}),
		PaidBlockRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "synnergy_storage", Name: "paid_block_requests_total",
			Help: "Gateway block requests by L402 outcome.",
		}, []string{"outcome"}),
		L402Challenges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "synnergy_storage", Name: "l402_challenges_total",
			Help: "Number of 402 Payment Required challenges issued by the gateway.",
		}),
	}
}

// MustRegister registers every collector on reg, panicking on duplicate
// registration (mirrors prometheus.MustRegister's own contract).
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		m.EpochsSettled, m.SettlementDuration, m.HostsPaid, m.TotalPaidSats,
		m.ReceiptPowDuration, m.PaidBlockRequests, m.L402Challenges,
	)
}

// ObserveSettlement records one completed settlement pass.
func (m *Metrics) ObserveSettlement(result *SettlementResult, seconds float64) {
	m.EpochsSettled.Inc()
	m.SettlementDuration.Observe(seconds)
	m.HostsPaid.Set(float64(result.PaidGroups))
	m.TotalPaidSats.Add(float64(result.TotalPaidSats))
}
