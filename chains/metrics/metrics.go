// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package metrics

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
)

type HarnessMetrics struct {
	FeesMeasured       prometheus.Histogram
	GasMeasured        prometheus.Histogram
	LogsSkipped        prometheus.Counter
	EventsDecoded      prometheus.Counter
	CollectionsCreated *prometheus.CounterVec
	InclusionTimeouts  prometheus.Counter
	ChainRejections    prometheus.Counter
}

// NewHarnessMetrics creates and registers the metrics of one harness instance.
// A nil registerer skips registration.
func NewHarnessMetrics(reg prometheus.Registerer, name string) *HarnessMetrics {
	labels := prometheus.Labels{"chain": name}
	m := &HarnessMetrics{
		FeesMeasured: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "harness_fee_native",
			Help:        "Measured operation cost in native currency units (float).",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1e9, 10, 10),
		}),
		GasMeasured: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "harness_fee_gas",
			Help:        "Measured operation cost in gas at the current gas price.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(21000, 2, 10),
		}),
		LogsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "harness_logs_skipped_total",
			Help:        "Receipt logs whose event schema could not be resolved.",
			ConstLabels: labels,
		}),
		EventsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "harness_events_decoded_total",
			Help:        "Receipt logs decoded into normalized events.",
			ConstLabels: labels,
		}),
		CollectionsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "harness_collections_created_total",
			Help:        "Collections created through the collection helper.",
			ConstLabels: labels,
		}, []string{"kind"}),
		InclusionTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "harness_inclusion_timeouts_total",
			Help:        "Transactions whose inclusion wait budget ran out.",
			ConstLabels: labels,
		}),
		ChainRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "harness_chain_rejections_total",
			Help:        "Transactions rejected by the chain.",
			ConstLabels: labels,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.FeesMeasured, m.GasMeasured, m.LogsSkipped, m.EventsDecoded,
			m.CollectionsCreated, m.InclusionTimeouts, m.ChainRejections)
	}
	return m
}

func toFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}

func (m *HarnessMetrics) ObserveFee(fee *big.Int) {
	if m == nil || fee == nil {
		return
	}
	m.FeesMeasured.Observe(toFloat(fee))
}

func (m *HarnessMetrics) ObserveGas(gas *big.Int) {
	if m == nil || gas == nil {
		return
	}
	m.GasMeasured.Observe(toFloat(gas))
}

func (m *HarnessMetrics) ObserveNormalized(decoded, skipped int) {
	if m == nil {
		return
	}
	m.EventsDecoded.Add(float64(decoded))
	m.LogsSkipped.Add(float64(skipped))
}

func (m *HarnessMetrics) CollectionCreated(kind string) {
	if m == nil {
		return
	}
	m.CollectionsCreated.WithLabelValues(kind).Inc()
}

func (m *HarnessMetrics) InclusionTimeout() {
	if m == nil {
		return
	}
	m.InclusionTimeouts.Inc()
}

func (m *HarnessMetrics) ChainRejected() {
	if m == nil {
		return
	}
	m.ChainRejections.Inc()
}
