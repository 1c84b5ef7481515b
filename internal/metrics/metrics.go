// Package metrics exposes Prometheus instrumentation for the ingestion
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline counters. All counters are registered on
// an owned registry so tests can construct isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	recordsIngested *prometheus.CounterVec
	recordsFailed   *prometheus.CounterVec
	factorsAdded    prometheus.Counter
	factorsFailed   prometheus.Counter
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.recordsIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carbonledger",
		Name:      "records_ingested_total",
		Help:      "Raw activity records successfully converted into emission facts",
	}, []string{"activity"})
	m.recordsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carbonledger",
		Name:      "records_failed_total",
		Help:      "Raw activity records skipped due to per-record failures",
	}, []string{"reason"})
	m.factorsAdded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "carbonledger",
		Name:      "factors_registered_total",
		Help:      "Emission factors successfully registered",
	})
	m.factorsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "carbonledger",
		Name:      "factors_failed_total",
		Help:      "Emission factor rows rejected during registration",
	})

	m.registry.MustRegister(m.recordsIngested, m.recordsFailed, m.factorsAdded, m.factorsFailed)
	return m
}

// RecordIngested counts one persisted emission fact for an activity.
func (m *Metrics) RecordIngested(activity string) {
	m.recordsIngested.WithLabelValues(activity).Inc()
}

// RecordFailed counts one skipped record with a failure reason label.
func (m *Metrics) RecordFailed(reason string) {
	m.recordsFailed.WithLabelValues(reason).Inc()
}

// FactorRegistered counts one registered factor.
func (m *Metrics) FactorRegistered() {
	m.factorsAdded.Inc()
}

// FactorFailed counts one rejected factor row.
func (m *Metrics) FactorFailed() {
	m.factorsFailed.Inc()
}

// Handler returns the scrape handler for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gather exposes the underlying registry for test assertions.
func (m *Metrics) Gather() prometheus.Gatherer {
	return m.registry
}
