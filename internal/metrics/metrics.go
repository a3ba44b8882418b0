// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package metrics exposes Prometheus instrumentation for bridge operations and the
// per-call database connections they open. All methods are safe on a nil *Metrics so
// components can run uninstrumented.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeError          = "error"
	OutcomeInvalid        = "invalid_argument"
	OutcomeNotImplemented = "not_implemented"
)

// OperationUnknown labels calls to methods the bridge does not implement.
const OperationUnknown = "unknown"

// Metrics holds the bridge collectors.
type Metrics struct {
	Operations      *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
	OpenConnections prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "empbridge_operations_total",
			Help: "Method channel calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "empbridge_operation_duration_seconds",
			Help:    "Time spent executing an operation, connection included.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		OpenConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "empbridge_open_connections",
			Help: "Database connections currently held by in-flight operations.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Operations, m.Duration, m.OpenConnections)
	}
	return m
}

// ObserveOperation records one finished call.
func (m *Metrics) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.Duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ConnectionOpened increments the open connection gauge.
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.OpenConnections.Inc()
}

// ConnectionClosed decrements the open connection gauge.
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.OpenConnections.Dec()
}
