// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides metrics and instrumentation for the dispatch service.
//
// # Description
//
// This package implements Prometheus metrics for monitoring action
// selection. Metrics include:
//   - Selection counters (by match kind: ordinal, case_insensitive, miss)
//   - Selection latency histograms
//   - Table rebuild counters and catalog reload counters
//   - Current action count gauge
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "aleutian"

// Subsystem for dispatch metrics
const dispatchSubsystem = "dispatch"

// DispatchMetrics holds all Prometheus metrics for action selection.
//
// Initialize once at startup via NewDispatchMetrics and share the instance;
// registering the same metrics twice panics.
type DispatchMetrics struct {
	// SelectsTotal counts selection queries by match kind.
	// Labels: match (ordinal, case_insensitive, miss)
	SelectsTotal *prometheus.CounterVec

	// SelectDurationSeconds measures end-to-end selection latency,
	// including the staleness check and any table rebuild it triggered.
	// Labels: match (ordinal, case_insensitive, miss)
	SelectDurationSeconds *prometheus.HistogramVec

	// TableRebuildsTotal counts selection table rebuilds.
	TableRebuildsTotal prometheus.Counter

	// CatalogReloadsTotal counts manifest reload attempts.
	// Labels: status (success, error)
	CatalogReloadsTotal *prometheus.CounterVec

	// ActionsCurrent tracks the action count of the current catalog
	// snapshot, attribute-routed actions included.
	ActionsCurrent prometheus.Gauge
}

// NewDispatchMetrics creates and registers the dispatch metrics on the
// given registerer. Pass prometheus.DefaultRegisterer in production; tests
// pass a fresh registry to stay isolated.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	factory := promauto.With(reg)

	return &DispatchMetrics{
		SelectsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: dispatchSubsystem,
				Name:      "selects_total",
				Help:      "Total number of action selection queries by match kind",
			},
			[]string{"match"},
		),
		SelectDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: dispatchSubsystem,
				Name:      "select_duration_seconds",
				Help:      "Action selection latency in seconds",
				Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
			},
			[]string{"match"},
		),
		TableRebuildsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: dispatchSubsystem,
				Name:      "table_rebuilds_total",
				Help:      "Total number of selection table rebuilds",
			},
		),
		CatalogReloadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: dispatchSubsystem,
				Name:      "catalog_reloads_total",
				Help:      "Total number of action manifest reload attempts by status",
			},
			[]string{"status"},
		),
		ActionsCurrent: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: dispatchSubsystem,
				Name:      "actions_current",
				Help:      "Action count of the current catalog snapshot",
			},
		),
	}
}

// ObserveReload records one manifest reload attempt.
func (m *DispatchMetrics) ObserveReload(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.CatalogReloadsTotal.WithLabelValues(status).Inc()
}
