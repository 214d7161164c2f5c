// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the risk
// pipeline: evaluation counters, stage durations, signal volume, and
// explanation-service degradation tracking. Expose via /metrics and pair
// with Prometheus + Grafana for dashboards and alerting.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "lattice"

const riskSubsystem = "risk"

// Mode labels the two pipeline entry points.
type Mode string

const (
	ModeEvaluate Mode = "evaluate"
	ModeResubmit Mode = "resubmit"
)

// PipelineMetrics holds all Prometheus metrics for risk evaluations.
// Initialize once at startup via InitMetrics. All operations are
// thread-safe via Prometheus's internal locking.
type PipelineMetrics struct {
	// EvaluationsTotal counts pipeline runs by mode and status.
	// Labels: mode (evaluate, resubmit), status (success, error)
	EvaluationsTotal *prometheus.CounterVec

	// PipelineDurationSeconds measures full pipeline duration.
	// Labels: mode
	PipelineDurationSeconds *prometheus.HistogramVec

	// SignalHitsTotal counts collected watchlist hits by category.
	SignalHitsTotal *prometheus.CounterVec

	// ExplanationFailuresTotal counts degraded explanation calls.
	ExplanationFailuresTotal prometheus.Counter

	// InFlightEvaluations tracks currently running pipelines.
	InFlightEvaluations prometheus.Gauge

	// RefreshSuppressedTotal counts duplicate refresh triggers that were
	// dropped because an evaluation was already in flight.
	RefreshSuppressedTotal prometheus.Counter
}

// DefaultMetrics is the singleton instance, set by InitMetrics.
var DefaultMetrics *PipelineMetrics

// InitMetrics creates and registers all pipeline metrics with the default
// registry. Call once at startup; a second call panics on duplicate
// registration.
func InitMetrics() *PipelineMetrics {
	DefaultMetrics = &PipelineMetrics{
		EvaluationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: riskSubsystem,
				Name:      "evaluations_total",
				Help:      "Total risk pipeline runs by mode and status",
			},
			[]string{"mode", "status"},
		),

		PipelineDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: riskSubsystem,
				Name:      "pipeline_duration_seconds",
				Help:      "Full pipeline duration in seconds by mode",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"mode"},
		),

		SignalHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: riskSubsystem,
				Name:      "signal_hits_total",
				Help:      "Total collected watchlist hits by category",
			},
			[]string{"category"},
		),

		ExplanationFailuresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: riskSubsystem,
				Name:      "explanation_failures_total",
				Help:      "Explanation-service calls that degraded to prior data",
			},
		),

		InFlightEvaluations: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: riskSubsystem,
				Name:      "in_flight_evaluations",
				Help:      "Number of risk pipelines currently running",
			},
		),

		RefreshSuppressedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: riskSubsystem,
				Name:      "refresh_suppressed_total",
				Help:      "Refresh triggers dropped because a run was already in flight",
			},
		),
	}

	return DefaultMetrics
}

// RecordRun records a completed pipeline run. Nil-safe so the engine can
// run without metrics in tests.
func (m *PipelineMetrics) RecordRun(mode Mode, success bool, seconds float64) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	m.EvaluationsTotal.WithLabelValues(string(mode), status).Inc()
	m.PipelineDurationSeconds.WithLabelValues(string(mode)).Observe(seconds)
}

// RecordSignalHits records collected hit counts for one category.
func (m *PipelineMetrics) RecordSignalHits(category string, hits int) {
	if m == nil || hits == 0 {
		return
	}
	m.SignalHitsTotal.WithLabelValues(category).Add(float64(hits))
}

// RecordExplanationFailure records one degraded explanation call.
func (m *PipelineMetrics) RecordExplanationFailure() {
	if m == nil {
		return
	}
	m.ExplanationFailuresTotal.Inc()
}

// RunStarted increments the in-flight gauge.
func (m *PipelineMetrics) RunStarted() {
	if m == nil {
		return
	}
	m.InFlightEvaluations.Inc()
}

// RunEnded decrements the in-flight gauge.
func (m *PipelineMetrics) RunEnded() {
	if m == nil {
		return
	}
	m.InFlightEvaluations.Dec()
}

// RecordRefreshSuppressed records one dropped duplicate trigger.
func (m *PipelineMetrics) RecordRefreshSuppressed() {
	if m == nil {
		return
	}
	m.RefreshSuppressedTotal.Inc()
}
