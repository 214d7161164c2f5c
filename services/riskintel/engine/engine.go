// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package engine orchestrates the risk intelligence pipeline: concurrent
// signal collection, deterministic scoring, explanation fusion, weighted
// aggregation, and versioned persistence of the provider record.
//
// All read-modify-write cycles on one provider run under a per-provider
// lock, so concurrent evaluations of different providers proceed in
// parallel while the same provider never races itself.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/explain"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/fusion"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/observability"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/scoring"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/signals"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/store"
)

const tracerName = "github.com/LatticeWorksAI/LatticeRisk/services/riskintel/engine"

// DefaultInFlightWindow is how long an InProgress marker suppresses
// duplicate refresh triggers before it is considered stale.
const DefaultInFlightWindow = 10 * time.Minute

// ============================================================================
// Dependencies
// ============================================================================

// Explainer is the explanation-service contract consumed by the engine.
type Explainer interface {
	Explain(ctx context.Context, p explain.Payload) (explain.Response, error)
}

// SummaryIndexer receives the textual summary of a completed assessment.
// Indexing is one-way: failures are logged, never raised.
type SummaryIndexer interface {
	IndexSummary(ctx context.Context, rec datatypes.ProviderRecord, a datatypes.RiskAssessment) error
}

// Config wires the engine's collaborators.
//
// Store, Source, and Explainer are required. Audit enables resubmission
// replay; Indexer and Metrics are optional and nil-safe.
type Config struct {
	Store     store.ProviderStore
	Source    signals.Source
	Audit     signals.Audit
	Explainer Explainer
	Policy    scoring.Policy
	Indexer   SummaryIndexer
	Metrics   *observability.PipelineMetrics

	// InFlightWindow bounds refresh suppression; zero means
	// DefaultInFlightWindow.
	InFlightWindow time.Duration
}

// Engine runs the evaluation pipeline.
type Engine struct {
	cfg   Config
	locks store.Locks
}

// New validates the configuration and builds an Engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, errors.New("engine requires a provider store")
	}
	if cfg.Source == nil {
		return nil, errors.New("engine requires a signal source")
	}
	if cfg.Explainer == nil {
		return nil, errors.New("engine requires an explanation client")
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid aggregation policy: %w", err)
	}
	if cfg.InFlightWindow <= 0 {
		cfg.InFlightWindow = DefaultInFlightWindow
	}
	return &Engine{cfg: cfg}, nil
}

// ============================================================================
// Pipeline entry points
// ============================================================================

// Evaluate runs the full pipeline for one provider: collect signals
// across the canonical categories, score deterministically, fuse with the
// explanation model's output and any persisted explanations, aggregate,
// and persist the new assessment. Returns the updated record.
func (e *Engine) Evaluate(ctx context.Context, providerID string) (datatypes.ProviderRecord, error) {
	return e.run(ctx, providerID, observability.ModeEvaluate, nil)
}

// Resubmit reruns fusion and aggregation against the audited signals of
// the last evaluation, with analyst notes folded into the explanation
// payload and the keyword adjustment table applied to the aggregate. No
// fresh signals are collected.
func (e *Engine) Resubmit(ctx context.Context, providerID string, analystNotes []string) (datatypes.ProviderRecord, error) {
	return e.run(ctx, providerID, observability.ModeResubmit, analystNotes)
}

func (e *Engine) run(ctx context.Context, providerID string, mode observability.Mode, analystNotes []string) (datatypes.ProviderRecord, error) {
	unlock := e.locks.Lock(providerID)
	defer unlock()

	start := time.Now()
	e.cfg.Metrics.RunStarted()
	defer e.cfg.Metrics.RunEnded()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "riskintel.pipeline")
	defer span.End()
	span.SetAttributes(
		attribute.String("provider.id", providerID),
		attribute.String("pipeline.mode", string(mode)),
	)

	rec, err := e.runLocked(ctx, providerID, mode, analystNotes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.cfg.Metrics.RecordRun(mode, false, time.Since(start).Seconds())
		return datatypes.ProviderRecord{}, err
	}

	e.cfg.Metrics.RecordRun(mode, true, time.Since(start).Seconds())
	slog.Info("Risk pipeline completed",
		"provider_id", providerID,
		"mode", mode,
		"score", rec.Risk.AggregatedScore,
		"level", rec.Risk.Level,
		"duration", time.Since(start))
	return rec, nil
}

// runLocked advances the pipeline state machine under the provider lock.
func (e *Engine) runLocked(ctx context.Context, providerID string, mode observability.Mode, analystNotes []string) (datatypes.ProviderRecord, error) {
	state := StateIdle

	rec, err := e.cfg.Store.Get(ctx, providerID)
	if err != nil {
		return datatypes.ProviderRecord{}, err
	}

	rec.RiskStatus = datatypes.StatusInProgress
	rec.RiskTriggeredAt = time.Now().UTC()
	if mode == observability.ModeResubmit {
		rec.AppendHistory("Risk Resubmission Triggered", nil, "")
	} else {
		rec.AppendHistory("Risk Evaluation Triggered", nil, "")
	}
	if err := e.cfg.Store.Save(ctx, rec); err != nil {
		return datatypes.ProviderRecord{}, fmt.Errorf("failed to mark evaluation in progress: %w", err)
	}

	var (
		collected     map[datatypes.CategoryKey]datatypes.CategorySignals
		deterministic map[datatypes.CategoryKey]float64
	)

	if mode == observability.ModeEvaluate {
		state = e.advance(providerID, state, StateCollectingSignals)
		e.captureSnapshot(&rec)

		collected = signals.CollectAll(ctx, e.cfg.Source, rec, e.cfg.Audit)
		totalHits := 0
		for cat, cs := range collected {
			totalHits += cs.Hits
			e.cfg.Metrics.RecordSignalHits(string(cat), cs.Hits)
		}
		rec.AppendHistory("Signal Collection Completed", nil,
			fmt.Sprintf("%d hits across %d categories", totalHits, len(collected)))

		state = e.advance(providerID, state, StateScoring)
		deterministic = scoring.ScoreAll(collected)
	} else {
		collected = e.replaySignals(ctx, providerID)
	}

	state = e.advance(providerID, state, StateAwaitingExplanation)
	payload := explain.NewPayload(rec, collected, analystNotes)
	modelResp, err := e.cfg.Explainer.Explain(ctx, payload)
	if err != nil {
		// Degraded, not fatal: fusion falls back to deterministic
		// scores and persisted explanations.
		e.cfg.Metrics.RecordExplanationFailure()
		slog.Warn("Explanation service unavailable, continuing with prior explanations",
			"provider_id", providerID, "error", err)
		rec.AppendHistory("Explanation Service Degraded", nil, err.Error())
		modelResp = explain.Response{}
	}

	state = e.advance(providerID, state, StateFusing)
	fused := fusion.Fuse(fusion.Inputs{
		Deterministic: deterministic,
		FreshSignals:  mode == observability.ModeEvaluate,
		Signals:       collected,
		Model:         modelResp,
		Prior:         rec.Risk,
	})

	state = e.advance(providerID, state, StateAggregating)

	// Keyword adjustments shift the aggregate only. The persisted
	// category scores stay un-adjusted so a repeated resubmission with
	// identical notes reproduces the same output instead of compounding
	// the bonus through the prior-score fallback.
	aggregationInput := fused.Categories
	var adjustments []string
	if mode == observability.ModeResubmit {
		aggregationInput, adjustments = e.cfg.Policy.ApplyKeywordBonuses(
			fused.Categories, strings.Join(analystNotes, "\n"))
	}
	score, level := e.cfg.Policy.Aggregate(aggregationInput)

	assessment := datatypes.RiskAssessment{
		ProviderID:           providerID,
		Categories:           fused.Categories,
		AggregatedScore:      score,
		Level:                level,
		Confidence:           fused.Confidence,
		OriginalExplanations: fused.OriginalExplanations,
		EvaluatedAt:          time.Now().UTC(),
	}

	rec.Risk = &assessment
	rec.RiskStatus = datatypes.StatusCompleted
	rec.AppendHistory(completionEvent(mode), &score, completionNote(modelResp, fused.Confidence, adjustments))

	if err := e.cfg.Store.Save(ctx, rec); err != nil {
		e.advance(providerID, state, StateFailed)
		return datatypes.ProviderRecord{}, fmt.Errorf("failed to persist risk assessment: %w", err)
	}
	e.advance(providerID, state, StatePersisted)

	if e.cfg.Indexer != nil {
		if err := e.cfg.Indexer.IndexSummary(ctx, rec, assessment); err != nil {
			slog.Warn("Failed to index risk summary",
				"provider_id", providerID, "error", err)
		}
	}

	return rec, nil
}

// advance logs one state transition and returns the new state.
func (e *Engine) advance(providerID string, from, to State) State {
	slog.Debug("Pipeline state transition",
		"provider_id", providerID, "from", from, "to", to)
	return to
}

// captureSnapshot records the pre-evaluation posture exactly once, before
// the first full evaluation touches the record. Later runs never rewrite
// it.
func (e *Engine) captureSnapshot(rec *datatypes.ProviderRecord) {
	if rec.PreSnapshot != nil {
		return
	}
	snap := &datatypes.PreEvaluationSnapshot{
		Categories: make(map[datatypes.CategoryKey]float64),
		TakenAt:    time.Now().UTC(),
	}
	if rec.Risk != nil {
		snap.Score = rec.Risk.AggregatedScore
		for cat, res := range rec.Risk.Categories {
			snap.Categories[cat] = res.Score
		}
	}
	rec.PreSnapshot = snap
}

// replaySignals loads the audited signals of the last evaluation. Missing
// audit data degrades to empty signals per category; fusion then leans on
// the persisted assessment.
func (e *Engine) replaySignals(ctx context.Context, providerID string) map[datatypes.CategoryKey]datatypes.CategorySignals {
	if e.cfg.Audit == nil {
		return emptySignals()
	}
	replayed, err := e.cfg.Audit.Load(ctx, providerID)
	if err != nil {
		slog.Warn("Failed to replay audited signals, resubmitting without them",
			"provider_id", providerID, "error", err)
		return emptySignals()
	}
	return replayed
}

func emptySignals() map[datatypes.CategoryKey]datatypes.CategorySignals {
	out := make(map[datatypes.CategoryKey]datatypes.CategorySignals)
	for _, cat := range datatypes.CanonicalCategories() {
		out[cat] = datatypes.CategorySignals{Category: cat}
	}
	return out
}

func completionEvent(mode observability.Mode) string {
	if mode == observability.ModeResubmit {
		return "Risk Resubmission Completed"
	}
	return "Risk Evaluation Completed"
}

func completionNote(resp explain.Response, confidence float64, adjustments []string) string {
	source := "model"
	if resp.Empty() {
		source = "fallback"
	}
	note := fmt.Sprintf("Explanations from %s, confidence %.2f", source, confidence)
	if len(adjustments) > 0 {
		note += "; keyword adjustments: " + strings.Join(adjustments, ", ")
	}
	return note
}

// ============================================================================
// Refresh and status
// ============================================================================

// Refresh triggers a background re-evaluation and returns immediately.
// The returned bool reports whether a run was started; a trigger arriving
// while an evaluation is already in flight (and not stale) is suppressed.
func (e *Engine) Refresh(ctx context.Context, providerID string) (bool, error) {
	unlock := e.locks.Lock(providerID)

	rec, err := e.cfg.Store.Get(ctx, providerID)
	if err != nil {
		unlock()
		return false, err
	}

	if rec.RiskStatus == datatypes.StatusInProgress &&
		time.Since(rec.RiskTriggeredAt) < e.cfg.InFlightWindow {
		unlock()
		e.cfg.Metrics.RecordRefreshSuppressed()
		slog.Info("Refresh suppressed, evaluation already in flight",
			"provider_id", providerID,
			"triggered_at", rec.RiskTriggeredAt)
		return false, nil
	}

	rec.RiskStatus = datatypes.StatusInProgress
	rec.RiskTriggeredAt = time.Now().UTC()
	if err := e.cfg.Store.Save(ctx, rec); err != nil {
		unlock()
		return false, fmt.Errorf("failed to mark refresh in progress: %w", err)
	}
	unlock()

	// Detached from the request context: the caller's HTTP request
	// finishing must not cancel the background run.
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := e.Evaluate(bgCtx, providerID); err != nil {
			slog.Error("Background refresh evaluation failed",
				"provider_id", providerID, "error", err)
		}
	}()

	return true, nil
}

// StatusReport is the read-only view of a provider's risk state.
type StatusReport struct {
	ProviderID      string                                             `json:"provider_id"`
	Status          datatypes.EvaluationStatus                         `json:"status"`
	AggregatedScore *float64                                           `json:"aggregated_score,omitempty"`
	Level           datatypes.RiskLevel                                `json:"level,omitempty"`
	Confidence      float64                                            `json:"confidence,omitempty"`
	Categories      map[datatypes.CategoryKey]datatypes.CategoryResult `json:"categories,omitempty"`
	EvaluatedAt     *time.Time                                         `json:"evaluated_at,omitempty"`
	TriggeredAt     *time.Time                                         `json:"triggered_at,omitempty"`
	PreSnapshot     *datatypes.PreEvaluationSnapshot                   `json:"pre_evaluation_snapshot,omitempty"`
	History         []datatypes.HistoryEvent                           `json:"history,omitempty"`
}

// Status reads the current risk state without side effects. A provider
// that was never evaluated reports Pending with no score or categories;
// legacy records with bare numeric category scores are normalized on the
// way out by the record's own decoding.
func (e *Engine) Status(ctx context.Context, providerID string) (StatusReport, error) {
	rec, err := e.cfg.Store.Get(ctx, providerID)
	if err != nil {
		return StatusReport{}, err
	}

	report := StatusReport{
		ProviderID:  providerID,
		Status:      rec.RiskStatus,
		PreSnapshot: rec.PreSnapshot,
		History:     rec.RiskHistory,
	}
	if report.Status == "" {
		report.Status = datatypes.StatusPending
	}
	if !rec.RiskTriggeredAt.IsZero() {
		t := rec.RiskTriggeredAt
		report.TriggeredAt = &t
	}
	if rec.Risk != nil {
		score := rec.Risk.AggregatedScore
		evaluatedAt := rec.Risk.EvaluatedAt
		report.AggregatedScore = &score
		report.Level = rec.Risk.Level
		report.Confidence = rec.Risk.Confidence
		report.Categories = rec.Risk.Categories
		report.EvaluatedAt = &evaluatedAt
	}
	return report, nil
}
