// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package indexer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
)

const (
	riskSummaryClass = "RiskSummary"
	chunkSize        = 1000
	chunkOverlap     = 100
)

// Indexer chunks risk summaries and batch-imports them into Weaviate.
// Stale chunks for the provider are removed first so retrieval only ever
// sees the latest assessment.
type Indexer struct {
	client *weaviate.Client
}

// New wraps a connected Weaviate client.
func New(client *weaviate.Client) *Indexer {
	return &Indexer{client: client}
}

// IndexSummary pushes the textual summary of a completed assessment.
// Returns an error for logging only; callers must not fail the pipeline
// on it.
func (ix *Indexer) IndexSummary(ctx context.Context, rec datatypes.ProviderRecord, a datatypes.RiskAssessment) error {
	if ix == nil || ix.client == nil {
		return nil
	}

	summary := BuildSummary(rec, a)

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)
	chunks, err := splitter.SplitText(summary)
	if err != nil {
		return fmt.Errorf("failed to split risk summary: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	if err := ix.deleteStale(ctx, rec.ID); err != nil {
		slog.Warn("Failed to delete stale risk summary chunks, continuing",
			"provider_id", rec.ID, "error", err)
	}

	objects := make([]*models.Object, len(chunks))
	for i, chunk := range chunks {
		// Content-derived IDs keep re-pushes idempotent.
		hash := sha256.Sum256([]byte(rec.ID + chunk))
		chunkUUID, _ := uuid.FromBytes(hash[:16])

		objects[i] = &models.Object{
			Class: riskSummaryClass,
			ID:    strfmt.UUID(chunkUUID.String()),
			Properties: map[string]interface{}{
				"content":          chunk,
				"provider_id":      rec.ID,
				"risk_level":       string(a.Level),
				"aggregated_score": a.AggregatedScore,
				"evaluated_at":     a.EvaluatedAt.UnixMilli(),
			},
		}
	}

	resp, err := ix.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to batch import risk summary: %w", err)
	}

	imported := 0
	for _, item := range resp {
		if item.Result != nil && item.Result.Status != nil && *item.Result.Status == "SUCCESS" {
			imported++
		}
	}
	slog.Info("Indexed risk summary",
		"provider_id", rec.ID,
		"chunks", imported,
		"level", a.Level)
	return nil
}

func (ix *Indexer) deleteStale(ctx context.Context, providerID string) error {
	where := filters.Where().
		WithPath([]string{"provider_id"}).
		WithOperator(filters.Equal).
		WithValueString(providerID)

	delCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	_, err := ix.client.Batch().ObjectsBatchDeleter().
		WithClassName(riskSummaryClass).
		WithWhere(where).
		Do(delCtx)
	return err
}
