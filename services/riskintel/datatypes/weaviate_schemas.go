// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"context"
	"log"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// GetRiskSummarySchema returns the schema for the RiskSummary class.
//
// RiskSummary holds the textual rendering of a completed risk assessment
// (scores, notes, historical snapshot) pushed after each evaluation so the
// retrieval side can answer questions about a provider's risk posture.
func GetRiskSummarySchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       "RiskSummary",
		Description: "A chunk of the textual summary of a provider risk assessment.",
		Vectorizer:  "none",
		InvertedIndexConfig: &models.InvertedIndexConfig{
			IndexNullState:  true,
			IndexTimestamps: true,
		},
		Properties: []*models.Property{
			{
				Name:         "content",
				DataType:     []string{"text"},
				Description:  "The summary chunk text.",
				Tokenization: "word",
			},
			{
				Name:            "provider_id",
				DataType:        []string{"text"},
				Description:     "The provider this summary belongs to.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "risk_level",
				DataType:        []string{"text"},
				Description:     "Qualitative level at evaluation time (Low/Moderate/High).",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "aggregated_score",
				DataType:        []string{"number"},
				Description:     "Aggregated risk score at evaluation time.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "evaluated_at",
				DataType:        []string{"number"},
				Description:     "Unix milliseconds of the evaluation this chunk describes.",
				IndexFilterable: indexFilterable,
			},
		},
	}
}

// EnsureWeaviateSchema creates any missing classes on boot.
func EnsureWeaviateSchema(client *weaviate.Client) {
	schemaGetters := []func() *models.Class{
		GetRiskSummarySchema,
	}

	for _, getSchema := range schemaGetters {
		class := getSchema()
		slog.Info("Checking schema", "class", class.Class)

		_, err := client.Schema().ClassGetter().WithClassName(class.Class).Do(context.Background())
		if err != nil {
			// The client errors when the class is absent; create it now.
			slog.Info("Schema not found, creating it...", "class", class.Class)
			err := client.Schema().ClassCreator().WithClass(class).Do(context.Background())
			if err != nil {
				log.Fatalf("Failed to create schema for class %s: %v", class.Class, err)
			}
			slog.Info("Successfully created schema", "class", class.Class)
		} else {
			slog.Info("Schema already exists", "class", class.Class)
		}
	}
}
