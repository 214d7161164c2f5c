// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/engine"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/explain"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/scoring"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/store"
)

// constSource yields one fixed reputation hit for every provider.
type constSource struct{}

func (constSource) Collect(_ context.Context, _ datatypes.ProviderRecord, category datatypes.CategoryKey) (datatypes.CategorySignals, error) {
	cs := datatypes.CategorySignals{Category: category}
	if category == datatypes.CategoryReputation {
		cs.Entries = []datatypes.SignalEntry{{ID: "r1", Severity: 0.9}}
	}
	return cs, nil
}

// constExplainer returns one fixed explanation.
type constExplainer struct{}

func (constExplainer) Explain(context.Context, explain.Payload) (explain.Response, error) {
	return explain.Response{
		CategoryExplanations: map[datatypes.CategoryKey]string{
			datatypes.CategoryReputation: "Trade press coverage.",
		},
		Confidence: 0.8,
	}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	providers := store.NewMemoryStore()
	eng, err := engine.New(engine.Config{
		Store:     providers,
		Source:    constSource{},
		Explainer: constExplainer{},
		Policy:    scoring.DefaultPolicy(),
	})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/health", HealthCheck)
	router.GET("/v1/risk/calc/:providerId", CalculateRisk(eng))
	router.GET("/v1/risk/status/:providerId", GetRiskStatus(eng))
	router.POST("/v1/risk/resubmit/:providerId", ResubmitRisk(eng))
	router.POST("/v1/risk/refresh/:providerId", RefreshRisk(eng))
	return router, providers
}

func seedProvider(t *testing.T, providers *store.MemoryStore, id string) {
	t.Helper()
	require.NoError(t, providers.Save(context.Background(), datatypes.ProviderRecord{
		ID:   id,
		Name: "Acme Diagnostics",
	}))
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t)
	w, body := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "riskintel", body["service"])
}

func TestCalculateRisk(t *testing.T) {
	router, providers := newTestRouter(t)
	seedProvider(t, providers, "prov-1")

	t.Run("success", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodGet, "/v1/risk/calc/prov-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "prov-1", body["provider_id"])

		risk, ok := body["risk"].(map[string]any)
		require.True(t, ok)
		categories, ok := risk["categories"].(map[string]any)
		require.True(t, ok)
		assert.Len(t, categories, len(datatypes.CanonicalCategories()))
		assert.NotNil(t, body["pre_evaluation_snapshot"])
		assert.NotEmpty(t, body["history"])
	})

	t.Run("unknown provider", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodGet, "/v1/risk/calc/ghost", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "provider not found", body["error"])
	})
}

func TestGetRiskStatus(t *testing.T) {
	router, providers := newTestRouter(t)
	seedProvider(t, providers, "prov-1")

	t.Run("pending before evaluation", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodGet, "/v1/risk/status/prov-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, string(datatypes.StatusPending), body["status"])
		assert.NotContains(t, body, "aggregated_score")
	})

	t.Run("completed after evaluation", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodGet, "/v1/risk/calc/prov-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w, body := doJSON(t, router, http.MethodGet, "/v1/risk/status/prov-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, string(datatypes.StatusCompleted), body["status"])
		assert.NotNil(t, body["aggregated_score"])
		assert.NotEmpty(t, body["history"])
	})

	t.Run("unknown provider", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodGet, "/v1/risk/status/ghost", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestResubmitRisk(t *testing.T) {
	router, providers := newTestRouter(t)
	seedProvider(t, providers, "prov-1")

	// Evaluate once so there is something to resubmit against.
	w, _ := doJSON(t, router, http.MethodGet, "/v1/risk/calc/prov-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("with analyst notes", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/v1/risk/resubmit/prov-1",
			map[string]any{"notes": []string{"Cleared by compliance."}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "prov-1", body["provider_id"])
		assert.NotNil(t, body["risk"])
	})

	t.Run("empty body is valid", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodPost, "/v1/risk/resubmit/prov-1",
			map[string]any{})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/risk/resubmit/prov-1",
			bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown provider", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodPost, "/v1/risk/resubmit/ghost",
			map[string]any{})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRefreshRisk(t *testing.T) {
	router, providers := newTestRouter(t)

	t.Run("schedules a background run", func(t *testing.T) {
		seedProvider(t, providers, "prov-1")
		w, body := doJSON(t, router, http.MethodPost, "/v1/risk/refresh/prov-1", nil)
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "scheduled", body["status"])
	})

	t.Run("suppresses a duplicate trigger", func(t *testing.T) {
		// A separate provider already marked in flight.
		require.NoError(t, providers.Save(context.Background(), datatypes.ProviderRecord{
			ID:              "prov-2",
			Name:            "Busy Provider",
			RiskStatus:      datatypes.StatusInProgress,
			RiskTriggeredAt: time.Now().UTC(),
		}))

		w, body := doJSON(t, router, http.MethodPost, "/v1/risk/refresh/prov-2", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "suppressed", body["status"])
	})

	t.Run("unknown provider", func(t *testing.T) {
		w, _ := doJSON(t, router, http.MethodPost, "/v1/risk/refresh/ghost", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
