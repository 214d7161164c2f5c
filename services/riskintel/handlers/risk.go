// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers contains the gin handlers for the risk intelligence
// API. Handlers are thin: parameter extraction, body binding, and error
// mapping; all pipeline semantics live in the engine.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/engine"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/store"
)

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "riskintel"})
}

// CalculateRisk runs a full synchronous evaluation for the provider and
// returns the new assessment with the pre-evaluation snapshot for drift
// display.
func CalculateRisk(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		providerID := c.Param("providerId")
		slog.Info("Received risk calculation request", "provider_id", providerID)

		rec, err := eng.Evaluate(c.Request.Context(), providerID)
		if err != nil {
			abortWithError(c, providerID, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"provider_id":             rec.ID,
			"risk":                    rec.Risk,
			"pre_evaluation_snapshot": rec.PreSnapshot,
			"history":                 rec.RiskHistory,
		})
	}
}

// GetRiskStatus reads the current risk state without side effects.
func GetRiskStatus(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		providerID := c.Param("providerId")

		report, err := eng.Status(c.Request.Context(), providerID)
		if err != nil {
			abortWithError(c, providerID, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// ResubmitRequest carries optional analyst notes for a resubmission.
type ResubmitRequest struct {
	Notes []string `json:"notes" binding:"omitempty,dive,max=4000"`
}

// ResubmitRisk reruns fusion and aggregation against the audited signals
// of the last evaluation, folding analyst notes into the explanation
// payload and the keyword adjustment table.
func ResubmitRisk(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		providerID := c.Param("providerId")

		var req ResubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		slog.Info("Received risk resubmission request",
			"provider_id", providerID, "notes", len(req.Notes))

		rec, err := eng.Resubmit(c.Request.Context(), providerID, req.Notes)
		if err != nil {
			abortWithError(c, providerID, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"provider_id": rec.ID,
			"risk":        rec.Risk,
			"history":     rec.RiskHistory,
		})
	}
}

// RefreshRisk schedules a background re-evaluation. Responds 202 when a
// run was started and 200 when the trigger was suppressed because an
// evaluation is already in flight.
func RefreshRisk(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		providerID := c.Param("providerId")

		started, err := eng.Refresh(c.Request.Context(), providerID)
		if err != nil {
			abortWithError(c, providerID, err)
			return
		}
		if !started {
			c.JSON(http.StatusOK, gin.H{
				"provider_id": providerID,
				"status":      "suppressed",
				"detail":      "an evaluation is already in flight",
			})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"provider_id": providerID,
			"status":      "scheduled",
		})
	}
}

func abortWithError(c *gin.Context, providerID string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "provider not found", "provider_id": providerID})
		return
	}
	slog.Error("Risk operation failed", "provider_id", providerID, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "risk operation failed"})
}
