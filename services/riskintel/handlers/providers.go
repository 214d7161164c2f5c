// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/store"
)

// CreateProviderRequest registers a provider for risk tracking.
type CreateProviderRequest struct {
	ID            string `json:"id" binding:"omitempty,max=128"`
	Name          string `json:"name" binding:"required,max=256"`
	LicenseNumber string `json:"license_number" binding:"omitempty,max=64"`
	WebResearch   string `json:"web_research" binding:"omitempty,max=20000"`
	DocSummary    string `json:"doc_summary" binding:"omitempty,max=20000"`
}

// CreateProvider upserts a provider record. An omitted ID gets a
// generated UUID. Risk state of an existing record survives the update.
func CreateProvider(providers store.ProviderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateProviderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}

		rec := datatypes.ProviderRecord{
			ID:            req.ID,
			Name:          req.Name,
			LicenseNumber: req.LicenseNumber,
			WebResearch:   req.WebResearch,
			DocSummary:    req.DocSummary,
		}
		if existing, err := providers.Get(c.Request.Context(), req.ID); err == nil {
			rec.Risk = existing.Risk
			rec.RiskStatus = existing.RiskStatus
			rec.RiskTriggeredAt = existing.RiskTriggeredAt
			rec.RiskHistory = existing.RiskHistory
			rec.PreSnapshot = existing.PreSnapshot
		}

		if err := providers.Save(c.Request.Context(), rec); err != nil {
			slog.Error("Failed to save provider record", "provider_id", req.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save provider"})
			return
		}
		slog.Info("Provider registered", "provider_id", rec.ID, "name", rec.Name)
		c.JSON(http.StatusCreated, gin.H{"provider_id": rec.ID})
	}
}

// GetProvider returns one provider record.
func GetProvider(providers store.ProviderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		providerID := c.Param("providerId")
		rec, err := providers.Get(c.Request.Context(), providerID)
		if err != nil {
			abortWithError(c, providerID, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

// ListProviders returns all registered providers.
func ListProviders(providers store.ProviderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		recs, err := providers.List(c.Request.Context())
		if err != nil {
			slog.Error("Failed to list providers", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list providers"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"providers": recs, "count": len(recs)})
	}
}
