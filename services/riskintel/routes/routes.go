// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/engine"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/handlers"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/store"
)

func SetupRoutes(router *gin.Engine, eng *engine.Engine, providers store.ProviderStore) {
	router.GET("/health", handlers.HealthCheck)

	// API version 1 group
	v1 := router.Group("/v1")
	{
		risk := v1.Group("/risk")
		{
			risk.GET("/calc/:providerId", handlers.CalculateRisk(eng))
			risk.GET("/status/:providerId", handlers.GetRiskStatus(eng))
			risk.POST("/resubmit/:providerId", handlers.ResubmitRisk(eng))
			risk.POST("/refresh/:providerId", handlers.RefreshRisk(eng))
		}
		prov := v1.Group("/providers")
		{
			prov.POST("", handlers.CreateProvider(providers))
			prov.GET("", handlers.ListProviders(providers))
			prov.GET("/:providerId", handlers.GetProvider(providers))
		}
	}
}
