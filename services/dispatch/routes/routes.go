// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/AleutianRoute/services/dispatch/catalog"
	"github.com/AleutianAI/AleutianRoute/services/dispatch/handlers"
	"github.com/AleutianAI/AleutianRoute/services/dispatch/observability"
	"github.com/AleutianAI/AleutianRoute/services/dispatch/selection"
)

func SetupRoutes(router *gin.Engine, cache *selection.Cache, store *catalog.Store,
	metrics *observability.DispatchMetrics) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.POST("/dispatch/select", handlers.SelectActions(cache, metrics))
		// Catalog inspection routes
		actions := v1.Group("/actions")
		{
			actions.GET("", handlers.ListActions(store))
			actions.GET("/version", handlers.ActionsVersion(store))
		}
	}
}
