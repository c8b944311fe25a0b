// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianRoute/services/dispatch/catalog"
	"github.com/AleutianAI/AleutianRoute/services/dispatch/datatypes"
)

// ListActions returns the current catalog snapshot: every declared action,
// attribute-routed ones included, with the version stamp.
func ListActions(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		col, err := store.Snapshot()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, datatypes.ErrorResponse{Error: "Action catalog unavailable"})
			return
		}

		resp := datatypes.ActionListResponse{
			Version: col.Version,
			Count:   len(col.Actions),
			Actions: make([]datatypes.SelectedAction, 0, len(col.Actions)),
		}
		for _, a := range col.Actions {
			resp.Actions = append(resp.Actions, datatypes.SelectedAction{
				Name:    a.Name,
				Handler: a.Handler,
				Route:   a.RouteValues,
			})
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ActionsVersion returns only the catalog stamp. Clients poll it to decide
// whether a cached listing is stale; the stamp is opaque and only ever
// compared for equality.
func ActionsVersion(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, datatypes.VersionResponse{Version: store.Version()})
	}
}
