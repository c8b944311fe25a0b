// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the HTTP handlers of the dispatch service.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianRoute/services/dispatch/datatypes"
	"github.com/AleutianAI/AleutianRoute/services/dispatch/middleware"
	"github.com/AleutianAI/AleutianRoute/services/dispatch/observability"
	"github.com/AleutianAI/AleutianRoute/services/dispatch/selection"
)

// SelectActions answers selection queries against the current table.
//
// The request body carries observed route values; the response carries the
// matching actions in declaration order, together with the catalog version
// the answer was computed from. An empty match is a 200 with an empty
// actions list: not finding an action is a valid outcome, deciding what to
// do about it (404, fallback routing) is the caller's business.
func SelectActions(cache *selection.Cache, metrics *observability.DispatchMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.SelectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "Invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}

		start := time.Now()
		table, err := cache.Current()
		if err != nil {
			slog.Error("selection table unavailable",
				"request_id", middleware.GetRequestID(c), "error", err)
			c.JSON(http.StatusServiceUnavailable, datatypes.ErrorResponse{Error: "Action catalog unavailable"})
			return
		}

		values := selection.StringValues(req.RouteValues)
		actions, kind := table.Match(values)

		if metrics != nil {
			metrics.SelectsTotal.WithLabelValues(kind.String()).Inc()
			metrics.SelectDurationSeconds.WithLabelValues(kind.String()).
				Observe(time.Since(start).Seconds())
		}

		resp := datatypes.SelectResponse{
			Version: table.Version(),
			Match:   kind.String(),
			Actions: make([]datatypes.SelectedAction, 0, len(actions)),
		}
		for _, a := range actions {
			resp.Actions = append(resp.Actions, datatypes.SelectedAction{
				Name:    a.Name,
				Handler: a.Handler,
				Route:   a.RouteValues,
			})
		}
		c.JSON(http.StatusOK, resp)
	}
}
