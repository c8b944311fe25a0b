// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the request and response payloads of the
// dispatch service.
package datatypes

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/AleutianRoute/pkg/validation"
)

// dispatchValidate is the validator instance for dispatch datatypes.
var dispatchValidate *validator.Validate

func init() {
	dispatchValidate = validator.New()
}

// SelectRequest asks for the actions matching a set of observed route
// values.
//
// Values may be strings, numbers, booleans, or null; non-string values are
// converted to their invariant string form before lookup ({"id": 1} and
// {"id": "1"} select identically).
type SelectRequest struct {
	// RouteValues maps route key names to observed values.
	RouteValues map[string]any `json:"route_values" binding:"required" validate:"required,max=64"`
}

// Validate checks the request beyond JSON binding: map size limits via
// go-playground/validator tags, plus route key syntax for every key.
func (r *SelectRequest) Validate() error {
	if err := dispatchValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid select request: %w", err)
	}
	for k := range r.RouteValues {
		if err := validation.ValidateRouteKey(k); err != nil {
			return err
		}
	}
	return nil
}

// SelectedAction is one matched action in a response.
type SelectedAction struct {
	Name    string            `json:"name"`
	Handler string            `json:"handler"`
	Route   map[string]string `json:"route,omitempty"`
}

// SelectResponse carries the match result. Actions is empty (not an error)
// when nothing matched; callers typically turn that into a 404.
type SelectResponse struct {
	// Version is the catalog stamp the answering table was built from.
	Version string `json:"version"`

	// Match reports which index answered: "ordinal", "case_insensitive",
	// or "miss".
	Match string `json:"match"`

	// Actions lists the matching actions in declaration order.
	Actions []SelectedAction `json:"actions"`
}

// ActionListResponse is the catalog listing payload.
type ActionListResponse struct {
	Version string           `json:"version"`
	Count   int              `json:"count"`
	Actions []SelectedAction `json:"actions"`
}

// VersionResponse carries just the catalog stamp, for cheap staleness
// polling.
type VersionResponse struct {
	Version string `json:"version"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
