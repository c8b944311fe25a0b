// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that end up in
// dispatch decisions, log lines, or file paths. Using these validators keeps
// hostile manifest content and request payloads from smuggling control
// characters or unbounded strings into the routing layer.
package validation

import (
	"fmt"
	"regexp"
)

// routeKeyPattern matches valid route key names.
// Allows: letters, digits, underscores, dots, hyphens; must start with a
// letter or underscore. Max length: 64 characters.
var routeKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]{0,63}$`)

// actionNamePattern matches valid action names.
// Same shape as route keys but also allows forward slashes for namespacing
// (for example "store/checkout"). Max length: 128 characters.
var actionNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_./\-]{0,127}$`)

// ValidateRouteKey validates a route key name from a manifest or request.
//
// Valid keys:
//   - 1-64 characters
//   - Letters, digits, underscores, dots, hyphens
//   - First character a letter or underscore
//
// Returns an error if the key is invalid.
//
// Example:
//
//	if err := validation.ValidateRouteKey(key); err != nil {
//	    return fmt.Errorf("invalid route key: %w", err)
//	}
func ValidateRouteKey(key string) error {
	if key == "" {
		return fmt.Errorf("route key cannot be empty")
	}
	if !routeKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid route key: %q (must be 1-64 chars, start with a letter or underscore, and contain only letters, digits, '_', '.', '-')", key)
	}
	return nil
}

// ValidateRouteKeys validates multiple route key names.
// Returns an error listing all invalid keys if any fail validation.
func ValidateRouteKeys(keys []string) error {
	var invalid []string
	for _, k := range keys {
		if err := ValidateRouteKey(k); err != nil {
			invalid = append(invalid, k)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid route keys: %q", invalid)
	}
	return nil
}

// ValidateActionName validates an action name from a manifest.
//
// Valid names follow the route key rules but may additionally contain
// forward slashes and run up to 128 characters.
func ValidateActionName(name string) error {
	if name == "" {
		return fmt.Errorf("action name cannot be empty")
	}
	if !actionNamePattern.MatchString(name) {
		return fmt.Errorf("invalid action name: %q (must be 1-128 chars, start with a letter or underscore, and contain only letters, digits, '_', '.', '/', '-')", name)
	}
	return nil
}
