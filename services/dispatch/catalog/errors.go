// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package catalog loads and serves versioned action collections for the
// dispatch service.
//
// Actions are declared in a YAML manifest. The catalog parses and validates
// the manifest, stamps each parsed snapshot with the SHA-256 of the raw
// bytes (the selection layer only ever compares stamps for equality), and
// keeps the current snapshot in a Store that selection.Cache polls. A
// Watcher hot-reloads the manifest from disk when it changes; a reload that
// fails validation keeps the previous snapshot serving.
package catalog

import "errors"

// Sentinel errors for manifest parsing.
var (
	// ErrNoActions is returned when a manifest declares no actions at all.
	// An empty catalog is almost always a deployment mistake, so it is
	// rejected at parse time rather than silently routing nothing.
	ErrNoActions = errors.New("manifest declares no actions")

	// ErrDuplicateAction is returned when two manifest entries share a
	// name. Names are the stable identity used in responses and logs.
	ErrDuplicateAction = errors.New("duplicate action name")

	// ErrInvalidAction is returned when an entry fails field validation
	// (malformed name or route key).
	ErrInvalidAction = errors.New("invalid action declaration")
)
