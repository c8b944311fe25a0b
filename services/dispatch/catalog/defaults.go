// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import (
	_ "embed"

	"github.com/AleutianAI/AleutianRoute/services/dispatch/selection"
)

// DefaultManifest holds the raw bytes of the built-in action manifest.
//
// Baked into the binary at compile time so the service can start and serve
// something sensible with no manifest file configured. Deployments override
// it by pointing DISPATCH_MANIFEST at a file on disk.
//
//go:embed default_manifest.yaml
var DefaultManifest []byte

// DefaultCollection parses the embedded default manifest.
//
// The embedded manifest is covered by tests, so a parse failure here means
// a broken build; it panics rather than returning an error nobody can
// recover from.
func DefaultCollection() *selection.Collection {
	col, err := FromBytes(DefaultManifest)
	if err != nil {
		panic("catalog: embedded default manifest is invalid: " + err.Error())
	}
	return col
}
