// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"

	"github.com/AleutianAI/AleutianRoute/services/dispatch/catalog"
	"github.com/AleutianAI/AleutianRoute/services/dispatch/selection"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// checkReport summarizes a validated manifest.
type checkReport struct {
	Manifest  string   `json:"manifest"`
	Version   string   `json:"version"`
	Actions   int      `json:"actions"`
	RouteKeys []string `json:"route_keys"`
}

// checkManifest validates raw manifest bytes and summarizes what the
// dispatch service would build from them. A non-nil error is a finding
// in the manifest itself, not an I/O failure.
func checkManifest(data []byte) (*checkReport, error) {
	col, err := catalog.FromBytes(data)
	if err != nil {
		return nil, err
	}

	table := selection.BuildTable(col)
	return &checkReport{
		Version:   col.Version,
		Actions:   len(col.Actions),
		RouteKeys: table.Keys(),
	}, nil
}

// runCheckCommand validates a manifest file.
//
// Exit codes:
//   - 0: Manifest is valid
//   - 1: Manifest has validation findings
//   - 2: File could not be read
func runCheckCommand(cmd *cobra.Command, args []string) {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		if !quietOutput {
			OutputError(jsonOutput, "reading manifest", err)
		}
		os.Exit(CLIExitError)
	}

	report, err := checkManifest(data)
	if err != nil {
		if !quietOutput {
			OutputError(jsonOutput, fmt.Sprintf("manifest %s is invalid", path), err)
		}
		os.Exit(CLIExitFindings)
	}
	report.Manifest = path

	if quietOutput {
		os.Exit(CLIExitSuccess)
	}

	if jsonOutput {
		if err := OutputJSON(report, compactJSON); err != nil {
			os.Exit(CLIExitError)
		}
		os.Exit(CLIExitSuccess)
	}

	fmt.Printf("Manifest %s is valid.\n", path)
	fmt.Printf("  version:    %s\n", report.Version)
	fmt.Printf("  actions:    %d\n", report.Actions)
	fmt.Printf("  route keys: %v\n", report.RouteKeys)
	os.Exit(CLIExitSuccess)
}
