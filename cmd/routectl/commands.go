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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	manifestPath string // Path to the action manifest (empty = embedded catalog)
	jsonOutput   bool   // Output as JSON for scripting
	compactJSON  bool   // JSON without indentation
	quietOutput  bool   // Exit code only, no output

	rootCmd = &cobra.Command{
		Use:   "routectl",
		Short: "A cli to inspect and resolve AleutianRoute action manifests",
		Long: `Routectl validates action manifests and resolves route values
				against the selection table the dispatch service would build
				from them, without running the service.`,
	}

	// --- Manifest Validation ---
	checkCmd = &cobra.Command{
		Use:   "check [manifest]",
		Short: "Validate an action manifest file",
		Args:  cobra.ExactArgs(1),
		Run:   runCheckCommand, // Defined in cmd_check.go
	}

	// --- Selection Resolution ---
	resolveCmd = &cobra.Command{
		Use:   "resolve [key=value ...]",
		Short: "Resolve route values against a manifest's selection table",
		Run:   runResolveCommand, // Defined in cmd_resolve.go
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output as JSON for scripting")
	rootCmd.PersistentFlags().BoolVar(&compactJSON, "compact", false,
		"JSON output without indentation")
	rootCmd.PersistentFlags().BoolVarP(&quietOutput, "quiet", "q", false,
		"Suppress output, use exit code only")

	resolveCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "",
		"Path to the action manifest (default: embedded catalog)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(resolveCmd)
}
