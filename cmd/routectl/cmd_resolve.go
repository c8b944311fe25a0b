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
	"strings"

	"github.com/AleutianAI/AleutianRoute/services/dispatch/catalog"
	"github.com/AleutianAI/AleutianRoute/services/dispatch/selection"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// resolvedAction is one action returned by a resolution.
type resolvedAction struct {
	Name    string            `json:"name"`
	Handler string            `json:"handler"`
	Route   map[string]string `json:"route,omitempty"`
}

// resolveReport is the outcome of resolving route values against a table.
type resolveReport struct {
	Version string            `json:"version"`
	Match   string            `json:"match"`
	Values  map[string]string `json:"values"`
	Actions []resolvedAction  `json:"actions"`
}

// parseRouteArgs converts "key=value" CLI arguments into route values.
// A bare "key" (no equals sign) is rejected; "key=" declares an empty
// value, which the selection table treats the same as an absent key.
func parseRouteArgs(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("argument %q is not key=value", arg)
		}
		if key == "" {
			return nil, fmt.Errorf("argument %q has an empty key", arg)
		}
		values[key] = value
	}
	return values, nil
}

// resolveValues builds a selection table from the collection and matches
// the given route values against it.
func resolveValues(col *selection.Collection, values map[string]string) *resolveReport {
	table := selection.BuildTable(col)
	actions, kind := table.Match(values)

	report := &resolveReport{
		Version: table.Version(),
		Match:   kind.String(),
		Values:  values,
		Actions: make([]resolvedAction, 0, len(actions)),
	}
	for _, a := range actions {
		report.Actions = append(report.Actions, resolvedAction{
			Name:    a.Name,
			Handler: a.Handler,
			Route:   a.RouteValues,
		})
	}
	return report
}

// runResolveCommand resolves route values against a manifest.
//
// Exit codes:
//   - 0: At least one action matched
//   - 1: No action matched (a valid outcome, distinguished for scripting)
//   - 2: Manifest could not be loaded or arguments were malformed
func runResolveCommand(cmd *cobra.Command, args []string) {
	values, err := parseRouteArgs(args)
	if err != nil {
		if !quietOutput {
			OutputError(jsonOutput, "parsing arguments", err)
		}
		os.Exit(CLIExitError)
	}

	var col *selection.Collection
	if manifestPath != "" {
		col, err = catalog.LoadFile(manifestPath)
		if err != nil {
			if !quietOutput {
				OutputError(jsonOutput, "loading manifest", err)
			}
			os.Exit(CLIExitError)
		}
	} else {
		col = catalog.DefaultCollection()
	}

	report := resolveValues(col, values)

	exitCode := CLIExitSuccess
	if len(report.Actions) == 0 {
		exitCode = CLIExitFindings
	}

	if quietOutput {
		os.Exit(exitCode)
	}

	if jsonOutput {
		if err := OutputJSON(report, compactJSON); err != nil {
			os.Exit(CLIExitError)
		}
		os.Exit(exitCode)
	}

	printResolveReport(report)
	os.Exit(exitCode)
}

// printResolveReport writes the human-readable form of a resolution.
func printResolveReport(report *resolveReport) {
	if len(report.Actions) == 0 {
		fmt.Printf("No actions matched (catalog version %s).\n", report.Version)
		return
	}

	fmt.Printf("Matched %d action(s), %s match (catalog version %s):\n",
		len(report.Actions), report.Match, report.Version)
	for _, a := range report.Actions {
		if stdoutIsTerminal() {
			fmt.Printf("  - %s (handler: %s)\n", a.Name, a.Handler)
			continue
		}
		fmt.Printf("%s\t%s\n", a.Name, a.Handler)
	}
}
