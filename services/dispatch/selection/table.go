// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package selection

import (
	"fmt"
	"sort"
)

// MatchKind reports which index satisfied a lookup.
type MatchKind int

const (
	// MatchNone means neither index held the projected tuple.
	MatchNone MatchKind = iota

	// MatchOrdinal means the exact-case index held the tuple.
	MatchOrdinal

	// MatchFolded means only the case-insensitive index held the tuple.
	MatchFolded
)

// String returns the label used in logs and metrics.
func (k MatchKind) String() string {
	switch k {
	case MatchOrdinal:
		return "ordinal"
	case MatchFolded:
		return "case_insensitive"
	default:
		return "miss"
	}
}

// group is a non-empty, insertion-ordered list of actions sharing the same
// case-insensitive row tuple. One group instance is shared by reference
// between the case-insensitive index (exactly one entry) and the ordinal
// index (one entry per exact-case variant observed).
type group struct {
	actions []*Action
}

// Table is the immutable action selection index.
//
// # Description
//
// Construction discovers the union of all declared route key names across
// the collection (deduplicated case-insensitively, sorted case-insensitively
// so the column order does not depend on catalog iteration order), projects
// every value-routed action into a fixed-order row tuple, and registers each
// action in two parallel indexes over that tuple: one ordinal, one
// case-insensitive.
//
// # Thread Safety
//
// Immutable after BuildTable returns. Select never mutates, so concurrent
// lookups need no synchronization.
type Table struct {
	version string

	// keys is the route key set: the fixed column order, one spelling per
	// case-insensitively distinct key name.
	keys []string

	// columns maps the folded key name to its column position.
	columns map[string]int

	ordinal map[string]*group
	folded  map[string]*group
}

// BuildTable constructs a selection table from a collection snapshot.
//
// # Description
//
// Attribute-routed and nil actions are skipped. The remaining actions are
// indexed in declaration order:
//
//  1. Their declared key names are unioned into the route key set.
//  2. Each action is projected into a row tuple aligned to that key set
//     (undeclared keys read as "").
//  3. The action is appended to the group shared by all actions whose
//     tuples are equal ignoring case, and that group is registered under
//     the action's exact-case tuple in the ordinal index. An ordinal entry
//     that already exists is never overwritten (first write wins); the
//     group already absorbed the action via the case-insensitive index,
//     so nothing is lost.
//
// Building from an empty (or fully attribute-routed) collection yields a
// table whose every lookup returns no actions.
//
// The input collection is never mutated. BuildTable panics if an action's
// declared key set changes between the discovery pass and the projection
// pass, or if one action declares two case-variant spellings of the same
// key; either is a programming error in the caller and tolerating it would
// surface later as non-deterministic routing.
func BuildTable(c *Collection) *Table {
	t := &Table{
		columns: make(map[string]int),
		ordinal: make(map[string]*group),
		folded:  make(map[string]*group),
	}
	if c != nil {
		t.version = c.Version
	}

	var routed []*Action
	if c != nil {
		routed = make([]*Action, 0, len(c.Actions))
		for _, a := range c.Actions {
			if a == nil || a.AttributeRouted {
				continue
			}
			routed = append(routed, a)
		}
	}

	// Discover the route key set: case-insensitive dedup (first spelling
	// observed wins), then a case-insensitive sort so two catalogs that
	// differ only in action order produce the same column order.
	seen := make(map[string]string)
	for _, a := range routed {
		for k := range a.RouteValues {
			f := foldValue(k)
			if _, ok := seen[f]; !ok {
				seen[f] = k
			}
		}
	}
	t.keys = make([]string, 0, len(seen))
	for _, k := range seen {
		t.keys = append(t.keys, k)
	}
	sort.Slice(t.keys, func(i, j int) bool {
		return foldValue(t.keys[i]) < foldValue(t.keys[j])
	})
	for i, k := range t.keys {
		t.columns[foldValue(k)] = i
	}

	for _, a := range routed {
		row := t.projectAction(a)

		fk := encodeFoldedRow(row)
		g := t.folded[fk]
		if g == nil {
			g = &group{}
			t.folded[fk] = g
		}
		g.actions = append(g.actions, a)

		ok := encodeRow(row)
		if _, exists := t.ordinal[ok]; !exists {
			t.ordinal[ok] = g
		}
	}

	return t
}

// projectAction builds an action's row tuple in route-key-set order.
//
// Panics if the action declares a key that was not present during key-set
// discovery (the two reads of RouteValues disagreeing means the map was
// mutated mid-build), or if two declared keys fold to the same column:
// whichever value map iteration visited last would win, and that winner
// changes between builds of the same input.
func (t *Table) projectAction(a *Action) []string {
	row := make([]string, len(t.keys))
	written := make([]bool, len(t.keys))
	for k, v := range a.RouteValues {
		col, ok := t.columns[foldValue(k)]
		if !ok {
			panic(fmt.Sprintf(
				"selection: action %q declared route key %q after key-set discovery; "+
					"route values must not change during BuildTable", a.Name, k))
		}
		if written[col] {
			panic(fmt.Sprintf(
				"selection: action %q declares multiple spellings of route key %q; "+
					"the declared value would be ambiguous", a.Name, t.keys[col]))
		}
		written[col] = true
		row[col] = v
	}
	return row
}

// Version returns the opaque stamp of the snapshot this table was built
// from. Compare it with the catalog's current stamp to decide staleness.
func (t *Table) Version() string {
	return t.version
}

// Keys returns a copy of the route key set in column order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Select returns the actions whose declared route values match the observed
// ones. See Match for the lookup rules.
func (t *Table) Select(values map[string]string) []*Action {
	actions, _ := t.Match(values)
	return actions
}

// Match looks up the observed route values and reports which index hit.
//
// # Description
//
// The observed mapping is projected into a row tuple using the table's
// column order: keys are matched case-insensitively, and keys the mapping
// lacks project to "" (a missing key and an empty value are
// indistinguishable, as at build time). The ordinal index is consulted
// first; on a miss the case-insensitive index is consulted; otherwise the
// result is empty. Match never fails and never mutates the table.
//
// Result order is the actions' declaration order within the matched group.
// The returned slice is shared with the table; callers must not modify it.
func (t *Table) Match(values map[string]string) ([]*Action, MatchKind) {
	row := t.projectValues(values)

	if g, ok := t.ordinal[encodeRow(row)]; ok {
		return g.actions, MatchOrdinal
	}
	if g, ok := t.folded[encodeFoldedRow(row)]; ok {
		return g.actions, MatchFolded
	}
	return nil, MatchNone
}

// projectValues builds the lookup row tuple from an observed mapping.
//
// An exact-spelling key takes precedence; otherwise the case-insensitively
// smallest matching key is used, so the projection is deterministic even if
// the mapping carries several spellings of the same key.
func (t *Table) projectValues(values map[string]string) []string {
	row := make([]string, len(t.keys))
	if len(values) == 0 {
		return row
	}
	for i, k := range t.keys {
		if v, ok := values[k]; ok {
			row[i] = v
			continue
		}
		target := foldValue(k)
		best := ""
		found := false
		for vk, v := range values {
			if foldValue(vk) != target {
				continue
			}
			if !found || vk < best {
				best = vk
				row[i] = v
				found = true
			}
		}
	}
	return row
}
