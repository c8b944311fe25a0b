// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package selection implements the action selection table: an in-memory
// dispatch index that maps a request's observed route values to the set of
// candidate actions whose declared route values match.
//
// # Description
//
// The table is built once from a versioned snapshot of the action catalog
// and answers point lookups with two equality policies: exact (ordinal)
// match first, then case-insensitive fallback. Both indexes are keyed by
// the same fixed-order tuple of route values, whose column order is
// discovered from the actions themselves at build time.
//
// # Lifecycle
//
// A Table is immutable once built. When the underlying catalog changes
// (detected via its version stamp), callers build a fresh Table from the
// new snapshot and swap it in; Cache implements exactly that policy.
//
// # Thread Safety
//
// Table carries no locks. Construction happens on one goroutine; after
// that, any number of goroutines may call Select concurrently.
package selection

// Action is a single dispatch target with its declared route-value
// constraints.
//
// RouteValues maps declared route key names (for example "controller") to
// the string value an incoming request must carry for this action to match.
// A key declared with an empty value and an undeclared key are treated
// identically: both project to the empty string.
//
// Actions marked AttributeRouted are matched by an explicit path pattern
// elsewhere and never participate in the selection table.
type Action struct {
	// Name identifies the action. Unique within a catalog.
	Name string

	// Handler names the code unit the dispatcher invokes on a match.
	// Opaque to this package.
	Handler string

	// RouteValues holds the declared route key/value constraints.
	RouteValues map[string]string

	// AttributeRouted excludes the action from the selection table.
	AttributeRouted bool
}

// Collection is a versioned, ordered snapshot of actions.
//
// The Version stamp is opaque: it is only ever compared for equality, to
// decide whether a Table built from an earlier snapshot is stale. Order of
// Actions is significant; it determines result order within a match group.
type Collection struct {
	// Version is the opaque stamp identifying this snapshot.
	Version string

	// Actions lists the snapshot's actions in declaration order.
	Actions []*Action
}

// Source yields the current action collection snapshot. Implemented by
// catalog.Store; Cache polls it to detect staleness.
type Source interface {
	// Snapshot returns the current collection. Implementations must return
	// a snapshot that will not be mutated after it is handed out.
	Snapshot() (*Collection, error)
}
