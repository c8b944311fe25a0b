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
	"errors"
	"sync"

	"github.com/AleutianAI/AleutianRoute/services/dispatch/selection"
)

// ErrNoSnapshot is returned by Snapshot before any collection was stored.
var ErrNoSnapshot = errors.New("catalog store holds no snapshot")

// Store holds the current action collection snapshot.
//
// Snapshots are replaced wholesale, never mutated in place, so a snapshot
// handed out by Snapshot stays valid for however long a caller keeps it.
// Store implements selection.Source.
//
// # Thread Safety
//
// Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	current *selection.Collection
}

// NewStore creates a store, optionally seeded with an initial snapshot.
func NewStore(initial *selection.Collection) *Store {
	return &Store{current: initial}
}

// Snapshot returns the current collection.
func (s *Store) Snapshot() (*selection.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoSnapshot
	}
	return s.current, nil
}

// Version returns the current snapshot's stamp, or "" when empty.
func (s *Store) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Version
}

// Replace swaps in a new snapshot. Readers holding the previous snapshot
// are unaffected.
func (s *Store) Replace(col *selection.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = col
}
