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
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Cache owns the replace-on-change policy around Table.
//
// # Description
//
// Holds the latest built table behind an atomic pointer. Current compares
// the cached table's version stamp against the source's current snapshot:
// on a match the cached table is returned, otherwise a fresh table is built
// and swapped in. Concurrent rebuilds for the same version are deduplicated
// with singleflight. In-flight lookups keep using whatever table they
// already hold; a superseded table stays valid for them.
//
// # Thread Safety
//
// Safe for concurrent use. The swap is atomic, so readers never observe a
// torn table.
type Cache struct {
	// OnRebuild, when set, is invoked once after every table rebuild that
	// actually ran (deduplicated rebuilds fire it once). Set it before
	// the first Current call; it runs on the rebuilding goroutine.
	OnRebuild func()

	source Source
	table  atomic.Pointer[Table]
	flight singleflight.Group

	// Stats
	hits     int64
	misses   int64
	rebuilds int64
}

// CacheStats is a point-in-time snapshot of cache counters.
type CacheStats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Rebuilds int64 `json:"rebuilds"`
}

// NewCache creates a cache over the given snapshot source. No table is
// built until the first Current call.
func NewCache(source Source) *Cache {
	return &Cache{source: source}
}

// Current returns a table that is up to date with the source's current
// snapshot, rebuilding at most once per version across concurrent callers.
func (c *Cache) Current() (*Table, error) {
	col, err := c.source.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("selection cache: snapshot: %w", err)
	}

	if t := c.table.Load(); t != nil && t.Version() == col.Version {
		atomic.AddInt64(&c.hits, 1)
		return t, nil
	}
	atomic.AddInt64(&c.misses, 1)

	v, err, _ := c.flight.Do(col.Version, func() (any, error) {
		// Another caller may have finished the swap while we queued.
		if t := c.table.Load(); t != nil && t.Version() == col.Version {
			return t, nil
		}
		t := BuildTable(col)
		c.table.Store(t)
		atomic.AddInt64(&c.rebuilds, 1)
		if c.OnRebuild != nil {
			c.OnRebuild()
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Stats returns the current counter values.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:     atomic.LoadInt64(&c.hits),
		Misses:   atomic.LoadInt64(&c.misses),
		Rebuilds: atomic.LoadInt64(&c.rebuilds),
	}
}
