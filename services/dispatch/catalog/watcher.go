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
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is called after every reload attempt; err is nil on success.
// Used to feed reload metrics without coupling the catalog to prometheus.
type ReloadFunc func(version string, err error)

// Watcher hot-reloads the action manifest when the file changes on disk.
//
// # Description
//
// Watches the manifest's parent directory (editors typically replace files
// via rename, which drops a watch held on the file itself) and debounces
// bursts of events into a single reload. A reload that fails to read or
// parse logs the failure and keeps the previous snapshot serving; the next
// successful reload recovers.
//
// # Thread Safety
//
// Safe for concurrent use. Reloads happen on one goroutine.
type Watcher struct {
	path     string
	store    *Store
	debounce time.Duration
	onReload ReloadFunc
	log      *slog.Logger

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	watching bool
}

// WatcherOptions configures the Watcher.
type WatcherOptions struct {
	// DebounceWindow is how long to wait for more events before reloading.
	// Default: 200ms
	DebounceWindow time.Duration

	// OnReload, when set, is invoked after every reload attempt.
	OnReload ReloadFunc

	// Logger overrides the default slog logger.
	Logger *slog.Logger
}

// NewWatcher creates a watcher for the given manifest path, feeding reloads
// into the store. Call Start to begin watching.
func NewWatcher(path string, store *Store, opts *WatcherOptions) (*Watcher, error) {
	if opts == nil {
		opts = &WatcherOptions{}
	}
	debounce := opts.DebounceWindow
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:     filepath.Clean(path),
		store:    store,
		debounce: debounce,
		onReload: opts.OnReload,
		log:      log,
		watcher:  fw,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. Watching stops when ctx is canceled or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		// Nothing will ever drain the fsnotify handle; release it and
		// leave the watcher in its stopped state.
		w.Stop()
		return err
	}

	go w.loop(ctx)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching returns true while the watcher is active.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// loop consumes fsnotify events for the manifest file and reloads after
// the debounce window closes.
func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("manifest watcher error", "path", w.path, "error", err)

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()
		}
	}
}

// reload re-reads the manifest and swaps the store on success.
func (w *Watcher) reload() {
	col, err := LoadFile(w.path)
	if err != nil {
		w.log.Error("manifest reload failed, keeping previous snapshot",
			"path", w.path, "error", err)
		if w.onReload != nil {
			w.onReload("", err)
		}
		return
	}

	previous := w.store.Version()
	if col.Version == previous {
		// Unchanged content, e.g. a touch. Nothing to do.
		return
	}
	w.store.Replace(col)
	w.log.Info("action manifest reloaded",
		"path", w.path,
		"actions", len(col.Actions),
		"version", col.Version,
		"previous_version", previous)
	if w.onReload != nil {
		w.onReload(col.Version, nil)
	}
}
