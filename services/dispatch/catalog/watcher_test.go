// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for manifest hot reload.

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watcherManifestV1 = `
actions:
  - name: a
    route: {controller: Home}
`

const watcherManifestV2 = `
actions:
  - name: a
    route: {controller: Home}
  - name: b
    route: {controller: Store}
`

// waitForVersion polls the store until it leaves the given version or the
// timeout expires. fsnotify delivery is asynchronous, so tests poll rather
// than sleep a fixed amount.
func waitForVersion(t *testing.T, s *Store, not string, timeout time.Duration) string {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if v := s.Version(); v != not {
			return v
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("store version never left %q", not)
	return ""
}

func writeManifest(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "actions.yaml")
	writeManifest(t, path, watcherManifestV1)

	col, err := LoadFile(path)
	require.NoError(t, err)
	store := NewStore(col)

	var reloaded []string
	w, err := NewWatcher(path, store, &WatcherOptions{
		DebounceWindow: 20 * time.Millisecond,
		OnReload: func(version string, err error) {
			if err == nil {
				reloaded = append(reloaded, version)
			}
		},
	})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	assert.True(t, w.IsWatching())

	v1 := store.Version()
	writeManifest(t, path, watcherManifestV2)

	v2 := waitForVersion(t, store, v1, 5*time.Second)
	assert.NotEqual(t, v1, v2)

	snap, err := store.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Actions, 2)
	assert.Contains(t, reloaded, v2)
}

func TestWatcher_KeepsSnapshotOnBrokenManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "actions.yaml")
	writeManifest(t, path, watcherManifestV1)

	col, err := LoadFile(path)
	require.NoError(t, err)
	store := NewStore(col)

	errs := make(chan error, 8)
	w, err := NewWatcher(path, store, &WatcherOptions{
		DebounceWindow: 20 * time.Millisecond,
		OnReload: func(version string, err error) {
			if err != nil {
				errs <- err
			}
		},
	})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	v1 := store.Version()
	writeManifest(t, path, "actions: []")

	select {
	case reloadErr := <-errs:
		assert.ErrorIs(t, reloadErr, ErrNoActions)
	case <-time.After(5 * time.Second):
		t.Fatal("reload error never reported")
	}

	// Previous snapshot keeps serving.
	assert.Equal(t, v1, store.Version())
	snap, err := store.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Actions, 1)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "actions.yaml")
	writeManifest(t, path, watcherManifestV1)

	w, err := NewWatcher(path, NewStore(nil), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	w.Stop()
	w.Stop()
	assert.False(t, w.IsWatching())
}

func TestWatcher_StartFailureLeavesWatcherStopped(t *testing.T) {
	// The manifest's parent directory does not exist, so the underlying
	// watch cannot be registered.
	path := filepath.Join(t.TempDir(), "missing", "actions.yaml")

	w, err := NewWatcher(path, NewStore(nil), nil)
	require.NoError(t, err)

	require.Error(t, w.Start(context.Background()))
	assert.False(t, w.IsWatching())

	// The failed Start released its resources; Stop stays safe to call.
	w.Stop()
}
