package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newWatchedFile(t *testing.T) (string, *StorageWatcher) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataflow.sqlite")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	w, err := NewStorageWatcher(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	w.Start()
	return path, w
}

func expectReload(t *testing.T, w *StorageWatcher) {
	t.Helper()
	select {
	case <-w.ReloadChannel():
	case <-time.After(2 * time.Second):
		t.Fatal("expected reload signal")
	}
}

func expectQuiet(t *testing.T, w *StorageWatcher, d time.Duration) {
	t.Helper()
	select {
	case <-w.ReloadChannel():
		t.Fatal("unexpected reload signal")
	case <-time.After(d):
	}
}

func TestNewStorageWatcher_MissingFile(t *testing.T) {
	_, err := NewStorageWatcher(filepath.Join(t.TempDir(), "missing.sqlite"))
	require.Error(t, err)
}

func TestStorageWatcher_DetectsChanges(t *testing.T) {
	path, w := newWatchedFile(t)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	expectReload(t, w)
}

func TestStorageWatcher_DetectsWALWrites(t *testing.T) {
	path, w := newWatchedFile(t)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path+"-wal", []byte("frames"), 0o644))
	expectReload(t, w)
}

func TestStorageWatcher_DebouncesBursts(t *testing.T) {
	path, w := newWatchedFile(t)

	for i := 0; i < 5; i++ {
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
	}
	expectReload(t, w)
	expectQuiet(t, w, 300*time.Millisecond)
}

func TestStorageWatcher_IgnoresOwnSave(t *testing.T) {
	path, w := newWatchedFile(t)

	time.Sleep(50 * time.Millisecond)
	w.NotifySave()
	require.NoError(t, os.WriteFile(path, []byte("mine"), 0o644))
	expectQuiet(t, w, 300*time.Millisecond)
}

func TestStorageWatcher_IgnoresOtherFiles(t *testing.T) {
	path, w := newWatchedFile(t)

	time.Sleep(50 * time.Millisecond)
	other := filepath.Join(filepath.Dir(path), "config.toml")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	expectQuiet(t, w, 300*time.Millisecond)
}
