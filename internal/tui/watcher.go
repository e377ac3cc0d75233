package tui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"dataflow-cli/internal/logging"

	"github.com/fsnotify/fsnotify"
)

const (
	// ignoreWindow is how long after NotifySave file changes are treated as
	// the viewer's own write.
	ignoreWindow = 500 * time.Millisecond
	debounceFor  = 100 * time.Millisecond
)

func watchLog() *slog.Logger { return logging.ForComponent(logging.CompWatch) }

// StorageWatcher signals when the SQLite store changes on disk, e.g. because
// the CLI mutated it from another terminal. SQLite in WAL mode mostly touches
// the -wal file, so both it and the main file are tracked.
type StorageWatcher struct {
	watcher   *fsnotify.Watcher
	paths     map[string]bool
	reloadCh  chan struct{}
	closeCh   chan struct{}
	closeOnce sync.Once

	modMu        sync.Mutex
	lastModified time.Time

	saveMu       sync.RWMutex
	lastSaveTime time.Time
}

// NewStorageWatcher watches dbPath. The file must exist.
func NewStorageWatcher(dbPath string) (*StorageWatcher, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("storage file: %w", err)
	}
	resolved := resolvePath(dbPath)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory so atomic renames and WAL files are seen.
	dir := filepath.Dir(resolved)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	sw := &StorageWatcher{
		watcher:  w,
		paths:    map[string]bool{resolved: true, resolved + "-wal": true},
		reloadCh: make(chan struct{}, 1),
		closeCh:  make(chan struct{}),
	}
	sw.lastModified = sw.latestModTime()
	return sw, nil
}

func resolvePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	// The -wal file may not exist yet; resolve its directory instead.
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs))
	}
	return abs
}

func (sw *StorageWatcher) Start() {
	go sw.watchLoop()
}

func (sw *StorageWatcher) watchLoop() {
	debounce := time.NewTimer(0)
	debounce.Stop()

	for {
		select {
		case <-sw.closeCh:
			return

		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !sw.paths[resolvePath(ev.Name)] {
				continue
			}
			if ev.Op&fsnotify.Remove == fsnotify.Remove {
				continue
			}
			debounce.Reset(debounceFor)

		case <-debounce.C:
			sw.checkAndNotify()

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			watchLog().Warn("watcher error", "err", err)
		}
	}
}

func (sw *StorageWatcher) latestModTime() time.Time {
	var latest time.Time
	for p := range sw.paths {
		if info, err := os.Stat(p); err == nil && info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	return latest
}

func (sw *StorageWatcher) checkAndNotify() {
	sw.saveMu.RLock()
	lastSave := sw.lastSaveTime
	sw.saveMu.RUnlock()

	mod := sw.latestModTime()
	sw.modMu.Lock()
	defer sw.modMu.Unlock()

	if time.Since(lastSave) < ignoreWindow {
		sw.lastModified = mod
		watchLog().Debug("ignoring own save")
		return
	}
	if !mod.After(sw.lastModified) {
		return
	}
	sw.lastModified = mod
	select {
	case sw.reloadCh <- struct{}{}:
		watchLog().Debug("store changed on disk")
	default:
	}
}

// ReloadChannel receives one value per batch of external changes.
func (sw *StorageWatcher) ReloadChannel() <-chan struct{} {
	return sw.reloadCh
}

// NotifySave must be called right before the viewer writes to the store.
func (sw *StorageWatcher) NotifySave() {
	sw.saveMu.Lock()
	sw.lastSaveTime = time.Now()
	sw.saveMu.Unlock()
}

func (sw *StorageWatcher) Close() error {
	sw.closeOnce.Do(func() {
		close(sw.closeCh)
	})
	return sw.watcher.Close()
}
