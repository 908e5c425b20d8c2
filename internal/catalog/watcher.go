package catalog

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/getfoundry/unbrowse-mcp-sub003/pkg/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the time to wait after the last file change
// before reloading the catalog. Editors tend to emit bursts of events for a
// single save.
const DefaultDebounceInterval = 500 * time.Millisecond

// Watcher reloads the catalog when ability files change on disk.
type Watcher struct {
	mu      sync.Mutex
	catalog *Catalog

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// NewWatcher creates a watcher for the given catalog.
func NewWatcher(catalog *Catalog) *Watcher {
	return &Watcher{catalog: catalog}
}

// Start begins watching the catalog directory for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsWatcher.Add(w.catalog.dir); err != nil {
		fsWatcher.Close()
		return err
	}

	w.fsWatcher = fsWatcher
	w.stopCh = make(chan struct{})
	w.running = true

	// Capture channels before releasing the lock to avoid racing Stop().
	eventsCh := fsWatcher.Events
	errorsCh := fsWatcher.Errors
	go w.processEvents(eventsCh, errorsCh)

	logging.Info("Catalog", "Watching %s for ability changes", w.catalog.dir)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopCh)
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	w.running = false
}

func (w *Watcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("Catalog", err, "fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !isYAMLFile(filepath.Base(event.Name)) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// Debounce: reload once after the burst settles.
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(DefaultDebounceInterval, func() {
		if err := w.catalog.Reload(); err != nil {
			logging.Error("Catalog", err, "Reload after file change failed")
		}
	})
}
