package keywords

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher invalidates the keyword cache when a project's manifest
// files change, so long-lived processes pick up vocabulary edits
// without waiting for the TTL.
type Watcher struct {
	root       string
	generator  *Generator
	debounce   time.Duration
	watcher    *fsnotify.Watcher
	stopChan   chan struct{}
	pending    map[string]time.Time
	pendingMux sync.Mutex
	log        zerolog.Logger
}

// NewWatcher creates a manifest watcher for the project at root
func NewWatcher(root string, g *Generator, debounce time.Duration, log zerolog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		root:      root,
		generator: g,
		debounce:  debounce,
		stopChan:  make(chan struct{}),
		pending:   make(map[string]time.Time),
		log:       log,
	}
}

// Start begins watching the project root for manifest writes
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	if err := watcher.Add(w.root); err != nil {
		watcher.Close()
		return err
	}

	go w.watch()
	go w.debounceLoop()
	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() {
	close(w.stopChan)
	if w.watcher != nil {
		w.watcher.Close()
	}
}

func (w *Watcher) watch() {
	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !isManifest(filepath.Base(event.Name)) {
				continue
			}

			w.pendingMux.Lock()
			w.pending[event.Name] = time.Now()
			w.pendingMux.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("manifest watcher error")
		}
	}
}

func (w *Watcher) debounceLoop() {
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *Watcher) flushPending() {
	w.pendingMux.Lock()
	defer w.pendingMux.Unlock()

	now := time.Now()
	for path, lastSeen := range w.pending {
		if now.Sub(lastSeen) >= w.debounce {
			w.log.Debug().Str("path", path).Msg("manifest changed, invalidating keyword cache")
			w.generator.Invalidate(w.root)
			delete(w.pending, path)
		}
	}
}

func isManifest(name string) bool {
	for _, m := range manifestFiles {
		if name == m {
			return true
		}
	}
	_, marker := markerKeywords[name]
	return marker
}
