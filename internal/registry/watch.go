package registry

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"amplifier/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// invalidateCache drops every memoized bundle parse, forcing the next
// loadCached call for each path to re-read from disk. Safe to call
// concurrently with in-flight loadCached calls: sync.Map's own Range/
// Delete handle that, so this never touches the mutex-guarded state map.
func (r *Registry) invalidateCache() {
	r.cache.Range(func(key, _ any) bool {
		r.cache.Delete(key)
		return true
	})
}

// Watcher watches a Registry's home directory for external edits to
// registry.json (another process editing the registry by hand, or a
// sibling amplifier invocation) and invalidates the in-memory bundle
// cache on change, so the next Load re-reads rather than serving a
// stale parse. This is purely an optimization hint: it never replaces
// the dynamic system-prompt factory's unconditional per-call re-read
// (spec §4.3), which has no cache to invalidate in the first place.
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	reg     *Registry
	path    string
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher builds a Watcher over r's home directory. Start begins
// watching; Stop releases the underlying fsnotify watcher.
func NewWatcher(r *Registry) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher: fw,
		reg:     r,
		path:    registryFilePath(r.home),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine. Non-blocking. The
// home directory is created first if it doesn't exist yet, mirroring
// how the registry itself tolerates a not-yet-initialized home.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.reg.home, 0o755); err != nil {
		logging.RegistryWarn("watcher: could not create home dir %s: %v", w.reg.home, err)
	}
	if err := w.watcher.Add(w.reg.home); err != nil {
		return err
	}
	logging.RegistryDebug("watching %s for external registry.json changes", w.reg.home)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	_ = w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logging.RegistryDebug("registry.json changed externally, invalidating bundle cache")
			w.reg.invalidateCache()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.RegistryWarn("registry watcher error: %v", err)
		}
	}
}
