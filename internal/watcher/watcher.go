// Package watcher monitors the corpus directory for changes with fsnotify.
// It does not re-index; it marks the served index stale so the status and
// health endpoints can report that a rebuild is needed.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches the corpus directory and raises a stale flag when a
// matching file is created, written, or removed.
type Watcher struct {
	dir        string
	extensions []string
	debounce   time.Duration
	stale      atomic.Bool
	onStale    func(path string)

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	timers   map[string]*time.Timer
	started  bool
	done     chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithOnStale sets a callback invoked (after debouncing) for each changed
// file that marks the corpus stale.
func WithOnStale(fn func(path string)) Option {
	return func(w *Watcher) { w.onStale = fn }
}

// New creates a watcher over dir. extensions filter which files count as
// corpus changes (empty = all).
func New(dir string, extensions []string, opts ...Option) *Watcher {
	w := &Watcher{
		dir:        dir,
		extensions: extensions,
		debounce:   defaultDebounce,
		timers:     make(map[string]*time.Timer),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = fsw
	w.started = true
	w.mu.Unlock()

	if w.logger != nil {
		w.logger.Debug("watcher starting",
			zap.String("dir", w.dir), zap.Strings("extensions", w.extensions))
	}
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil && w.logger != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !w.matchExtension(ev.Name) {
		return
	}
	switch {
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write), ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.debounceStale(ev.Name)
	}
}

// debounceStale coalesces bursts of events for the same file, then marks the
// corpus stale once.
func (w *Watcher) debounceStale(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		logger := w.logger
		w.mu.Unlock()

		w.stale.Store(true)
		if logger != nil {
			logger.Info("corpus changed, index is stale until rebuilt",
				zap.String("path", path))
		}
		if w.onStale != nil {
			w.onStale(path)
		}
	})
}

func (w *Watcher) matchExtension(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Stale reports whether the corpus changed since the index was built.
func (w *Watcher) Stale() bool {
	return w.stale.Load()
}

// Reset clears the stale flag, e.g. after a rebuild.
func (w *Watcher) Reset() {
	w.stale.Store(false)
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		for _, t := range w.timers {
			t.Stop()
		}
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
		w.started = false
	})
}
