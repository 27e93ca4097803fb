// Package watch reloads the dataset when its file changes on disk.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"heartdash/internal"
	"heartdash/internal/api"
	"heartdash/internal/filter"
	"heartdash/internal/frame"

	"github.com/fsnotify/fsnotify"
)

var logger = internal.DefaultLogger.Component("Watcher")

// Loader reads the dataset file
type Loader func(path string) (*frame.Frame, error)

// Notifier is told about reloads
type Notifier interface {
	Notify(eventType string, data map[string]any)
}

// Watcher swaps the filter service's dataset after the data file is written.
// Rapid successive writes are collapsed into one reload.
type Watcher struct {
	path     string
	load     Loader
	svc      *filter.Service
	notifier Notifier
	debounce time.Duration

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	timer   *time.Timer
	started bool
	done    chan struct{}
}

// New creates a watcher for path. notifier may be nil.
func New(path string, load Loader, svc *filter.Service, notifier Notifier) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:     filepath.Clean(path),
		load:     load,
		svc:      svc,
		notifier: notifier,
		debounce: 500 * time.Millisecond,
		watcher:  w,
		done:     make(chan struct{}),
	}, nil
}

// WithDebounce changes how long writes are batched
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Start watches the file's directory, so editors that replace the file by
// rename are handled too. It returns once the watch is in place.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	logger.Info("Watching %s", w.path)
	w.mu.Lock()
	w.started = true
	w.mu.Unlock()
	go w.run(ctx)
	return nil
}

// Close stops watching
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	started := w.started
	w.mu.Unlock()
	err := w.watcher.Close()
	if started {
		<-w.done
	}
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
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
			logger.Debug("%s event for %s", event.Op, event.Name)
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("watch error: %v", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { _ = w.Reload() })
}

// Reload loads the file and swaps it in. A failed load keeps the current
// dataset.
func (w *Watcher) Reload() error {
	f, err := w.load(w.path)
	if err != nil {
		logger.Warn("Reload of %s failed, keeping current data: %v", w.path, err)
		w.notify(api.EventReloadFailed, map[string]any{"error": err.Error()})
		return err
	}
	ds := filter.NewDataset(f, w.path)
	w.svc.Swap(ds)
	w.notify(api.EventDataReloaded, map[string]any{"version": ds.Version, "rows": f.Len()})
	return nil
}

func (w *Watcher) notify(eventType string, data map[string]any) {
	if w.notifier != nil {
		w.notifier.Notify(eventType, data)
	}
}
