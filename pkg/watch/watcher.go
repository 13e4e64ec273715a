package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the quiet period required after the last file
// event before a refit is triggered.
const DefaultDebounceInterval = 250 * time.Millisecond

// DatasetWatcher watches a single dataset file and triggers refits when it
// changes.
type DatasetWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	path     string
	debounce *debouncer

	mu      sync.Mutex
	running bool
}

// NewDatasetWatcher creates a watcher for the dataset at path. The debounce
// interval falls back to DefaultDebounceInterval when zero.
func NewDatasetWatcher(path string, interval time.Duration) (*DatasetWatcher, error) {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &DatasetWatcher{
		watcher:  w,
		logger:   slog.Default().With("component", "watch"),
		path:     filepath.Clean(path),
		debounce: newDebouncer(interval),
	}, nil
}

// Watch blocks, invoking onChange after each debounced change to the dataset
// file, until the context is cancelled. onChange errors are logged and
// watching continues.
func (w *DatasetWatcher) Watch(ctx context.Context, onChange func() error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	// Watch the parent directory so renames over the target are seen.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", filepath.Dir(w.path), err)
	}

	w.logger.Info("dataset watcher started", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("dataset watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("dataset event", "path", event.Name, "op", event.Op.String())
			w.debounce.trigger(func() {
				w.logger.Info("dataset changed, refitting", "path", w.path)
				if err := onChange(); err != nil {
					w.logger.Error("refit failed", "error", err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("dataset watcher error", "error", err)
		}
	}
}

// Close releases the underlying fsnotify watcher and cancels any pending
// debounced callback.
func (w *DatasetWatcher) Close() error {
	w.debounce.stop()
	return w.watcher.Close()
}

func (w *DatasetWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}

// debouncer collapses rapid event bursts into one callback after a quiet
// period.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	stopped  bool
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			callback()
		}
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
