package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	appLog "valentine/internal/log"
)

// Watcher reloads the config file whenever it changes on disk and hands the
// freshly normalized Config to onChange. It watches the parent directory so
// that editors which save via rename are still picked up.
type Watcher struct {
	path     string
	onChange func(*Config)
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// NewWatcher creates a Watcher for path. onChange is called from the
// watcher goroutine.
func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{
		path:     abs,
		onChange: onChange,
		debounce: 250 * time.Millisecond,
		watcher:  w,
	}, nil
}

// Run blocks until ctx is cancelled, reloading on every settled change.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	appLog.Info("config watcher started", "path", w.path)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			appLog.Info("config watcher stopped", "path", w.path)
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// Batch rapid saves into a single reload.
			pending = time.After(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			appLog.Error("config watcher error", err, "path", w.path)

		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	// Load would recreate a missing file with defaults; a vanished file is
	// usually an editor mid-save, so wait for the Create that follows.
	if _, err := os.Stat(w.path); err != nil {
		return
	}
	cfg, err := Load(w.path)
	if err != nil {
		// Keep serving the previous config.
		appLog.Error("config reload failed", err, "path", w.path)
		return
	}
	appLog.Info("config reloaded", "path", w.path)
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

func (w *Watcher) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher != nil {
		w.watcher.Close()
		w.watcher = nil
	}
}
