package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher notices when the config file changes on disk and invokes the
// reload callback, which takes no arguments and does its own loading.
// Editors write files in bursts, so events are debounced.
type Watcher struct {
	path     string
	logger   *slog.Logger
	onChange func()

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

const debounceDelay = 250 * time.Millisecond

// NewWatcher creates a watcher for the given config file path. onChange
// runs after each settled burst of writes.
func NewWatcher(path string, logger *slog.Logger, onChange func()) *Watcher {
	return &Watcher{path: path, logger: logger, onChange: onChange}
}

// Start begins watching. Watching a missing file is not an error; the
// parent directory is watched so an atomic rename into place counts as
// a change.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return err
	}

	w.mu.Lock()
	w.watcher = fw
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.loop(fw)
	return nil
}

func (w *Watcher) loop(fw *fsnotify.Watcher) {
	defer close(w.done)

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDelay, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			w.logger.Info("config file changed, reloading", "path", w.path)
			w.onChange()
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

// Stop ends the watch. Idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	fw := w.watcher
	done := w.done
	w.watcher = nil
	w.mu.Unlock()

	if fw != nil {
		fw.Close()
		<-done
	}
}
