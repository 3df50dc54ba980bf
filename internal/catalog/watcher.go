package catalog

import (
	"log/slog"
	"os"
	"time"
)

// Watcher polls the catalog file's modification time and triggers a reload
// callback when it changes. Polling keeps the dependency surface small and
// behaves the same across platforms.
type Watcher struct {
	path     string
	interval time.Duration
	onChange func()

	stopCh    chan struct{}
	lastMTime time.Time
}

// NewWatcher creates a watcher for the given path. onChange runs on the
// watcher goroutine after each detected modification.
func NewWatcher(path string, interval time.Duration, onChange func()) *Watcher {
	return &Watcher{
		path:     path,
		interval: interval,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}
}

// Start begins polling in a goroutine. A non-positive interval disables
// watching; the catalog can still be reloaded through the admin endpoint.
func (w *Watcher) Start() {
	if w.interval <= 0 {
		return
	}

	if info, err := os.Stat(w.path); err == nil {
		w.lastMTime = info.ModTime()
	}

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.check()
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop halts polling. Safe to call once.
func (w *Watcher) Stop() {
	close(w.stopCh)
}

func (w *Watcher) check() {
	info, err := os.Stat(w.path)
	if err != nil {
		// File may be mid-replace; try again next tick.
		return
	}
	if info.ModTime().After(w.lastMTime) {
		w.lastMTime = info.ModTime()
		slog.Default().Info("Perk catalog file changed, reloading", "path", w.path)
		w.onChange()
	}
}
