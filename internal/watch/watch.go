// Package watch monitors the project database and macros file and reports
// debounced change notifications, so the watch subcommand can rebuild the
// scheduler tables whenever the editor saves.
package watch

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is how long a file must stay quiet before a change is reported.
// SQLite writes arrive as bursts of events; one rebuild per burst is enough.
const debounce = 250 * time.Millisecond

// Change reports that one of the watched files was modified.
type Change struct {
	Path string
}

// Watcher monitors a fixed set of files for changes using fsnotify.
type Watcher struct {
	Changes <-chan Change // Read-only external channel

	watched map[string]bool
	changes chan Change // Internal write channel
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// New creates a watcher over the given file paths. The parent directories
// are watched, since editors and SQLite commonly replace files rather than
// write them in place.
func New(paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watched := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		watched[abs] = true
	}

	ch := make(chan Change, 16)
	w := &Watcher{
		Changes: ch,
		watched: watched,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}
	return w, nil
}

// Start begins watching the parent directories of the configured files.
func (w *Watcher) Start() error {
	dirs := make(map[string]bool)
	for path := range w.watched {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and channels.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: track last event time per file.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				// Drain pending on close.
				for file := range pending {
					w.changes <- Change{Path: file}
				}
				return
			}

			if !w.isWatched(event.Name) {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case _, ok := <-ticker.C:
			if !ok {
				return
			}
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) >= debounce {
					w.changes <- Change{Path: file}
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Ignore watch errors; they're non-fatal.
		}
	}
}

// isWatched reports whether the event path is one of the configured files.
// SQLite sidecar files (-wal, -journal) count as changes to the database.
func (w *Watcher) isWatched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		abs = name
	}
	if w.watched[abs] {
		return true
	}
	for _, suffix := range []string{"-wal", "-journal"} {
		if trimmed, ok := strings.CutSuffix(abs, suffix); ok && w.watched[trimmed] {
			return true
		}
	}
	return false
}
