// Package watch re-runs a suite whenever its YAML file changes on disk.
// Intended for local development against a backend under active work.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDefault absorbs editor save storms (write + chmod + rename)
// into a single re-run.
const debounceDefault = 300 * time.Millisecond

// Watcher triggers a handler when a suite file changes.
type Watcher struct {
	path     string
	handler  func()
	debounce time.Duration
}

// New creates a watcher for the given suite file. The handler runs once
// per debounced burst of change events.
func New(path string, handler func()) *Watcher {
	return &Watcher{
		path:     path,
		handler:  handler,
		debounce: debounceDefault,
	}
}

// Run watches the suite file until ctx is cancelled. The parent
// directory is watched rather than the file itself because editors
// replace files on save, which drops a direct watch.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	target := filepath.Base(w.path)

	// Single debounce timer, reset on each event. Initialized as
	// stopped; the first matching event starts it.
	debounceTimer := time.NewTimer(w.debounce)
	debounceTimer.Stop()
	defer debounceTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-debounceTimer.C:
			w.handler()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isSuiteFile(event.Name, target) {
				continue
			}

			if !debounceTimer.Stop() {
				select {
				case <-debounceTimer.C:
				default:
				}
			}
			debounceTimer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			_ = err
		}
	}
}

// isSuiteFile matches the watched suite file, tolerating the temp-file
// dance editors do on save (foo.yaml~ and .tmp intermediates excluded).
func isSuiteFile(path, target string) bool {
	name := filepath.Base(path)
	if strings.HasSuffix(name, ".tmp") || strings.HasSuffix(name, "~") {
		return false
	}
	return name == target
}
