// Package watcher emits file change events for the theme directory.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Event is a single file change observed by the watcher.
type Event struct {
	Op   fsnotify.Op
	Path string
}

// Watcher wraps fsnotify with recursive directory registration. Events
// are forwarded in arrival order without coalescing; rapid saves may
// trigger redundant rebuilds downstream, which the pipeline accepts.
type Watcher struct {
	fs     *fsnotify.Watcher
	root   string
	outDir string
	events chan Event
}

// New creates a watcher rooted at root. Hidden directories, node_modules
// and the build output directory outDir are not registered.
func New(root, outDir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fs:     fsw,
		root:   root,
		outDir: filepath.Clean(outDir),
		events: make(chan Event, 64),
	}

	if err := w.addRecursive(root); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", root, err)
	}

	return w, nil
}

// Events returns the channel change events are delivered on. It is
// closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run forwards fsnotify events until the context is cancelled. Newly
// created directories are registered so changes beneath them are seen.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)
	defer func() { _ = w.fs.Close() }()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.underOutput(event.Name) {
						if err := w.addRecursive(event.Name); err != nil {
							log.Warn().Err(err).Str("dir", event.Name).Msg("Failed to watch new directory")
						}
					}
					continue
				}
			}

			select {
			case w.events <- Event{Op: event.Op, Path: event.Name}:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Watcher error")
		}
	}
}

// underOutput reports whether path is the build output directory or
// inside it. Rebuild artifacts must never feed back into the watch
// loop.
func (w *Watcher) underOutput(path string) bool {
	clean := filepath.Clean(path)
	return clean == w.outDir || strings.HasPrefix(clean, w.outDir+string(filepath.Separator))
}

// addRecursive walks root and registers every directory except hidden
// ones, node_modules and the build output tree.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if d.Name() == "node_modules" {
			return filepath.SkipDir
		}
		if w.underOutput(path) {
			return filepath.SkipDir
		}

		return w.fs.Add(path)
	})
}
