// Package pipeline routes file change events to scoped rebuilds and
// reload notifications.
package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/royalfig/ghost-theme-dev/internal/assets"
	"github.com/royalfig/ghost-theme-dev/internal/bundler"
	"github.com/royalfig/ghost-theme-dev/internal/deps"
	"github.com/royalfig/ghost-theme-dev/internal/watcher"
)

// Builder compiles entry points. Implemented by bundler.Builder.
type Builder interface {
	Build(ctx context.Context, entries []string) (*bundler.BuildResult, error)
}

// Notifier receives build results and template change signals.
// Implemented by livereload.Coordinator.
type Notifier interface {
	BuildCompleted(result *bundler.BuildResult, trigger string)
	TemplateChanged(path string)
}

// Router classifies change events and triggers scoped rebuilds. Run is a
// single-consumer loop, so no two rebuilds ever interleave: an event
// arriving while a build is in flight queues behind it. Events are not
// coalesced; a rapid double save rebuilds the same entry twice.
type Router struct {
	index    *deps.Index
	builder  Builder
	notifier Notifier

	scriptExts   []string
	styleExts    []string
	templateExts []string
	outDir       string
	ignore       []string
}

// RouterOptions configures a Router.
type RouterOptions struct {
	ScriptExts   []string
	StyleExts    []string
	TemplateExts []string
	OutDir       string
	Ignore       []string
}

// NewRouter creates a change router resolving entries through index.
func NewRouter(index *deps.Index, builder Builder, notifier Notifier, opts RouterOptions) *Router {
	return &Router{
		index:        index,
		builder:      builder,
		notifier:     notifier,
		scriptExts:   opts.ScriptExts,
		styleExts:    opts.StyleExts,
		templateExts: opts.TemplateExts,
		outDir:       filepath.Clean(opts.OutDir),
		ignore:       opts.Ignore,
	}
}

// Run consumes events until the channel closes or the context is
// cancelled. Build failures are logged and the loop continues; a broken
// save must not end the watch session.
func (r *Router) Run(ctx context.Context, events <-chan watcher.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			r.Handle(ctx, event.Path)
		}
	}
}

// Handle processes a single change event.
func (r *Router) Handle(ctx context.Context, path string) {
	if r.ignored(path) {
		return
	}

	switch {
	case assets.HasExtension(path, r.templateExts):
		// Templates reload the client directly; the executor is
		// never invoked for them.
		r.notifier.TemplateChanged(path)

	case assets.HasExtension(path, r.scriptExts), assets.HasExtension(path, r.styleExts):
		entry, ok := r.index.Resolve(path)
		if !ok {
			// No owning entry point known; nothing to rebuild.
			log.Debug().Str("path", path).Msg("Change has no owning entry point")
			return
		}

		result, err := r.builder.Build(ctx, []string{entry})
		if err != nil {
			log.Error().Err(err).Str("entry", entry).Str("trigger", path).Msg("Rebuild failed")
			return
		}

		r.notifier.BuildCompleted(result, path)

	default:
		// Unrecognized extension, nothing to do.
	}
}

// ignored reports whether the path is hidden, inside the build output
// tree, or on the configured ignore list.
func (r *Router) ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}

	clean := filepath.Clean(path)
	if clean == r.outDir || strings.HasPrefix(clean, r.outDir+string(filepath.Separator)) {
		return true
	}

	for _, seg := range strings.Split(clean, string(filepath.Separator)) {
		for _, ig := range r.ignore {
			if seg == ig {
				return true
			}
		}
	}

	return false
}
