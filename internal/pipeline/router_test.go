package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/royalfig/ghost-theme-dev/internal/assets"
	"github.com/royalfig/ghost-theme-dev/internal/bundler"
	"github.com/royalfig/ghost-theme-dev/internal/deps"
	"github.com/royalfig/ghost-theme-dev/internal/watcher"
)

type fakeBuilder struct {
	calls [][]string
	err   error
}

func (f *fakeBuilder) Build(ctx context.Context, entries []string) (*bundler.BuildResult, error) {
	f.calls = append(f.calls, entries)
	if f.err != nil {
		return nil, f.err
	}
	return &bundler.BuildResult{Elapsed: time.Millisecond}, nil
}

type fakeNotifier struct {
	builds    []string // trigger paths
	templates []string
}

func (f *fakeNotifier) BuildCompleted(result *bundler.BuildResult, trigger string) {
	f.builds = append(f.builds, trigger)
}

func (f *fakeNotifier) TemplateChanged(path string) {
	f.templates = append(f.templates, path)
}

func newTestRouter(index *deps.Index, builder Builder, notifier Notifier) *Router {
	return NewRouter(index, builder, notifier, RouterOptions{
		ScriptExts:   []string{".js", ".ts"},
		StyleExts:    []string{".css"},
		TemplateExts: []string{".hbs"},
		OutDir:       filepath.Join("assets", "built"),
		Ignore:       []string{"node_modules"},
	})
}

func TestHandle_TemplateChangeBypassesBuilder(t *testing.T) {
	index := deps.NewIndex(assets.IsEntryName)
	builder := &fakeBuilder{}
	notifier := &fakeNotifier{}
	router := newTestRouter(index, builder, notifier)

	router.Handle(context.Background(), "post.hbs")

	assert.Empty(t, builder.calls, "builder must never run for template changes")
	assert.Equal(t, []string{"post.hbs"}, notifier.templates)
}

func TestHandle_StyleChangeRebuildsOwningEntry(t *testing.T) {
	index := deps.NewIndex(assets.IsEntryName)
	entry := filepath.Join("assets", "css", "index.css")
	changed := filepath.Join("assets", "css", "typography.css")
	index.Record(changed, entry)

	builder := &fakeBuilder{}
	notifier := &fakeNotifier{}
	router := newTestRouter(index, builder, notifier)

	router.Handle(context.Background(), changed)

	assert.Equal(t, [][]string{{entry}}, builder.calls, "exactly one build of the owning entry")
	// The notification carries the changed file's path, not the entry's.
	assert.Equal(t, []string{changed}, notifier.builds)
	assert.Empty(t, notifier.templates)
}

func TestHandle_EntryFileIsItsOwnEntry(t *testing.T) {
	index := deps.NewIndex(assets.IsEntryName)
	builder := &fakeBuilder{}
	notifier := &fakeNotifier{}
	router := newTestRouter(index, builder, notifier)

	entry := filepath.Join("assets", "js", "index.js")
	router.Handle(context.Background(), entry)

	assert.Equal(t, [][]string{{entry}}, builder.calls)
}

func TestHandle_UnresolvedChangeIsDropped(t *testing.T) {
	index := deps.NewIndex(assets.IsEntryName)
	builder := &fakeBuilder{}
	notifier := &fakeNotifier{}
	router := newTestRouter(index, builder, notifier)

	router.Handle(context.Background(), filepath.Join("assets", "js", "orphan.js"))

	assert.Empty(t, builder.calls)
	assert.Empty(t, notifier.builds)
}

func TestHandle_IgnoredPaths(t *testing.T) {
	index := deps.NewIndex(assets.IsEntryName)
	builder := &fakeBuilder{}
	notifier := &fakeNotifier{}
	router := newTestRouter(index, builder, notifier)

	paths := []string{
		filepath.Join("assets", ".hidden.css"),
		filepath.Join("assets", "built", "css", "index.css"),
		filepath.Join("node_modules", "pkg", "index.js"),
		filepath.Join("assets", "node_modules", "lib", "index.css"),
		"README.md",
	}
	for _, p := range paths {
		router.Handle(context.Background(), p)
	}

	assert.Empty(t, builder.calls)
	assert.Empty(t, notifier.builds)
	assert.Empty(t, notifier.templates)
}

func TestHandle_BuildErrorDoesNotNotify(t *testing.T) {
	index := deps.NewIndex(assets.IsEntryName)
	builder := &fakeBuilder{err: assert.AnError}
	notifier := &fakeNotifier{}
	router := newTestRouter(index, builder, notifier)

	router.Handle(context.Background(), filepath.Join("assets", "js", "index.js"))

	assert.Len(t, builder.calls, 1)
	assert.Empty(t, notifier.builds)
}

func TestRun_ProcessesEventsInOrder(t *testing.T) {
	index := deps.NewIndex(assets.IsEntryName)
	builder := &fakeBuilder{}
	notifier := &fakeNotifier{}
	router := newTestRouter(index, builder, notifier)

	events := make(chan watcher.Event, 3)
	events <- watcher.Event{Path: filepath.Join("assets", "js", "index.js")}
	events <- watcher.Event{Path: "post.hbs"}
	// A second change while the first build "ran" is not deduplicated.
	events <- watcher.Event{Path: filepath.Join("assets", "js", "index.js")}
	close(events)

	router.Run(context.Background(), events)

	assert.Len(t, builder.calls, 2, "overlapping changes of the same entry rebuild it twice")
	assert.Equal(t, []string{"post.hbs"}, notifier.templates)
}
