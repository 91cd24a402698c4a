package bundler

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"

	"github.com/royalfig/ghost-theme-dev/internal/deps"
)

// Artifact is one output file produced by a build, excluding source maps.
type Artifact struct {
	Path  string
	Bytes int64
	Size  string // human-readable, see FormatBytes
}

// BuildResult aggregates the artifacts and total wall-clock time of one
// executor invocation. It is consumed by the notification coordinator
// immediately after the build and then discarded.
type BuildResult struct {
	Artifacts []Artifact
	Elapsed   time.Duration
}

// Builder invokes esbuild for one or more entry points and records every
// consumed input file in the dependency index.
type Builder struct {
	index *deps.Index

	sourceRoot string // Outbase: output tree mirrors paths relative to this
	outDir     string
	external   []string
	sourceMaps bool

	// Watch mode skips minification and appends the live-reload client
	// snippet to the primary script entry.
	watch         bool
	reloadEntry   string
	reloadSnippet string
}

// Options configures a Builder.
type Options struct {
	SourceRoot string
	OutDir     string
	External   []string
	SourceMaps bool
	Watch      bool

	// ReloadEntry is the entry point that receives ReloadSnippet as a
	// footer when Watch is set. Both may be empty.
	ReloadEntry   string
	ReloadSnippet string
}

// NewBuilder creates a build executor writing into opts.OutDir and
// recording input ownership in index.
func NewBuilder(index *deps.Index, opts Options) *Builder {
	return &Builder{
		index:         index,
		sourceRoot:    opts.SourceRoot,
		outDir:        opts.OutDir,
		external:      opts.External,
		sourceMaps:    opts.SourceMaps,
		watch:         opts.Watch,
		reloadEntry:   opts.ReloadEntry,
		reloadSnippet: opts.ReloadSnippet,
	}
}

// Build compiles the given entry points sequentially. One entry fully
// completes (including its index updates) before the next starts, so the
// shared index never sees concurrent writes and total-time accounting
// stays simple. A failing entry aborts the batch; index updates from
// earlier entries remain in place.
func (b *Builder) Build(ctx context.Context, entries []string) (*BuildResult, error) {
	start := time.Now()
	result := &BuildResult{}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		artifacts, err := b.buildEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("bundling %s: %w", entry, err)
		}
		result.Artifacts = append(result.Artifacts, artifacts...)
	}

	result.Elapsed = time.Since(start)

	log.Debug().
		Int("entries", len(entries)).
		Int("artifacts", len(result.Artifacts)).
		Dur("elapsed", result.Elapsed).
		Msg("Build batch completed")

	return result, nil
}

// buildEntry runs esbuild for a single entry point and records its
// consumed inputs in the dependency index.
func (b *Builder) buildEntry(entry string) ([]Artifact, error) {
	opts := api.BuildOptions{
		EntryPoints: []string{entry},
		Bundle:      true,
		Write:       true,
		Metafile:    true,
		Outdir:      b.outDir,
		Outbase:     b.sourceRoot,
		Target:      api.ES2020,
		Engines: []api.Engine{
			{Name: api.EngineChrome, Version: "80"},
			{Name: api.EngineFirefox, Version: "78"},
			{Name: api.EngineSafari, Version: "13"},
			{Name: api.EngineEdge, Version: "80"},
		},
		External: b.external,
		LogLevel: api.LogLevelSilent,

		MinifyWhitespace:  !b.watch,
		MinifyIdentifiers: !b.watch,
		MinifySyntax:      !b.watch,
	}

	if b.sourceMaps {
		opts.Sourcemap = api.SourceMapLinked
	}

	if b.watch && b.reloadSnippet != "" && entry == b.reloadEntry {
		opts.Footer = map[string]string{"js": b.reloadSnippet}
	}

	buildResult := api.Build(opts)
	if len(buildResult.Errors) > 0 {
		var msgs []string
		for _, e := range buildResult.Errors {
			msgs = append(msgs, e.Text)
		}
		return nil, fmt.Errorf("%s", strings.Join(msgs, "; "))
	}

	var meta Metafile
	if err := json.Unmarshal([]byte(buildResult.Metafile), &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metafile: %w", err)
	}

	// Every input the bundler touched now belongs to this entry,
	// overwriting any prior owner.
	for inputPath := range meta.Inputs {
		b.index.Record(inputPath, entry)
	}

	// Metafile outputs are a map; sort the paths so artifact order is
	// stable across runs.
	outPaths := make([]string, 0, len(meta.Outputs))
	for outPath := range meta.Outputs {
		if strings.HasSuffix(outPath, ".map") {
			continue
		}
		outPaths = append(outPaths, outPath)
	}
	sort.Strings(outPaths)

	artifacts := make([]Artifact, 0, len(outPaths))
	for _, outPath := range outPaths {
		out := meta.Outputs[outPath]
		artifacts = append(artifacts, Artifact{
			Path:  outPath,
			Bytes: int64(out.Bytes),
			Size:  FormatBytes(int64(out.Bytes)),
		})
	}

	return artifacts, nil
}
