// Package cli provides the Cobra command for the theme dev tool.
package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/royalfig/ghost-theme-dev/internal/assets"
	"github.com/royalfig/ghost-theme-dev/internal/bundler"
	"github.com/royalfig/ghost-theme-dev/internal/config"
	"github.com/royalfig/ghost-theme-dev/internal/deps"
	"github.com/royalfig/ghost-theme-dev/internal/ghost"
	"github.com/royalfig/ghost-theme-dev/internal/livereload"
	"github.com/royalfig/ghost-theme-dev/internal/pipeline"
	"github.com/royalfig/ghost-theme-dev/internal/scaffold"
	"github.com/royalfig/ghost-theme-dev/internal/watcher"
)

var (
	cfgFile   string
	themeDir  string
	watchMode bool
	initMode  bool
	debug     bool
)

var rootCmd = &cobra.Command{
	Use:   "ghost-theme-dev",
	Short: "Asset pipeline and live reload for Ghost theme development",
	Long: `ghost-theme-dev builds theme assets with esbuild and, in watch mode,
rebuilds the affected bundle on every change while pushing reload
notifications to connected browser sessions.`,
	SilenceUsage: true,
	RunE:         run,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().BoolVarP(&watchMode, "watch", "w", false,
		"watch for changes, rebuild incrementally and live-reload the browser")
	rootCmd.Flags().BoolVar(&initMode, "init", false,
		"scaffold missing theme files before building")
	rootCmd.Flags().StringVarP(&themeDir, "dir", "d", "",
		"theme directory (default is the working directory)")
	rootCmd.Flags().StringVar(&cfgFile, "config", "",
		"config file (default is ./themedev.yaml)")
	rootCmd.Flags().BoolVar(&debug, "debug", false,
		"enable debug output")
}

func run(cmd *cobra.Command, args []string) error {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if themeDir != "" {
		cfg.Theme.Dir = themeDir
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if initMode {
		scaffold.Run(cfg.Theme.Dir)
	}

	entries, err := assets.FindEntryPoints(cfg.AssetsPath(), cfg.SourceExtensions())
	if err != nil {
		// Best effort: a missing assets tree is not fatal, there is
		// simply nothing to build.
		log.Warn().Err(err).Str("dir", cfg.AssetsPath()).Msg("Entry point discovery failed")
	}
	if len(entries) == 0 {
		log.Warn().Str("dir", cfg.AssetsPath()).Msg("No entry points found")
	}

	index := deps.NewIndex(assets.IsEntryName)

	builder := bundler.NewBuilder(index, bundler.Options{
		SourceRoot:    cfg.AssetsPath(),
		OutDir:        cfg.OutputPath(),
		External:      cfg.Build.External,
		SourceMaps:    cfg.Build.SourceMaps,
		Watch:         watchMode,
		ReloadEntry:   primaryScriptEntry(entries, cfg.Theme.ScriptExts),
		ReloadSnippet: livereload.ClientSnippet(cfg.Server.Address),
	})

	if !watchMode {
		return runOnce(cmd.Context(), builder, entries)
	}

	return runWatch(cmd.Context(), cfg, index, builder, entries)
}

// runOnce performs a one-shot build of every discovered entry point.
func runOnce(ctx context.Context, builder *bundler.Builder, entries []string) error {
	result, err := builder.Build(ctx, entries)
	if err != nil {
		return err
	}

	livereload.NewCoordinator(nil).BuildCompleted(result, "")
	return nil
}

// runWatch runs the continuous mode: live-reload server, filesystem
// watcher and the single-consumer change router.
func runWatch(ctx context.Context, cfg *config.Config, index *deps.Index, builder *bundler.Builder, entries []string) error {
	instance, err := ghost.Discover(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("url", instance.URL).Msg("Serving theme for Ghost site")

	hub := livereload.NewHub()
	server := livereload.NewServer(hub, cfg.Server.Address)
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Live-reload server stopped")
		}
	}()
	hub.StartGraceTimer(cfg.Server.ConnectionGrace)

	coordinator := livereload.NewCoordinator(hub)

	// Initial build before watching so the first page load sees fresh
	// assets.
	result, err := builder.Build(ctx, entries)
	if err != nil {
		return err
	}
	coordinator.BuildCompleted(result, "")

	w, err := watcher.New(cfg.Theme.Dir, cfg.OutputPath())
	if err != nil {
		return err
	}

	router := pipeline.NewRouter(index, builder, coordinator, pipeline.RouterOptions{
		ScriptExts:   cfg.Theme.ScriptExts,
		StyleExts:    cfg.Theme.StyleExts,
		TemplateExts: cfg.Theme.TemplateExts,
		OutDir:       cfg.OutputPath(),
		Ignore:       cfg.Theme.Ignore,
	})

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go w.Run(sigCtx)

	log.Info().
		Str("dir", cfg.Theme.Dir).
		Str("address", cfg.Server.Address).
		Msg("Watching for changes")

	router.Run(sigCtx, w.Events())

	log.Info().Msg("Shutting down")
	return server.Shutdown()
}

// primaryScriptEntry picks the entry that receives the live-reload
// snippet: the first discovered script entry.
func primaryScriptEntry(entries []string, scriptExts []string) string {
	for _, e := range entries {
		if assets.HasExtension(e, scriptExts) {
			return e
		}
	}
	return ""
}
