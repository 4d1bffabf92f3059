// Package cli implements the arlequin command-line interface.
//
// This package provides commands for rendering nucleotide-context heatmaps
// from CSV files, HTTP documents, or MongoDB collections, serving the render
// pipeline over HTTP, and managing the artifact cache. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - render: Generate SVG, PDF, PNG, or JSON heatmap figures
//   - serve: Run the figure-rendering HTTP API
//   - cache: Manage the table and artifact cache
//   - completion: Generate shell completion scripts
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dnamaps/arlequin/pkg/buildinfo"
	"github.com/dnamaps/arlequin/pkg/cache"
	"github.com/dnamaps/arlequin/pkg/config"
	"github.com/dnamaps/arlequin/pkg/pipeline"
	"github.com/dnamaps/arlequin/pkg/source"
)

// appName is the application name used for directories and display.
const appName = "arlequin"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Arlequin renders nucleotide-context statistics as heatmaps",
		Long:         `Arlequin is a CLI tool for laying out structural-biology context statistics (tetramer differences, conformer populations, helical-parameter correlations) as split-triangle and grid heatmaps with canonical axis orders.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use. The cache backend is
// picked from the config: Redis when a URL is set, otherwise a file cache
// under the configured (or XDG default) directory. When the config names a
// Mongo deployment the runner gets a connected source for it.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(store, nil, c.Logger)
	runner.SetTTL(time.Duration(cfg.Cache.TTLHours) * time.Hour)

	if cfg.Mongo.URI != "" {
		ms, err := source.NewMongoSource(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		runner.Mongo = ms
	}
	return runner, nil
}

func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisURL != "" {
		return cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/arlequin/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// loadConfig loads the TOML config at path, or the defaults when path is empty.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// parseList parses a comma-separated list flag, returning nil for empty.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
