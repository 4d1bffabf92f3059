package cli

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/dnamaps/arlequin/pkg/cache"
	"github.com/dnamaps/arlequin/pkg/config"
)

func TestRootCommandSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := map[string]bool{
		"render":     false,
		"serve":      false,
		"cache":      false,
		"completion": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("cacheDir = %q", dir)
	}
}

func TestNewCacheBackends(t *testing.T) {
	ctx := context.Background()

	// noCache always wins
	store, err := newCache(ctx, config.Default(), true)
	if err != nil {
		t.Fatalf("newCache: %v", err)
	}
	if store == nil {
		t.Fatal("newCache returned nil store")
	}

	// explicit directory
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()
	store, err = newCache(ctx, cfg, false)
	if err != nil {
		t.Fatalf("newCache with dir: %v", err)
	}
	if err := store.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Errorf("file cache Set: %v", err)
	}
	if data, ok, err := store.Get(ctx, "k"); err != nil || !ok || string(data) != "v" {
		t.Errorf("file cache Get = (%q, %v, %v)", data, ok, err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNewRunnerAppliesConfiguredTTL(t *testing.T) {
	c := New(io.Discard, LogInfo)

	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()
	cfg.Cache.TTLHours = 2

	runner, err := c.newRunner(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer runner.Close(context.Background())

	if runner.TableTTL != 2*time.Hour {
		t.Errorf("TableTTL = %v, want 2h", runner.TableTTL)
	}
	if runner.HTTPTTL != 2*time.Hour || runner.ArtifactTTL != 2*time.Hour {
		t.Errorf("HTTPTTL/ArtifactTTL = %v/%v, want 2h", runner.HTTPTTL, runner.ArtifactTTL)
	}

	// Unset hours keep the per-stage defaults.
	cfg.Cache.TTLHours = 0
	runner, err = c.newRunner(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer runner.Close(context.Background())

	if runner.TableTTL != cache.TTLTable {
		t.Errorf("TableTTL = %v, want %v", runner.TableTTL, cache.TTLTable)
	}
}

func TestLoadConfigDefault(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Layout.ContextLength != 4 {
		t.Errorf("ContextLength = %d, want default 4", cfg.Layout.ContextLength)
	}
}
