package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dnamaps/arlequin/pkg/errors"
)

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arlequin.toml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Layout.ContextLength != 4 {
		t.Errorf("ContextLength = %d, want 4", cfg.Layout.ContextLength)
	}
	if cfg.Layout.FlexibleSymbol != "T" {
		t.Errorf("FlexibleSymbol = %q, want T", cfg.Layout.FlexibleSymbol)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[layout]
context_length = 3
flexible_symbol = "U"
missing_policy = "expand"
category_window = [0, 2]

[colors]
arlequin_bounds = [-2.0, 0.0, 2.0]

[output]
dir = "out"
formats = ["svg", "json"]

[cache]
redis_url = "redis://localhost:6379/0"
ttl_hours = 12
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.ContextLength != 3 {
		t.Errorf("ContextLength = %d, want 3", cfg.Layout.ContextLength)
	}
	if cfg.Layout.FlexibleSymbol != "U" {
		t.Errorf("FlexibleSymbol = %q, want U", cfg.Layout.FlexibleSymbol)
	}
	if len(cfg.Colors.Arlequin) != 3 {
		t.Errorf("Arlequin bounds = %v", cfg.Colors.Arlequin)
	}
	if cfg.Output.Dir != "out" || len(cfg.Output.Formats) != 2 {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if cfg.Cache.RedisURL == "" || cfg.Cache.TTLHours != 12 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	// Options absent from the file keep their defaults.
	if cfg.Output.CellSize != 28 {
		t.Errorf("CellSize = %v, want default 28", cfg.Output.CellSize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if errors.GetCode(err) != errors.ErrCodeFileNotFound {
		t.Errorf("code = %v, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   errors.Code
	}{
		{"context length", func(c *Config) { c.Layout.ContextLength = 5 }, errors.ErrCodeConfigContextLength},
		{"flex symbol lowercase", func(c *Config) { c.Layout.FlexibleSymbol = "t" }, errors.ErrCodeConfigSymbol},
		{"flex symbol too long", func(c *Config) { c.Layout.FlexibleSymbol = "TT" }, errors.ErrCodeConfigSymbol},
		{"flex symbol not a base", func(c *Config) { c.Layout.FlexibleSymbol = "Z" }, errors.ErrCodeConfigSymbol},
		{"policy", func(c *Config) { c.Layout.MissingPolicy = "drop" }, errors.ErrCodeInvalidInput},
		{"window shape", func(c *Config) { c.Layout.CategoryWindow = []int{1} }, errors.ErrCodeConfigWindow},
		{"window negative start", func(c *Config) { c.Layout.CategoryWindow = []int{-1, 2} }, errors.ErrCodeConfigWindow},
		{"format", func(c *Config) { c.Output.Formats = []string{"tiff"} }, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); errors.GetCode(err) != tt.code {
				t.Errorf("code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := writeConfig(t, "[layout\ncontext_length = 4\n")
	if _, err := Load(path); errors.GetCode(err) != errors.ErrCodeInvalidFormat {
		t.Errorf("code = %v, want INVALID_FORMAT", errors.GetCode(err))
	}
}
