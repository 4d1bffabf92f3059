// Package config reads the TOML configuration file that sets figure layout
// defaults, color bounds, output settings and backend connections.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/dnamaps/arlequin/pkg/errors"
	"github.com/dnamaps/arlequin/pkg/order"
)

// Config is the full configuration document. Zero values fall back to the
// published layout defaults.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Colors ColorsConfig `toml:"colors"`
	Output OutputConfig `toml:"output"`
	Cache  CacheConfig  `toml:"cache"`
	Mongo  MongoConfig  `toml:"mongo"`
}

// LayoutConfig sets the ordering and reindexing behavior.
type LayoutConfig struct {
	// ContextLength is the oligomer length (2, 3 or 4).
	ContextLength int `toml:"context_length"`

	// FlexibleSymbol substitutes the '*' placeholder in the canonical
	// orders. Must be a single nucleotide base (or U for RNA).
	FlexibleSymbol string `toml:"flexible_symbol"`

	// MissingPolicy is "strict" or "expand".
	MissingPolicy string `toml:"missing_policy"`

	// CategoryWindow is the [start, length] substring that classifies
	// basepair-step categories.
	CategoryWindow []int `toml:"category_window"`
}

// ColorsConfig overrides the color-scale breakpoints per figure kind.
// Empty slices keep the published bounds.
type ColorsConfig struct {
	Arlequin     []float64 `toml:"arlequin_bounds"`
	Conformation []float64 `toml:"conformation_bounds"`
	Correlation  []float64 `toml:"correlation_bounds"`
	Basepair     []float64 `toml:"basepair_bounds"`
}

// OutputConfig sets where and how artifacts are written.
type OutputConfig struct {
	Dir      string   `toml:"dir"`
	Formats  []string `toml:"formats"`
	CellSize float64  `toml:"cell_size"`
	PNGScale float64  `toml:"png_scale"`
}

// CacheConfig selects the cache backend. RedisURL takes precedence over Dir;
// leaving both empty falls back to the XDG cache directory. A positive
// TTLHours overrides the per-stage entry lifetimes.
type CacheConfig struct {
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	TTLHours int    `toml:"ttl_hours"`
}

// MongoConfig points at a statistics store.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Default returns the published layout defaults.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			ContextLength:  4,
			FlexibleSymbol: "T",
			MissingPolicy:  "strict",
			CategoryWindow: []int{1, 2},
		},
		Output: OutputConfig{
			Dir:      ".",
			Formats:  []string{"svg"},
			CellSize: 28,
			PNGScale: 2,
		},
	}
}

// Load reads and validates a configuration file. Options absent from the
// file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, errors.New(errors.ErrCodeFileNotFound, "no such config file: %s", path)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every option the layout engine is sensitive to.
func (c Config) Validate() error {
	switch c.Layout.ContextLength {
	case 2, 3, 4:
	default:
		return errors.New(errors.ErrCodeConfigContextLength,
			"context_length must be 2, 3 or 4, got %d", c.Layout.ContextLength)
	}

	if err := order.ValidateFlex(c.Layout.FlexibleSymbol); err != nil {
		return err
	}

	switch c.Layout.MissingPolicy {
	case "strict", "expand":
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"missing_policy must be strict or expand, got %q", c.Layout.MissingPolicy)
	}

	if w := c.Layout.CategoryWindow; len(w) != 2 || w[0] < 0 || w[1] < 1 {
		return errors.New(errors.ErrCodeConfigWindow,
			"category_window must be [start, length] with start >= 0 and length >= 1, got %v", w)
	}

	for _, f := range c.Output.Formats {
		switch f {
		case "svg", "pdf", "png", "json":
		default:
			return errors.New(errors.ErrCodeUnsupported, "unknown output format %q", f)
		}
	}
	return nil
}
