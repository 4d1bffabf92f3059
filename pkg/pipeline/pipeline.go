// Package pipeline provides the core figure pipeline: load a statistics
// table, compute the figure layout, render the output formats.
//
// Centralizing the three stages keeps the CLI and the HTTP service in exact
// agreement about defaults, validation and caching.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  pipeline.SourceCSV,
//	    Path:    "tetramer_diffs.csv",
//	    Kind:    "arlequin",
//	    Name:    "twist",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dnamaps/arlequin/pkg/cache"
	"github.com/dnamaps/arlequin/pkg/corr"
	"github.com/dnamaps/arlequin/pkg/errors"
	"github.com/dnamaps/arlequin/pkg/figure"
	"github.com/dnamaps/arlequin/pkg/render/palette"
	"github.com/dnamaps/arlequin/pkg/table"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// Source constants for table loading.
const (
	SourceCSV   = "csv"
	SourceHTTP  = "http"
	SourceMongo = "mongo"
)

// Default render values shared by CLI and API.
const (
	DefaultCellSize = 28.0
	DefaultPNGScale = 2.0
)

// Options contains all configuration for the figure pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Source     string   `json:"source"`
	Path       string   `json:"path,omitempty"`       // csv: file path
	URL        string   `json:"url,omitempty"`        // http: document URL
	Collection string   `json:"collection,omitempty"` // mongo: collection name
	Columns    []string `json:"columns,omitempty"`    // mongo: value columns to load
	Refresh    bool     `json:"refresh,omitempty"`

	// Layout options
	Kind           string   `json:"kind"`
	Name           string   `json:"name,omitempty"` // parameter or dataset name, used in titles
	ContextLength  int      `json:"context_length,omitempty"`
	FlexibleSymbol string   `json:"flexible_symbol,omitempty"`
	MissingPolicy  string   `json:"missing_policy,omitempty"` // strict (default) or expand
	Rows           []string `json:"rows,omitempty"`           // explicit row order override
	Cols           []string `json:"cols,omitempty"`           // explicit column order override
	UpperColumn    string   `json:"upper_column,omitempty"`
	LowerColumn    string   `json:"lower_column,omitempty"`
	Column         string   `json:"column,omitempty"` // conformation percentage column
	GlobalMean     float64  `json:"global_mean,omitempty"`
	GlobalStd      float64  `json:"global_std,omitempty"`
	WindowStart    int      `json:"window_start,omitempty"`
	WindowLength   int      `json:"window_length,omitempty"`

	// Scale overrides the figure kind's published color scale.
	Scale *palette.Scale `json:"scale,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	CellSize float64  `json:"cell_size,omitempty"`
	PNGScale float64  `json:"png_scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Input is the loaded data of a pipeline run. Exactly one field is non-nil,
// matching the figure kind's expected shape.
type Input struct {
	Table  *table.Table
	Matrix *corr.Matrix
	Flat   *corr.Flat
}

// Rows returns the row count of whichever shape was loaded.
func (in *Input) Rows() int {
	switch {
	case in.Table != nil:
		return in.Table.Len()
	case in.Matrix != nil:
		return len(in.Matrix.Rows)
	case in.Flat != nil:
		return len(in.Flat.Index)
	}
	return 0
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this execution in logs and hooks.
	RunID string

	// Figure is the computed layout descriptor.
	Figure figure.Figure

	// FigureHash is the content hash of the layout, used for artifact keys.
	FigureHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RowCount   int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for the cached pipeline stages. The layout
// stage is pure arithmetic and always recomputed; its hash keys the
// artifact cache instead.
type CacheInfo struct {
	LoadHit   bool // Whether the loaded table came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeUnsupported,
			"invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for table loading.
func (o *Options) ValidateForLoad() error {
	switch o.Source {
	case SourceCSV:
		if o.Path == "" {
			return errors.New(errors.ErrCodeInvalidInput, "csv source requires a path")
		}
	case SourceHTTP:
		if o.URL == "" {
			return errors.New(errors.ErrCodeInvalidInput, "http source requires a url")
		}
	case SourceMongo:
		if o.Collection == "" {
			return errors.New(errors.ErrCodeInvalidInput, "mongo source requires a collection")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"source must be csv, http or mongo, got %q", o.Source)
	}
	o.setLogger()
	return nil
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	if _, err := figure.ParseKind(o.Kind); err != nil {
		return err
	}
	switch o.MissingPolicy {
	case "":
		o.MissingPolicy = "strict"
	case "strict", "expand":
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"missing_policy must be strict or expand, got %q", o.MissingPolicy)
	}
	o.setLogger()
	return nil
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	for _, f := range o.Formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	if o.CellSize == 0 {
		o.CellSize = DefaultCellSize
	}
	if o.PNGScale == 0 {
		o.PNGScale = DefaultPNGScale
	}
	o.setLogger()
	return nil
}

// Policy maps the option string onto the table reindexing policy.
func (o *Options) Policy() table.Policy {
	if o.MissingPolicy == "expand" {
		return table.PolicyExpand
	}
	return table.PolicyStrict
}

// Window returns the basepair category window, or the default when unset.
func (o *Options) Window() corr.Window {
	if o.WindowLength == 0 {
		return corr.DefaultWindow
	}
	return corr.Window{Start: o.WindowStart, Length: o.WindowLength}
}

// sourceName identifies the loaded document for cache keys and logs.
func (o *Options) sourceName() string {
	switch o.Source {
	case SourceCSV:
		return o.Path
	case SourceHTTP:
		return o.URL
	case SourceMongo:
		return o.Collection
	}
	return ""
}

// TableKeyOpts returns cache key options for table loading.
func (o *Options) TableKeyOpts() cache.TableKeyOpts {
	return cache.TableKeyOpts{Columns: o.Columns}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Cell:   o.CellSize,
		Scale:  o.PNGScale,
	}
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
