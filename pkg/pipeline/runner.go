package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dnamaps/arlequin/pkg/cache"
	"github.com/dnamaps/arlequin/pkg/corr"
	"github.com/dnamaps/arlequin/pkg/errors"
	"github.com/dnamaps/arlequin/pkg/figure"
	"github.com/dnamaps/arlequin/pkg/observability"
	"github.com/dnamaps/arlequin/pkg/order"
	"github.com/dnamaps/arlequin/pkg/render"
	"github.com/dnamaps/arlequin/pkg/source"
	"github.com/dnamaps/arlequin/pkg/table"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, backends and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Mongo serves SourceMongo loads. Nil unless a statistics store is
	// configured.
	Mongo *source.MongoSource

	// Per-stage cache lifetimes. NewRunner sets the published defaults;
	// the CLI overrides them when the config file sets cache.ttl_hours.
	HTTPTTL     time.Duration
	TableTTL    time.Duration
	ArtifactTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:       c,
		Keyer:       keyer,
		Logger:      logger,
		HTTPTTL:     cache.TTLHTTP,
		TableTTL:    cache.TTLTable,
		ArtifactTTL: cache.TTLArtifact,
	}
}

// SetTTL overrides every per-stage cache lifetime with one duration.
// Non-positive values keep the defaults.
func (r *Runner) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	r.HTTPTTL = ttl
	r.TableTTL = ttl
	r.ArtifactTTL = ttl
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	logger := opts.Logger.With("run_id", result.RunID)

	// Stage 1: Load
	loadStart := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.Source, opts.sourceName())
	input, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	result.Stats.LoadTime = time.Since(loadStart)
	rows := 0
	if input != nil {
		rows = input.Rows()
	}
	observability.Pipeline().OnLoadComplete(ctx, opts.Source, opts.sourceName(),
		rows, result.Stats.LoadTime, err)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.RowCount = input.Rows()
	result.CacheInfo.LoadHit = loadHit

	logger.Info("loaded table",
		"source", opts.Source,
		"rows", input.Rows(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, opts.Kind, input.Rows())
	fig, err := r.BuildFigure(input, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	observability.Pipeline().OnLayoutComplete(ctx, opts.Kind, result.Stats.LayoutTime, err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Figure = fig

	// The layout hash keys the artifact cache and identifies the layout
	// in API responses.
	if layoutData, err := render.RenderJSON(fig); err == nil {
		result.FigureHash = cache.Hash(layoutData)
	}

	logger.Info("computed layout",
		"kind", opts.Kind,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, fig, result.FigureHash, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo loads the input table with caching and returns cache hit info.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*Input, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.TableKey(opts.Source, opts.sourceName(), opts.TableKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if input, err := unmarshalInput(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "table")
				return input, true, nil
			}
			// Undecodable entry: fall through to reload
		}
	}
	observability.Cache().OnCacheMiss(ctx, "table")

	input, err := r.load(ctx, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := marshalInput(input); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, r.TableTTL)
		observability.Cache().OnCacheSet(ctx, "table", len(data))
	}
	return input, false, nil
}

// Load is a convenience wrapper that discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*Input, error) {
	input, _, err := r.LoadWithCacheInfo(ctx, opts)
	return input, err
}

func (r *Runner) load(ctx context.Context, opts Options) (*Input, error) {
	kind, err := figure.ParseKind(opts.Kind)
	if err != nil {
		return nil, err
	}

	switch opts.Source {
	case SourceCSV:
		switch kind {
		case figure.KindCorrelation:
			m, err := source.LoadMatrixCSVFile(opts.Path)
			return &Input{Matrix: m}, err
		case figure.KindBasepair:
			f, err := source.LoadFlatCSVFile(opts.Path)
			return &Input{Flat: f}, err
		default:
			t, err := source.LoadCSVFile(opts.Path)
			return &Input{Table: t}, err
		}

	case SourceHTTP:
		client := source.NewClient(r.Cache, r.Keyer, r.HTTPTTL)
		switch kind {
		case figure.KindCorrelation:
			m, err := client.FetchMatrix(ctx, opts.URL, opts.Refresh)
			return &Input{Matrix: m}, err
		case figure.KindBasepair:
			f, err := client.FetchFlat(ctx, opts.URL, opts.Refresh)
			return &Input{Flat: f}, err
		default:
			t, err := client.FetchTable(ctx, opts.URL, opts.Refresh)
			return &Input{Table: t}, err
		}

	case SourceMongo:
		if r.Mongo == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"mongo source requested but no statistics store is configured")
		}
		switch kind {
		case figure.KindCorrelation:
			return nil, errors.New(errors.ErrCodeUnsupported,
				"correlation matrices are not stored in mongo; use csv or http")
		case figure.KindBasepair:
			f, err := r.Mongo.LoadFlat(ctx, opts.Collection, opts.Columns)
			return &Input{Flat: f}, err
		default:
			t, err := r.Mongo.LoadTable(ctx, opts.Collection, opts.Columns)
			return &Input{Table: t}, err
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown source %q", opts.Source)
}

// BuildFigure computes the layout descriptor for the loaded input. The
// dispatch enforces the input shape each figure kind expects.
func (r *Runner) BuildFigure(input *Input, opts Options) (figure.Figure, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	kind, err := figure.ParseKind(opts.Kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case figure.KindArlequin:
		if input.Table == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "arlequin figures need a keyed table")
		}
		return figure.BuildArlequin(input.Table, figure.ArlequinOptions{
			Helpar:      opts.Name,
			ContextLen:  opts.ContextLength,
			Flex:        opts.FlexibleSymbol,
			Rows:        order.Order(opts.Rows),
			Cols:        order.Order(opts.Cols),
			UpperColumn: opts.UpperColumn,
			LowerColumn: opts.LowerColumn,
			GlobalMean:  opts.GlobalMean,
			GlobalStd:   opts.GlobalStd,
			Scale:       opts.Scale,
			Policy:      opts.Policy(),
		})

	case figure.KindConformation:
		if input.Table == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "conformation figures need a keyed table")
		}
		return figure.BuildConformation(input.Table, figure.ConformationOptions{
			Name:   opts.Name,
			Flex:   opts.FlexibleSymbol,
			Column: opts.Column,
			Scale:  opts.Scale,
		})

	case figure.KindCorrelation:
		if input.Matrix == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "correlation figures need a two-level matrix")
		}
		return figure.BuildCorrelation(input.Matrix, figure.CorrelationOptions{
			Title: opts.Name,
			Scale: opts.Scale,
		})

	case figure.KindBasepair:
		if input.Flat == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "basepair figures need a flat matrix")
		}
		return figure.BuildBasepair(input.Flat, figure.BasepairOptions{
			Title:  opts.Name,
			Window: opts.Window(),
			Scale:  opts.Scale,
		})
	}
	return nil, errors.New(errors.ErrCodeInvalidFigure, "unknown figure kind %q", opts.Kind)
}

// RenderWithCacheInfo renders artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, fig figure.Figure, figureHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Try to get all formats from cache
	allCached := figureHash != ""
	artifacts := make(map[string][]byte)
	if allCached {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(figureHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered, err := r.renderFormats(fig, opts)
	if err != nil {
		return nil, false, err
	}

	if figureHash != "" {
		for format, data := range rendered {
			cacheKey := r.Keyer.ArtifactKey(figureHash, opts.ArtifactKeyOpts(format))
			_ = r.Cache.Set(ctx, cacheKey, data, r.ArtifactTTL)
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, fig figure.Figure, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, fig, "", opts)
	return artifacts, err
}

func (r *Runner) renderFormats(fig figure.Figure, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	// PDF and PNG both convert from the SVG rendition.
	var svg []byte
	needSVG := false
	for _, f := range opts.Formats {
		if f == FormatSVG || f == FormatPDF || f == FormatPNG {
			needSVG = true
		}
	}
	if needSVG {
		data, err := render.RenderSVG(fig, render.WithCell(opts.CellSize))
		if err != nil {
			return nil, err
		}
		svg = data
	}

	for _, format := range opts.Formats {
		switch format {
		case FormatSVG:
			artifacts[format] = svg
		case FormatJSON:
			data, err := render.RenderJSON(fig)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		case FormatPDF:
			data, err := render.ToPDF(svg)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		case FormatPNG:
			data, err := render.ToPNG(svg, opts.PNGScale)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		default:
			return nil, ValidateFormat(format)
		}
	}
	return artifacts, nil
}

// Close releases resources held by the runner (the cache and any backends).
func (r *Runner) Close(ctx context.Context) error {
	var first error
	if r.Mongo != nil {
		first = r.Mongo.Close(ctx)
	}
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// =============================================================================
// Input serialization for the load-stage cache
// =============================================================================

// inputDoc is the cached form of an Input. Missing values are serialized as
// nulls since JSON has no NaN.
type inputDoc struct {
	Keys     []string     `json:"keys,omitempty"`
	Columns  []colDoc     `json:"columns,omitempty"`
	MatRows  []corr.Key   `json:"mat_rows,omitempty"`
	MatCols  []corr.Key   `json:"mat_cols,omitempty"`
	MatVals  [][]*float64 `json:"mat_vals,omitempty"`
	Index    []string     `json:"index,omitempty"`
	FlatCols []string     `json:"flat_cols,omitempty"`
	FlatVals [][]*float64 `json:"flat_vals,omitempty"`
}

type colDoc struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

func marshalInput(in *Input) ([]byte, error) {
	var doc inputDoc
	switch {
	case in.Table != nil:
		doc.Keys = in.Table.Keys()
		for _, name := range in.Table.ColumnNames() {
			values, _ := in.Table.Column(name)
			doc.Columns = append(doc.Columns, colDoc{Name: name, Values: toNullable(values)})
		}
	case in.Matrix != nil:
		doc.MatRows = in.Matrix.Rows
		doc.MatCols = in.Matrix.Cols
		doc.MatVals = toNullableGrid(in.Matrix.Values)
	case in.Flat != nil:
		doc.Index = in.Flat.Index
		doc.FlatCols = in.Flat.Columns
		doc.FlatVals = toNullableGrid(in.Flat.Values)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty input")
	}
	return json.Marshal(doc)
}

func unmarshalInput(data []byte) (*Input, error) {
	var doc inputDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	switch {
	case doc.Keys != nil:
		cols := make([]table.Column, len(doc.Columns))
		for i, c := range doc.Columns {
			cols[i] = table.Column{Name: c.Name, Values: fromNullable(c.Values)}
		}
		t, err := table.New(doc.Keys, cols...)
		if err != nil {
			return nil, err
		}
		return &Input{Table: t}, nil
	case doc.MatRows != nil:
		m, err := corr.New(doc.MatRows, doc.MatCols, fromNullableGrid(doc.MatVals))
		if err != nil {
			return nil, err
		}
		return &Input{Matrix: m}, nil
	case doc.Index != nil:
		f, err := corr.NewFlat(doc.Index, doc.FlatCols, fromNullableGrid(doc.FlatVals))
		if err != nil {
			return nil, err
		}
		return &Input{Flat: f}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "cached input has no payload")
}

func toNullable(vals []float64) []*float64 {
	out := make([]*float64, len(vals))
	for i := range vals {
		if !math.IsNaN(vals[i]) {
			out[i] = &vals[i]
		}
	}
	return out
}

func toNullableGrid(vals [][]float64) [][]*float64 {
	out := make([][]*float64, len(vals))
	for i, row := range vals {
		out[i] = toNullable(row)
	}
	return out
}

func fromNullable(vals []*float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if v == nil {
			out[i] = table.Missing()
		} else {
			out[i] = *v
		}
	}
	return out
}

func fromNullableGrid(vals [][]*float64) [][]float64 {
	out := make([][]float64, len(vals))
	for i, row := range vals {
		out[i] = fromNullable(row)
	}
	return out
}
