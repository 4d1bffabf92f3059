package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dnamaps/arlequin/pkg/config"
	"github.com/dnamaps/arlequin/pkg/corr"
	"github.com/dnamaps/arlequin/pkg/figure"
	"github.com/dnamaps/arlequin/pkg/pipeline"
	"github.com/dnamaps/arlequin/pkg/render"
	"github.com/dnamaps/arlequin/pkg/render/palette"
)

// renderOpts holds the command-line flags for the render command.
// These options control data loading, axis layout, and output formats.
type renderOpts struct {
	configPath   string   // optional TOML config file
	source       string   // data source: csv, http, mongo
	url          string   // http: document URL
	collection   string   // mongo: collection name
	columns      []string // mongo: value columns to load
	kind         string   // figure family: arlequin, conformation, correlation, basepair
	name         string   // parameter or dataset name used in titles
	contextLen   int      // nucleotide context length: 2, 3, or 4
	flex         string   // flexible placeholder symbol
	policy       string   // missing-row policy: strict or expand
	rows         []string // explicit row order override
	cols         []string // explicit column order override
	upper        string   // arlequin upper-triangle column
	lower        string   // arlequin lower-triangle column
	column       string   // conformation percentage column
	mean         float64  // arlequin global mean for the legend
	std          float64  // arlequin global standard deviation for the legend
	windowStart  int      // basepair category window start
	windowLength int      // basepair category window length
	output       string   // output file path (or base path for multiple formats)
	formats      []string // output formats: svg, pdf, png, json
	cell         float64  // heatmap cell size in pixels
	pngScale     float64  // PNG raster scale factor
	refresh      bool     // bypass the table cache
	noCache      bool     // disable caching entirely
	panels       bool     // also write per-pair (or per-category) panel SVGs
	interactive  bool     // browse correlation panels interactively
}

// renderCommand creates the render command for generating heatmap figures.
// It loads a table from a CSV file, an HTTP document, or a Mongo collection,
// lays it out as the requested figure family, and writes one artifact per
// output format.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr, rowsStr, colsStr, columnsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a heatmap figure from a statistics table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			opts.rows = parseList(rowsStr)
			opts.cols = parseList(colsStr)
			opts.columns = parseList(columnsStr)
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML config file")
	cmd.Flags().StringVar(&opts.source, "source", "", "data source: csv (default), http, mongo")
	cmd.Flags().StringVar(&opts.url, "url", "", "document URL (http source)")
	cmd.Flags().StringVar(&opts.collection, "collection", "", "collection name (mongo source)")
	cmd.Flags().StringVar(&columnsStr, "columns", "", "value columns to load (mongo source, comma-separated)")
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", "arlequin", "figure family: arlequin, conformation, correlation, basepair")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "parameter or dataset name used in titles")
	cmd.Flags().IntVar(&opts.contextLen, "context", 0, "nucleotide context length: 2, 3, or 4")
	cmd.Flags().StringVar(&opts.flex, "flex", "", "flexible placeholder symbol (default T)")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "missing-row policy: strict (default), expand")
	cmd.Flags().StringVar(&rowsStr, "rows", "", "explicit row order (comma-separated flank pairs)")
	cmd.Flags().StringVar(&colsStr, "cols", "", "explicit column order (comma-separated cores)")
	cmd.Flags().StringVar(&opts.upper, "upper", "", "upper-triangle value column (arlequin)")
	cmd.Flags().StringVar(&opts.lower, "lower", "", "lower-triangle value column (arlequin)")
	cmd.Flags().StringVar(&opts.column, "column", "", "percentage value column (conformation)")
	cmd.Flags().Float64Var(&opts.mean, "mean", 0, "global mean shown in the legend (arlequin)")
	cmd.Flags().Float64Var(&opts.std, "std", 0, "global standard deviation shown in the legend (arlequin)")
	cmd.Flags().IntVar(&opts.windowStart, "window-start", 0, "category window start (basepair)")
	cmd.Flags().IntVar(&opts.windowLength, "window-length", 0, "category window length (basepair)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, pdf, png (comma-separated)")
	cmd.Flags().Float64Var(&opts.cell, "cell", 0, "heatmap cell size in pixels")
	cmd.Flags().Float64Var(&opts.pngScale, "png-scale", 0, "PNG raster scale factor")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "refetch the table even if cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable table and artifact caching")
	cmd.Flags().BoolVar(&opts.panels, "panels", false, "also write per-pair panel SVGs (correlation, basepair)")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "browse correlation pair panels interactively")

	return cmd
}

// runRender loads the table, computes the layout, and writes the requested artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	pOpts, err := buildPipelineOptions(input, opts, cfg)
	if err != nil {
		return err
	}
	if err := pOpts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close(ctx)

	s := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s figure...", pOpts.Kind))
	s.Start()
	result, err := runner.Execute(ctx, pOpts)
	if err != nil {
		s.Stop()
		return err
	}
	s.StopWithSuccess(fmt.Sprintf("Rendered %s figure", pOpts.Kind))

	base := outputBase(opts.output, input, pOpts, cfg)
	if err := writeArtifacts(result, pOpts.Formats, base); err != nil {
		return err
	}
	printStats(result.Stats.RowCount, result.CacheInfo.LoadHit, result.CacheInfo.RenderHit)

	if opts.panels {
		if err := c.writePanels(ctx, result.Figure, base, pOpts.CellSize); err != nil {
			return err
		}
	}
	if opts.interactive {
		if f, ok := result.Figure.(*figure.Correlation); ok {
			return browsePanels(f, base, pOpts.CellSize)
		}
		printInfo("Interactive browsing only applies to correlation figures")
	}
	return nil
}

// buildPipelineOptions maps the command flags onto pipeline options, filling
// anything the flags left unset from the config.
func buildPipelineOptions(input string, opts *renderOpts, cfg config.Config) (pipeline.Options, error) {
	p := pipeline.Options{
		Source:         opts.source,
		Path:           input,
		URL:            opts.url,
		Collection:     opts.collection,
		Columns:        opts.columns,
		Refresh:        opts.refresh,
		Kind:           opts.kind,
		Name:           opts.name,
		ContextLength:  opts.contextLen,
		FlexibleSymbol: opts.flex,
		MissingPolicy:  opts.policy,
		Rows:           opts.rows,
		Cols:           opts.cols,
		UpperColumn:    opts.upper,
		LowerColumn:    opts.lower,
		Column:         opts.column,
		GlobalMean:     opts.mean,
		GlobalStd:      opts.std,
		WindowStart:    opts.windowStart,
		WindowLength:   opts.windowLength,
		Formats:        opts.formats,
		CellSize:       opts.cell,
		PNGScale:       opts.pngScale,
	}

	if p.Source == "" {
		switch {
		case p.URL != "":
			p.Source = pipeline.SourceHTTP
		case p.Collection != "":
			p.Source = pipeline.SourceMongo
		default:
			p.Source = pipeline.SourceCSV
		}
	}
	if p.ContextLength == 0 {
		p.ContextLength = cfg.Layout.ContextLength
	}
	if p.FlexibleSymbol == "" {
		p.FlexibleSymbol = cfg.Layout.FlexibleSymbol
	}
	if p.MissingPolicy == "" {
		p.MissingPolicy = cfg.Layout.MissingPolicy
	}
	if p.WindowStart == 0 && p.WindowLength == 0 && len(cfg.Layout.CategoryWindow) == 2 {
		p.WindowStart = cfg.Layout.CategoryWindow[0]
		p.WindowLength = cfg.Layout.CategoryWindow[1]
	}
	if len(p.Formats) == 0 {
		p.Formats = cfg.Output.Formats
	}
	if p.CellSize == 0 {
		p.CellSize = cfg.Output.CellSize
	}
	if p.PNGScale == 0 {
		p.PNGScale = cfg.Output.PNGScale
	}

	scale, err := scaleFor(p.Kind, cfg.Colors)
	if err != nil {
		return p, err
	}
	p.Scale = scale
	return p, nil
}

// scaleFor builds a color scale from the configured bounds, keeping the
// preset colors of the figure family. With no configured bounds it returns
// nil so the layout builders fall back to their presets.
func scaleFor(kind string, colors config.ColorsConfig) (*palette.Scale, error) {
	var bounds []float64
	var preset *palette.Scale
	switch kind {
	case string(figure.KindArlequin):
		bounds, preset = colors.Arlequin, palette.Arlequin()
	case string(figure.KindConformation):
		bounds, preset = colors.Conformation, palette.Conformation()
	case string(figure.KindCorrelation):
		bounds, preset = colors.Correlation, palette.Correlation()
	case string(figure.KindBasepair):
		bounds, preset = colors.Basepair, palette.Basepair()
	default:
		return nil, nil // unknown kinds are rejected during validation
	}
	if len(bounds) == 0 {
		return nil, nil
	}
	return palette.New(bounds, preset.Colors, preset.NoData)
}

// outputBase derives the base output path. An explicit --output wins (with
// any known format extension stripped); otherwise the input file name, the
// figure name, or the figure kind, in that order. The configured output
// directory applies when the base carries no directory of its own.
func outputBase(output, input string, opts pipeline.Options, cfg config.Config) string {
	base := output
	if base != "" {
		ext := filepath.Ext(base)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			base = strings.TrimSuffix(base, ext)
		}
		return base
	}

	switch {
	case input != "":
		base = strings.TrimSuffix(input, filepath.Ext(input))
	case opts.Name != "":
		base = strings.ToLower(strings.ReplaceAll(opts.Name, " ", "_"))
	default:
		base = opts.Kind
	}
	if cfg.Output.Dir != "" && cfg.Output.Dir != "." && filepath.Dir(base) == "." {
		base = filepath.Join(cfg.Output.Dir, base)
	}
	return base
}

// writeArtifacts writes one file per rendered format next to base.
func writeArtifacts(result *pipeline.Result, formats []string, base string) error {
	for _, f := range formats {
		data, ok := result.Artifacts[f]
		if !ok {
			continue
		}
		path := base + "." + f
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// writePanels writes the per-pair (correlation) or per-category (basepair)
// panel SVGs alongside the combined figure. Panels are independent, so they
// render in parallel.
func (c *CLI) writePanels(ctx context.Context, fig figure.Figure, base string, cell float64) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	switch f := fig.(type) {
	case *figure.Correlation:
		paths := make([]string, len(f.Panels))
		draw := func(i int) ([]byte, error) {
			p := f.Panels[i]
			paths[i] = fmt.Sprintf("%s_%s_%s.svg", base, p.RowCoordinate, p.ColCoordinate)
			return panelSVG(p, f, cell), nil
		}
		if err := writeParallel(len(f.Panels), paths, draw); err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Wrote %d pair panels", len(f.Panels)))
	case *figure.Basepair:
		paths := make([]string, len(f.Groups))
		draw := func(i int) ([]byte, error) {
			g := f.Groups[i]
			paths[i] = fmt.Sprintf("%s_group_%s.svg", base, g.Category)
			return categorySVG(g, f, cell), nil
		}
		if err := writeParallel(len(f.Groups), paths, draw); err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Wrote %d category panels", len(f.Groups)))
	default:
		printInfo("Figure kind %s has no panels to write", fig.Kind())
	}
	return nil
}

func panelSVG(p corr.Panel, f *figure.Correlation, cell float64) []byte {
	return render.RenderPanelSVG(p, f.Scale, render.WithCell(cell))
}

func categorySVG(g corr.CategoryGroup, f *figure.Basepair, cell float64) []byte {
	return render.RenderCategorySVG(g, f.Scale, render.WithCell(cell))
}

// writeParallel renders n panels concurrently and writes them to the paths
// the draw callback fills in. The first failure wins.
func writeParallel(n int, paths []string, draw func(i int) ([]byte, error)) error {
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := draw(i)
			if err != nil {
				errs[i] = err
				return
			}
			errs[i] = os.WriteFile(paths[i], data, 0o644)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	for _, path := range paths {
		printFile(path)
	}
	return nil
}
