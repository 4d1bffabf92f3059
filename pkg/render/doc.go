// Package render provides output sinks for figure layout descriptors.
//
// # Overview
//
// A sink transforms a computed [figure.Figure] into a final output format:
//
//   - SVG: vector output, drawn directly (no external tooling)
//   - JSON: layout data export for external plotting tools
//   - PDF: print-ready output (requires rsvg-convert)
//   - PNG: raster output (requires rsvg-convert)
//
// # SVG Output
//
// [RenderSVG] draws the figure's full view: the split-triangle grid for
// arlequin figures, the cell grid for conformation figures, and the combined
// block matrix for the two correlation families. Individual correlation
// panels are rendered separately with [RenderPanelSVG] and
// [RenderCategorySVG]; the pipeline enumerates them into one artifact per
// panel, mirroring the published figure sets.
//
// Basic usage:
//
//	svg, err := render.RenderSVG(fig, render.WithCell(32))
//
// # PDF and PNG Output
//
// [ToPDF] and [ToPNG] convert SVG bytes via rsvg-convert and require
// librsvg to be installed:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [figure.Figure]: github.com/dnamaps/arlequin/pkg/figure.Figure
package render
