package render

import (
	"bytes"
	"fmt"

	"github.com/dnamaps/arlequin/pkg/corr"
	"github.com/dnamaps/arlequin/pkg/errors"
	"github.com/dnamaps/arlequin/pkg/figure"
	"github.com/dnamaps/arlequin/pkg/render/palette"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	cell     float64 // size of one grid cell in user units
	margin   float64 // room for axis labels on the left and bottom
	header   float64 // room for the title
	colorbar bool
}

// WithCell sets the cell size in user units (default 28).
func WithCell(size float64) SVGOption {
	return func(r *svgRenderer) { r.cell = size }
}

// WithoutColorbar suppresses the colorbar column.
func WithoutColorbar() SVGOption {
	return func(r *svgRenderer) { r.colorbar = false }
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{cell: 28, margin: 56, header: 36, colorbar: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws a figure's full view as SVG.
func RenderSVG(fig figure.Figure, opts ...SVGOption) ([]byte, error) {
	r := newSVGRenderer(opts...)
	switch f := fig.(type) {
	case *figure.Arlequin:
		return r.arlequin(f), nil
	case *figure.Conformation:
		return r.conformation(f), nil
	case *figure.Correlation:
		return r.correlation(f), nil
	case *figure.Basepair:
		return r.basepair(f), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFigure, "no SVG sink for figure kind %q", fig.Kind())
}

// arlequin draws the split-triangle grid. SVG's y axis points down, so grid
// row j maps to y = (N-1-j) cells from the top: the figure fills bottom-left
// to top-right like the published plots.
func (r *svgRenderer) arlequin(f *figure.Arlequin) []byte {
	m, n := f.Mesh.M, f.Mesh.N
	var buf bytes.Buffer
	r.open(&buf, float64(m)*r.cell, float64(n)*r.cell, f.Title)

	px := func(i int) float64 { return r.margin + f.Mesh.X[i]*r.cell }
	py := func(i int) float64 { return r.header + (float64(n)-f.Mesh.Y[i])*r.cell }

	for c := range f.Mesh.Upper {
		writeTriangle(&buf, f.Mesh.Upper[c], px, py, f.Scale.Color(f.Upper[c]))
		writeTriangle(&buf, f.Mesh.Lower[c], px, py, f.Scale.Color(f.Lower[c]))
	}

	r.gridLines(&buf, m, n)
	r.colLabels(&buf, f.ColLabels, n)
	r.rowLabels(&buf, f.RowLabels, n)
	if r.colorbar {
		r.swatches(&buf, float64(m)*r.cell, f.Scale, f.Legend[:])
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) conformation(f *figure.Conformation) []byte {
	m, n := len(f.XLabels), len(f.YLabels)
	var buf bytes.Buffer
	r.open(&buf, float64(m)*r.cell, float64(n)*r.cell, f.Title)

	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			color := f.Scale.Color(f.Values[j*m+i])
			r.rect(&buf, i, j, color)
		}
	}

	r.colLabels(&buf, f.XLabels, n)
	r.rowLabelsTopDown(&buf, f.YLabels)
	if r.colorbar {
		r.swatches(&buf, float64(m)*r.cell, f.Scale, nil)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) correlation(f *figure.Correlation) []byte {
	size := len(f.Combined.Rows)
	var buf bytes.Buffer
	r.open(&buf, float64(size)*r.cell, float64(size)*r.cell, f.Title)

	for j, row := range f.Combined.Values {
		for i, v := range row {
			r.rect(&buf, i, j, f.Scale.Color(v))
		}
	}

	// Coordinate labels at block centers instead of per-cell ticks.
	for t, pos := range f.Ticks {
		if t >= len(f.TickLabels) {
			break
		}
		x := r.margin + (float64(pos)+0.5)*r.cell
		y := r.header + float64(size)*r.cell + 16
		fmt.Fprintf(&buf, "  <text x=\"%.1f\" y=\"%.1f\" font-size=\"11\" text-anchor=\"middle\">%s</text>\n",
			x, y, f.TickLabels[t])
		fmt.Fprintf(&buf, "  <text x=\"%.1f\" y=\"%.1f\" font-size=\"11\" text-anchor=\"end\">%s</text>\n",
			r.margin-6, r.header+(float64(pos)+0.8)*r.cell, f.TickLabels[t])
	}
	if r.colorbar {
		r.swatches(&buf, float64(size)*r.cell, f.Scale, nil)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) basepair(f *figure.Basepair) []byte {
	return r.flat(f.Combined, f.Title, f.Scale)
}

// RenderPanelSVG draws one coordinate-pair panel of a correlation figure.
func RenderPanelSVG(p corr.Panel, scale *palette.Scale, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	var buf bytes.Buffer
	title := fmt.Sprintf("rows: %s | columns: %s", p.RowCoordinate, p.ColCoordinate)
	r.open(&buf, float64(len(p.ColUnits))*r.cell, float64(len(p.RowUnits))*r.cell, title)

	for j, row := range p.Values {
		for i, v := range row {
			r.rect(&buf, i, j, scale.Color(v))
		}
	}
	r.colLabels(&buf, p.ColUnits, len(p.RowUnits))
	r.rowLabelsTopDown(&buf, p.RowUnits)
	if r.colorbar {
		r.swatches(&buf, float64(len(p.ColUnits))*r.cell, scale, nil)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// RenderCategorySVG draws one basepair-step category panel.
func RenderCategorySVG(g corr.CategoryGroup, scale *palette.Scale, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	title := fmt.Sprintf("Correlation for basepair group %s", g.Category)
	return r.flatTitled(g.Sub, title, scale)
}

func (r *svgRenderer) flat(m *corr.Flat, title string, scale *palette.Scale) []byte {
	return r.flatTitled(m, title, scale)
}

func (r *svgRenderer) flatTitled(m *corr.Flat, title string, scale *palette.Scale) []byte {
	var buf bytes.Buffer
	r.open(&buf, float64(len(m.Columns))*r.cell, float64(len(m.Index))*r.cell, title)
	for j, row := range m.Values {
		for i, v := range row {
			r.rect(&buf, i, j, scale.Color(v))
		}
	}
	r.colLabels(&buf, m.Columns, len(m.Index))
	r.rowLabelsTopDown(&buf, m.Index)
	if r.colorbar {
		r.swatches(&buf, float64(len(m.Columns))*r.cell, scale, nil)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// open writes the svg element and the title. Content width/height exclude
// margins; the viewport adds room for labels and an optional colorbar.
func (r *svgRenderer) open(buf *bytes.Buffer, w, h float64, title string) {
	total := r.margin + w + 24
	if r.colorbar {
		total += 64
	}
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		total, r.header+h+r.margin, total, r.header+h+r.margin)
	if title != "" {
		fmt.Fprintf(buf, "  <text x=\"%.1f\" y=\"%.1f\" font-size=\"14\" font-weight=\"bold\" text-anchor=\"middle\">%s</text>\n",
			r.margin+w/2, r.header-12, escapeText(title))
	}
}

func (r *svgRenderer) rect(buf *bytes.Buffer, i, j int, color string) {
	fmt.Fprintf(buf, "  <rect x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" fill=\"%s\"/>\n",
		r.margin+float64(i)*r.cell, r.header+float64(j)*r.cell, r.cell, r.cell, color)
}

func writeTriangle(buf *bytes.Buffer, tri [3]int, px, py func(int) float64, color string) {
	fmt.Fprintf(buf, "  <polygon points=\"%.1f,%.1f %.1f,%.1f %.1f,%.1f\" fill=\"%s\"/>\n",
		px(tri[0]), py(tri[0]), px(tri[1]), py(tri[1]), px(tri[2]), py(tri[2]), color)
}

func (r *svgRenderer) gridLines(buf *bytes.Buffer, m, n int) {
	for i := 0; i <= m; i++ {
		x := r.margin + float64(i)*r.cell
		fmt.Fprintf(buf, "  <line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\" stroke=\"#cccccc\" stroke-width=\"0.5\"/>\n",
			x, r.header, x, r.header+float64(n)*r.cell)
	}
	for j := 0; j <= n; j++ {
		y := r.header + float64(j)*r.cell
		fmt.Fprintf(buf, "  <line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\" stroke=\"#cccccc\" stroke-width=\"0.5\"/>\n",
			r.margin, y, r.margin+float64(m)*r.cell, y)
	}
}

// colLabels writes x-axis labels centered under each column, like the minor
// ticks offset by half a cell in the published figures.
func (r *svgRenderer) colLabels(buf *bytes.Buffer, labels []string, nRows int) {
	y := r.header + float64(nRows)*r.cell + 14
	for i, l := range labels {
		if l == "" {
			continue
		}
		fmt.Fprintf(buf, "  <text x=\"%.1f\" y=\"%.1f\" font-size=\"9\" text-anchor=\"middle\">%s</text>\n",
			r.margin+(float64(i)+0.5)*r.cell, y, escapeText(l))
	}
}

// rowLabels writes y-axis labels for grids populated bottom-up (arlequin).
func (r *svgRenderer) rowLabels(buf *bytes.Buffer, labels []string, n int) {
	for j, l := range labels {
		y := r.header + (float64(n-j)-0.5)*r.cell + 3
		fmt.Fprintf(buf, "  <text x=\"%.1f\" y=\"%.1f\" font-size=\"9\" text-anchor=\"end\">%s</text>\n",
			r.margin-6, y, escapeText(l))
	}
}

// rowLabelsTopDown writes y-axis labels for grids populated top-down
// (conformation and correlation views).
func (r *svgRenderer) rowLabelsTopDown(buf *bytes.Buffer, labels []string) {
	for j, l := range labels {
		y := r.header + (float64(j)+0.5)*r.cell + 3
		fmt.Fprintf(buf, "  <text x=\"%.1f\" y=\"%.1f\" font-size=\"9\" text-anchor=\"end\">%s</text>\n",
			r.margin-6, y, escapeText(l))
	}
}

// swatches draws the colorbar. If labels is non-nil it must carry one label
// per color bucket; otherwise the scale's breakpoints annotate the bar.
func (r *svgRenderer) swatches(buf *bytes.Buffer, gridWidth float64, s *palette.Scale, labels []string) {
	x := r.margin + gridWidth + 16
	sh := 18.0
	for i, color := range s.Colors {
		// Highest bucket on top.
		y := r.header + float64(len(s.Colors)-1-i)*sh
		fmt.Fprintf(buf, "  <rect x=\"%.1f\" y=\"%.1f\" width=\"14\" height=\"%.1f\" fill=\"%s\" stroke=\"#444444\" stroke-width=\"0.3\"/>\n",
			x, y, sh, color)
		var label string
		if labels != nil {
			if i < len(labels) {
				label = labels[i]
			}
		} else {
			label = fmt.Sprintf("%.2g to %.2g", s.Bounds[i], s.Bounds[i+1])
		}
		if label != "" {
			fmt.Fprintf(buf, "  <text x=\"%.1f\" y=\"%.1f\" font-size=\"8\">%s</text>\n",
				x+18, y+sh/2+3, escapeText(label))
		}
	}
}

func escapeText(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
