package render

import (
	"encoding/json"
	"math"

	"github.com/dnamaps/arlequin/pkg/corr"
	"github.com/dnamaps/arlequin/pkg/errors"
	"github.com/dnamaps/arlequin/pkg/figure"
	"github.com/dnamaps/arlequin/pkg/mesh"
)

type jsonArlequin struct {
	Kind      string     `json:"kind"`
	Title     string     `json:"title,omitempty"`
	RowLabels []string   `json:"row_labels"`
	ColLabels []string   `json:"col_labels"`
	M         int        `json:"m"`
	N         int        `json:"n"`
	X         []float64  `json:"x"`
	Y         []float64  `json:"y"`
	Upper     []jsonTri  `json:"upper"`
	Lower     []jsonTri  `json:"lower"`
	UpperVals []*float64 `json:"upper_values"`
	LowerVals []*float64 `json:"lower_values"`
	Legend    [3]string  `json:"legend"`
	Scale     *jsonScale `json:"scale,omitempty"`
}

type jsonTri struct {
	A int `json:"a"`
	B int `json:"b"`
	C int `json:"c"`
}

type jsonGrid struct {
	Kind    string     `json:"kind"`
	Title   string     `json:"title,omitempty"`
	XLabels []string   `json:"x_labels"`
	YLabels []string   `json:"y_labels"`
	Values  []*float64 `json:"values"`
	Scale   *jsonScale `json:"scale,omitempty"`
}

type jsonCorrelation struct {
	Kind       string       `json:"kind"`
	Title      string       `json:"title,omitempty"`
	Rows       []jsonKey    `json:"rows"`
	Cols       []jsonKey    `json:"cols"`
	Values     [][]*float64 `json:"values"`
	Panels     []jsonPanel  `json:"panels"`
	Ticks      []int        `json:"ticks"`
	TickLabels []string     `json:"tick_labels"`
	Scale      *jsonScale   `json:"scale,omitempty"`
}

type jsonKey struct {
	Coordinate string `json:"coordinate"`
	Unit       string `json:"unit"`
}

type jsonPanel struct {
	RowCoordinate string       `json:"row_coordinate"`
	ColCoordinate string       `json:"col_coordinate"`
	RowUnits      []string     `json:"row_units"`
	ColUnits      []string     `json:"col_units"`
	Values        [][]*float64 `json:"values"`
}

type jsonBasepair struct {
	Kind     string      `json:"kind"`
	Title    string      `json:"title,omitempty"`
	Groups   []jsonGroup `json:"groups"`
	Combined jsonFlat    `json:"combined"`
	Scale    *jsonScale  `json:"scale,omitempty"`
}

type jsonGroup struct {
	Category string   `json:"category"`
	Matrix   jsonFlat `json:"matrix"`
}

type jsonFlat struct {
	Index   []string     `json:"index"`
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

type jsonScale struct {
	Bounds []float64 `json:"bounds"`
	Colors []string  `json:"colors"`
	NoData string    `json:"nodata"`
}

// RenderJSON exports the figure's computed layout as a pretty-printed JSON
// document: axis labels in canonical order, the flattened payloads, and the
// triangle or tick geometry a downstream renderer needs to reproduce the
// figure. Missing values serialize as null rather than NaN, which encoding/json
// cannot represent.
//
// RenderJSON does not modify the figure and is safe to call concurrently.
func RenderJSON(fig figure.Figure) ([]byte, error) {
	switch f := fig.(type) {
	case *figure.Arlequin:
		out := jsonArlequin{
			Kind:      string(f.Kind()),
			Title:     f.Title,
			RowLabels: f.RowLabels,
			ColLabels: f.ColLabels,
			M:         f.Mesh.M,
			N:         f.Mesh.N,
			X:         f.Mesh.X,
			Y:         f.Mesh.Y,
			Upper:     triangles(f.Mesh.Upper),
			Lower:     triangles(f.Mesh.Lower),
			UpperVals: nullable(f.Upper),
			LowerVals: nullable(f.Lower),
			Legend:    f.Legend,
			Scale:     scaleOut(f.Scale.Bounds, f.Scale.Colors, f.Scale.NoData),
		}
		return json.MarshalIndent(out, "", "  ")
	case *figure.Conformation:
		out := jsonGrid{
			Kind:    string(f.Kind()),
			Title:   f.Title,
			XLabels: f.XLabels,
			YLabels: f.YLabels,
			Values:  nullable(f.Values),
			Scale:   scaleOut(f.Scale.Bounds, f.Scale.Colors, f.Scale.NoData),
		}
		return json.MarshalIndent(out, "", "  ")
	case *figure.Correlation:
		out := jsonCorrelation{
			Kind:       string(f.Kind()),
			Title:      f.Title,
			Rows:       keysOut(f.Combined.Rows),
			Cols:       keysOut(f.Combined.Cols),
			Values:     nullableGrid(f.Combined.Values),
			Panels:     panelsOut(f.Panels),
			Ticks:      f.Ticks,
			TickLabels: f.TickLabels,
			Scale:      scaleOut(f.Scale.Bounds, f.Scale.Colors, f.Scale.NoData),
		}
		return json.MarshalIndent(out, "", "  ")
	case *figure.Basepair:
		groups := make([]jsonGroup, len(f.Groups))
		for i, g := range f.Groups {
			groups[i] = jsonGroup{Category: g.Category, Matrix: flatOut(g.Sub)}
		}
		out := jsonBasepair{
			Kind:     string(f.Kind()),
			Title:    f.Title,
			Groups:   groups,
			Combined: flatOut(f.Combined),
			Scale:    scaleOut(f.Scale.Bounds, f.Scale.Colors, f.Scale.NoData),
		}
		return json.MarshalIndent(out, "", "  ")
	}
	return nil, errors.New(errors.ErrCodeInvalidFigure, "no JSON sink for figure kind %q", fig.Kind())
}

func triangles(src []mesh.Triangle) []jsonTri {
	out := make([]jsonTri, len(src))
	for i, t := range src {
		out[i] = jsonTri{A: t[0], B: t[1], C: t[2]}
	}
	return out
}

func nullable(vals []float64) []*float64 {
	out := make([]*float64, len(vals))
	for i := range vals {
		if !math.IsNaN(vals[i]) {
			out[i] = &vals[i]
		}
	}
	return out
}

func nullableGrid(vals [][]float64) [][]*float64 {
	out := make([][]*float64, len(vals))
	for i, row := range vals {
		out[i] = nullable(row)
	}
	return out
}

func keysOut(keys []corr.Key) []jsonKey {
	out := make([]jsonKey, len(keys))
	for i, k := range keys {
		out[i] = jsonKey{Coordinate: k.Coordinate, Unit: k.Unit}
	}
	return out
}

func panelsOut(panels []corr.Panel) []jsonPanel {
	out := make([]jsonPanel, len(panels))
	for i, p := range panels {
		out[i] = jsonPanel{
			RowCoordinate: p.RowCoordinate,
			ColCoordinate: p.ColCoordinate,
			RowUnits:      p.RowUnits,
			ColUnits:      p.ColUnits,
			Values:        nullableGrid(p.Values),
		}
	}
	return out
}

func flatOut(m *corr.Flat) jsonFlat {
	return jsonFlat{Index: m.Index, Columns: m.Columns, Values: nullableGrid(m.Values)}
}

func scaleOut(bounds []float64, colors []string, nodata string) *jsonScale {
	return &jsonScale{Bounds: bounds, Colors: colors, NoData: nodata}
}
