// Package palette provides the bounded color scales used by the heatmap
// sinks.
//
// A [Scale] maps a numeric value to a color through an ordered list of
// breakpoints, the way matplotlib's BoundaryNorm does: len(Bounds) must be
// len(Colors)+1, values outside the bounds saturate to the nearest end
// color (never an error), and the missing-data sentinel (NaN) maps to a
// dedicated no-data color.
package palette

import (
	"math"

	"github.com/dnamaps/arlequin/pkg/errors"
)

// Scale is a bounded color scale.
type Scale struct {
	Bounds []float64 // ascending breakpoints, one more than Colors
	Colors []string  // hex color per bucket
	NoData string    // hex color for missing values
}

// New builds a Scale and validates the breakpoints.
func New(bounds []float64, colors []string, noData string) (*Scale, error) {
	if len(bounds) != len(colors)+1 {
		return nil, errors.New(errors.ErrCodeConfigBounds,
			"scale needs len(colors)+1 bounds, got %d bounds for %d colors",
			len(bounds), len(colors))
	}
	for i := 1; i < len(bounds); i++ {
		if bounds[i] <= bounds[i-1] {
			return nil, errors.New(errors.ErrCodeConfigBounds,
				"scale bounds must be strictly ascending, got %v", bounds)
		}
	}
	return &Scale{Bounds: bounds, Colors: colors, NoData: noData}, nil
}

// Color maps a value to its bucket color. NaN maps to the no-data color and
// out-of-bound values saturate to the first or last color.
func (s *Scale) Color(v float64) string {
	if math.IsNaN(v) {
		return s.NoData
	}
	if v < s.Bounds[0] {
		return s.Colors[0]
	}
	for i := 1; i < len(s.Bounds); i++ {
		if v < s.Bounds[i] {
			return s.Colors[i-1]
		}
	}
	return s.Colors[len(s.Colors)-1]
}

// Min and Max return the scale's outer breakpoints.
func (s *Scale) Min() float64 { return s.Bounds[0] }
func (s *Scale) Max() float64 { return s.Bounds[len(s.Bounds)-1] }

// Arlequin is the three-step diverging scale of the split-triangle figures
// (blue-white-red reversed, over the normalized z-score range [-1, 1]).
// Grey marks tetramers with no data.
func Arlequin() *Scale {
	s, _ := New(
		[]float64{-1, -1.0 / 3, 1.0 / 3, 1},
		[]string{"#ff0000", "#ffffff", "#0000ff"},
		"#808080",
	)
	return s
}

// Conformation is the eight-step percentage scale of the conformation
// heatmaps, spanning 0-100%.
func Conformation() *Scale {
	s, _ := New(
		[]float64{0, 12.5, 25, 37.5, 50, 62.5, 75, 87.5, 100},
		[]string{
			"#00008b", // darkblue
			"#0000ff", // blue
			"#add8e6", // lightblue
			"#90ee90", // lightgreen
			"#00ff00", // lime
			"#ffa500", // orange
			"#ff0000", // red
			"#dc143c", // crimson
		},
		"#808080",
	)
	return s
}

// correlationColors is shared by the coordinate and basepair correlation
// scales; only the breakpoints differ.
var correlationColors = []string{
	"#0000ff", // blue
	"#6495ed", // cornflowerblue
	"#87cefa", // lightskyblue
	"#ffffff", // white
	"#ffe4e1", // mistyrose
	"#ff6347", // tomato
	"#ff0000", // red
}

// Correlation is the seven-step coefficient scale of the coordinate-pair
// correlation panels.
func Correlation() *Scale {
	s, _ := New(
		[]float64{-1.0, -.73, -.53, -.3, .3, .53, .73, 1.0},
		correlationColors,
		"#dcdcdc",
	)
	return s
}

// Basepair is the seven-step coefficient scale of the basepair-step
// correlation panels.
func Basepair() *Scale {
	s, _ := New(
		[]float64{-.6, -.5, -.4, -.3, .3, .4, .5, .6},
		correlationColors,
		"#dcdcdc",
	)
	return s
}
