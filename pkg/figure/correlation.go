package figure

import (
	"github.com/dnamaps/arlequin/pkg/corr"
	"github.com/dnamaps/arlequin/pkg/render/palette"
)

// Correlation is the layout descriptor of the coordinate-pair correlation
// figure: one combined matrix regrouped by coordinate blocks plus one panel
// per unordered coordinate pair.
type Correlation struct {
	Title string

	// Combined is the full matrix with both axes regrouped into coordinate
	// blocks (units sorted within each block).
	Combined *corr.Matrix

	// Panels holds the K*(K+1)/2 pair sub-matrices in nested coordinate
	// order.
	Panels []corr.Panel

	// Ticks are row/column positions at the center of each coordinate
	// block of the combined matrix; TickLabels are the coordinates in the
	// same order.
	Ticks      []int
	TickLabels []string

	Scale *palette.Scale
}

// Kind implements Figure.
func (*Correlation) Kind() Kind { return KindCorrelation }

// CorrelationOptions configures BuildCorrelation.
type CorrelationOptions struct {
	Title string
	Scale *palette.Scale
}

// BuildCorrelation regroups the two-level matrix, enumerates its pair panels
// and computes block-center ticks for the combined view.
func BuildCorrelation(m *corr.Matrix, opts CorrelationOptions) (*Correlation, error) {
	if opts.Scale == nil {
		opts.Scale = palette.Correlation()
	}

	combined, err := m.Regroup()
	if err != nil {
		return nil, err
	}
	panels, err := combined.Pairs()
	if err != nil {
		return nil, err
	}
	coords := combined.Coordinates()
	ticks, err := corr.BlockTicks(len(combined.Rows), len(coords))
	if err != nil {
		return nil, err
	}

	return &Correlation{
		Title:      opts.Title,
		Combined:   combined,
		Panels:     panels,
		Ticks:      ticks,
		TickLabels: coords,
		Scale:      opts.Scale,
	}, nil
}
