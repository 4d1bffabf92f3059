package figure

import (
	"fmt"
	"strings"

	"github.com/dnamaps/arlequin/pkg/errors"
	"github.com/dnamaps/arlequin/pkg/mesh"
	"github.com/dnamaps/arlequin/pkg/order"
	"github.com/dnamaps/arlequin/pkg/render/palette"
	"github.com/dnamaps/arlequin/pkg/table"
)

// Arlequin is the layout descriptor of a split-triangle heatmap: an M×N grid
// of cells, each split along its diagonal so two helical-parameter series
// (typically the two strands' z-scores) share one cell.
type Arlequin struct {
	Title string

	// RowLabels and ColLabels follow the canonical axis orders. RowLabels
	// carry the dotted flank separator ("T..G"); ColLabels are raw units.
	RowLabels []string
	ColLabels []string

	// Mesh is the tessellated grid; Upper and Lower hold one value per cell
	// in row-major canonical order, coloring that cell's two triangles.
	Mesh  *mesh.Mesh
	Upper []float64
	Lower []float64

	Scale *palette.Scale

	// Legend holds the three colorbar tick labels derived from the global
	// mean and standard deviation of the parameter.
	Legend [3]string
}

// Kind implements Figure.
func (*Arlequin) Kind() Kind { return KindArlequin }

// ArlequinOptions configures BuildArlequin. Zero values select the published
// defaults: tetramer context, flexible base T, strict key policy, payload
// columns "col1"/"col2" and the three-step diverging scale.
type ArlequinOptions struct {
	Helpar     string // helical parameter name, used as title
	ContextLen int
	Flex       string

	// Rows and Cols override the canonical axis orders. Supplying only one
	// of them is fine; the other falls back to its canonical default. The
	// tetramer default uses the reversed paper order for columns, but that
	// is a default, not a coupling.
	Rows order.Order
	Cols order.Order

	UpperColumn string
	LowerColumn string

	GlobalMean float64
	GlobalStd  float64

	Scale  *palette.Scale
	Policy table.Policy
}

func (o *ArlequinOptions) defaults() {
	if o.ContextLen == 0 {
		o.ContextLen = 4
	}
	if o.Flex == "" {
		o.Flex = order.DefaultFlex
	}
	if o.UpperColumn == "" {
		o.UpperColumn = "col1"
	}
	if o.LowerColumn == "" {
		o.LowerColumn = "col2"
	}
	if o.Scale == nil {
		o.Scale = palette.Arlequin()
	}
}

// BuildArlequin reorders the statistics table onto the canonical tetramer
// order and tessellates the grid. The table must carry the two payload
// columns named in the options; each ends up coloring one triangle family.
func BuildArlequin(t *table.Table, opts ArlequinOptions) (*Arlequin, error) {
	opts.defaults()

	rows := opts.Rows
	cols := opts.Cols
	var err error
	if rows == nil {
		if rows, err = order.Rows(opts.ContextLen, opts.Flex); err != nil {
			return nil, err
		}
	}
	if cols == nil {
		if cols, err = order.Cols(opts.ContextLen, opts.Flex); err != nil {
			return nil, err
		}
	}

	keys, err := order.Join(rows, cols)
	if err != nil {
		return nil, err
	}
	sorted, err := table.Reorder(t, keys, opts.Policy)
	if err != nil {
		return nil, err
	}

	upper, ok := sorted.Column(opts.UpperColumn)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"table has no column %q", opts.UpperColumn)
	}
	lower, ok := sorted.Column(opts.LowerColumn)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"table has no column %q", opts.LowerColumn)
	}

	msh, err := mesh.Tessellate(len(cols), len(rows))
	if err != nil {
		return nil, err
	}
	if err := msh.Validate(upper); err != nil {
		return nil, err
	}
	if err := msh.Validate(lower); err != nil {
		return nil, err
	}

	rowLabels := make([]string, len(rows))
	for i, r := range rows {
		rowLabels[i] = rowLabel(r, opts.ContextLen)
	}

	return &Arlequin{
		Title:     strings.ToUpper(opts.Helpar),
		RowLabels: rowLabels,
		ColLabels: cols,
		Mesh:      msh,
		Upper:     upper,
		Lower:     lower,
		Scale:     opts.Scale,
		Legend: [3]string{
			fmt.Sprintf("< %.2f-%.2f", opts.GlobalMean, opts.GlobalStd),
			fmt.Sprintf("%.2f±%.2f", opts.GlobalMean, opts.GlobalStd),
			fmt.Sprintf("> %.2f+%.2f", opts.GlobalMean, opts.GlobalStd),
		},
	}, nil
}
