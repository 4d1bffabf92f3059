package figure

import (
	"strings"

	"github.com/dnamaps/arlequin/pkg/errors"
	"github.com/dnamaps/arlequin/pkg/order"
	"github.com/dnamaps/arlequin/pkg/render/palette"
	"github.com/dnamaps/arlequin/pkg/table"
)

// Conformation is the layout descriptor of a 16×16 conformation-percentage
// heatmap over the conformer axis order. Input tables are typically sparse
// (only observed tetramers); absent cells carry the missing sentinel and
// render in the no-data color.
type Conformation struct {
	Title string

	// XLabels and YLabels both follow the conformer order; unlike the
	// split-triangle figure there is no reversal between the axes.
	XLabels []string
	YLabels []string

	// Values holds one percentage per cell, row-major over (YLabels,
	// XLabels): len = 256 for tetramers.
	Values []float64

	Scale *palette.Scale
}

// Kind implements Figure.
func (*Conformation) Kind() Kind { return KindConformation }

// ConformationOptions configures BuildConformation.
type ConformationOptions struct {
	Name   string // conformer family name, used as title
	Flex   string
	Column string // percentage column, default "pct"
	Scale  *palette.Scale
}

func (o *ConformationOptions) defaults() {
	if o.Flex == "" {
		o.Flex = order.DefaultFlex
	}
	if o.Column == "" {
		o.Column = "pct"
	}
	if o.Scale == nil {
		o.Scale = palette.Conformation()
	}
}

// BuildConformation expands the (usually sparse) percentage table onto the
// full 256-key conformer grid. Missing tetramers become NaN cells.
func BuildConformation(t *table.Table, opts ConformationOptions) (*Conformation, error) {
	opts.defaults()

	axis, err := order.Conformer(opts.Flex)
	if err != nil {
		return nil, err
	}
	keys, err := order.Join(axis, axis)
	if err != nil {
		return nil, err
	}

	expanded, err := table.Reorder(t, keys, table.PolicyExpand)
	if err != nil {
		return nil, err
	}
	values, ok := expanded.Column(opts.Column)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"table has no column %q", opts.Column)
	}
	if len(values) != len(axis)*len(axis) {
		return nil, errors.New(errors.ErrCodeShapePayload,
			"conformation grid needs %d values, got %d", len(axis)*len(axis), len(values))
	}

	return &Conformation{
		Title:   strings.ToUpper(opts.Name) + " CONFORMATIONS",
		XLabels: axis,
		YLabels: axis,
		Values:  values,
		Scale:   opts.Scale,
	}, nil
}
