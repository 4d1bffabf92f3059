package figure

import (
	"github.com/dnamaps/arlequin/pkg/corr"
	"github.com/dnamaps/arlequin/pkg/render/palette"
)

// Basepair is the layout descriptor of the basepair-step correlation figure:
// one panel per category (the fixed-position substring of each oligomer key)
// plus a combined matrix sorted by category.
type Basepair struct {
	Title string

	// Groups hold one sub-matrix per category in sorted category order.
	Groups []corr.CategoryGroup

	// Combined is the full matrix with rows stably sorted by category; the
	// category label itself is not part of the payload.
	Combined *corr.Flat

	Window corr.Window
	Scale  *palette.Scale
}

// Kind implements Figure.
func (*Basepair) Kind() Kind { return KindBasepair }

// BasepairOptions configures BuildBasepair.
type BasepairOptions struct {
	Title  string
	Window corr.Window // zero value selects the (1,2) basepair-step window
	Scale  *palette.Scale
}

// BuildBasepair groups the single-index correlation matrix by basepair-step
// category.
func BuildBasepair(m *corr.Flat, opts BasepairOptions) (*Basepair, error) {
	if opts.Window == (corr.Window{}) {
		opts.Window = corr.DefaultWindow
	}
	if opts.Scale == nil {
		opts.Scale = palette.Basepair()
	}

	groups, combined, err := corr.GroupByCategory(m, opts.Window)
	if err != nil {
		return nil, err
	}

	return &Basepair{
		Title:    opts.Title,
		Groups:   groups,
		Combined: combined,
		Window:   opts.Window,
		Scale:    opts.Scale,
	}, nil
}
