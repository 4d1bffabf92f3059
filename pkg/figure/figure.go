// Package figure assembles self-contained layout descriptors for the four
// published figure families: split-triangle helical-parameter heatmaps
// ("arlequin" plots), conformation-percentage heatmaps, coordinate-pair
// correlation panels, and basepair-step correlation panels.
//
// A descriptor carries everything a sink needs to draw the figure (ordered
// axis labels, tessellated geometry, per-cell values, tick positions and the
// color scale) so no sink ever re-derives an ordering. Builders validate
// their inputs eagerly and fail before any drawing happens; silent
// misalignment between label order and data would corrupt every downstream
// panel.
package figure

import (
	"strings"

	"github.com/dnamaps/arlequin/pkg/errors"
)

// Kind identifies a figure family.
type Kind string

const (
	KindArlequin     Kind = "arlequin"
	KindConformation Kind = "conformation"
	KindCorrelation  Kind = "correlation"
	KindBasepair     Kind = "basepair"
)

// Kinds lists every supported figure family.
var Kinds = []Kind{KindArlequin, KindConformation, KindCorrelation, KindBasepair}

// ParseKind validates a figure family name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFigure,
		"unknown figure kind: %q (must be arlequin, conformation, correlation or basepair)", s)
}

// Figure is implemented by every layout descriptor.
type Figure interface {
	Kind() Kind
}

// rowLabel renders a flank pair with the dotted separator of the published
// axes: "TG" becomes "T..G" for tetramers, "T.G" for trimers.
func rowLabel(flanks string, contextLen int) string {
	sep := strings.Repeat(".", contextLen-2)
	return flanks[:1] + sep + flanks[1:]
}
