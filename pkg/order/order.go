// Package order generates the canonical axis orderings for nucleotide-context
// heatmap figures.
//
// The row and column sequences are fixed, publication-defined constants, not
// sorts of the alphabet: the split-triangle ("arlequin") figures use the
// paper order, the conformation-percentage figures use a second, distinct
// order. Both are parameterized by a flexible base symbol (default "T") that
// stands in for either thymine or uracil depending on the dataset.
//
// Row and column orders are independent values. The length-4 figure happens
// to use the reversed paper order for its columns, but that reversal is a
// call-site choice via [Order.Reversed], never an implicit transform.
package order

import (
	"strings"

	"github.com/dnamaps/arlequin/pkg/errors"
)

// Alphabet is the fixed nucleotide alphabet.
const Alphabet = "ACGT"

// flexSymbols are the accepted flexible base symbols: the alphabet itself
// plus uracil for RNA contexts. A symbol that collides with a fixed entry
// of a canonical order is still rejected during substitution.
const flexSymbols = Alphabet + "U"

// DefaultFlex is the default flexible base symbol.
const DefaultFlex = "T"

// Order is an ordered sequence of oligomer keys defining a canonical row or
// column sequence. Entries must be unique; [Ranks] enforces this.
type Order []string

// paperPattern is the paper-mandated row order with the flexible base marked
// by '*'. With flex=T this reads: TT TC CT CC GT GC AT AC TG TA CG CA GG GA AG AA.
var paperPattern = []string{
	"**", "*C", "C*", "CC",
	"G*", "GC", "A*", "AC",
	"*G", "*A", "CG", "CA",
	"GG", "GA", "AG", "AA",
}

// conformerPattern is the distinct order used by conformation-percentage
// figures. With flex=T: GG GA AG AA GC GT AT AC CA TA TG CG CC CT TC TT.
var conformerPattern = []string{
	"GG", "GA", "AG", "AA",
	"GC", "G*", "A*", "AC",
	"CA", "*A", "*G", "CG",
	"CC", "C*", "*C", "**",
}

// Paper returns the 16-entry paper row order with the flexible base
// substituted. This is the Y-axis order of the split-triangle figures.
func Paper(flex string) (Order, error) {
	return substitute(paperPattern, flex)
}

// Conformer returns the 16-entry order used by conformation-percentage
// figures. Unlike the paper order, its column order equals its row order.
func Conformer(flex string) (Order, error) {
	return substitute(conformerPattern, flex)
}

// Rows returns the canonical row order for the given context length.
// All supported lengths share the 16-entry paper order of flank pairs.
func Rows(contextLen int, flex string) (Order, error) {
	switch contextLen {
	case 2, 3, 4:
		return Paper(flex)
	}
	return nil, errors.New(errors.ErrCodeConfigContextLength,
		"unsupported context length: %d (must be 2, 3 or 4)", contextLen)
}

// Cols returns the canonical column order for the given context length:
// the reversed paper order for tetramers, the fixed "G A C <flex>" sequence
// for trimers, and a single empty insertion for dimers (whose keys are the
// row order itself).
func Cols(contextLen int, flex string) (Order, error) {
	switch contextLen {
	case 4:
		rows, err := Paper(flex)
		if err != nil {
			return nil, err
		}
		return rows.Reversed(), nil
	case 3:
		if err := ValidateFlex(flex); err != nil {
			return nil, err
		}
		return Order{"G", "A", "C", flex}, nil
	case 2:
		if err := ValidateFlex(flex); err != nil {
			return nil, err
		}
		return Order{""}, nil
	}
	return nil, errors.New(errors.ErrCodeConfigContextLength,
		"unsupported context length: %d (must be 2, 3 or 4)", contextLen)
}

// GridSize returns the sub-cell grid extents for a context length:
// M = 4^(L-2) insertion units wide, N = 16 flank pairs tall.
func GridSize(contextLen int) (m, n int, err error) {
	switch contextLen {
	case 2:
		return 1, 16, nil
	case 3:
		return 4, 16, nil
	case 4:
		return 16, 16, nil
	}
	return 0, 0, errors.New(errors.ErrCodeConfigContextLength,
		"unsupported context length: %d (must be 2, 3 or 4)", contextLen)
}

// Join forms the full oligomer key set as the Cartesian join of a row order
// and a column order: for every row label r (outer) and column label c
// (inner), the key is r[0] + c + r[1], i.e. the insertion unit placed between
// the two flank symbols. The result has len(rows)*len(cols) keys in
// row-major nested order, matching the bottom-left to top-right population
// order of the figures. Every row label must be a 2-symbol flank pair;
// anything else is a data mismatch.
func Join(rows, cols Order) (Order, error) {
	keys := make(Order, 0, len(rows)*len(cols))
	for _, r := range rows {
		if len(r) != 2 {
			return nil, errors.New(errors.ErrCodeDataMismatchKey,
				"row label %q is not a 2-symbol flank pair", r)
		}
		for _, c := range cols {
			keys = append(keys, r[:1]+c+r[1:])
		}
	}
	return keys, nil
}

// Oligomers returns the full canonical key set for a context length, built
// from its default row and column orders.
func Oligomers(contextLen int, flex string) (Order, error) {
	rows, err := Rows(contextLen, flex)
	if err != nil {
		return nil, err
	}
	cols, err := Cols(contextLen, flex)
	if err != nil {
		return nil, err
	}
	return Join(rows, cols)
}

// Reversed returns a reversed copy of the order. The receiver is unchanged.
func (o Order) Reversed() Order {
	rev := make(Order, len(o))
	for i, k := range o {
		rev[len(o)-1-i] = k
	}
	return rev
}

// Ranks derives the rank map of an order: key to zero-based position.
// A duplicate key makes the map ambiguous and is reported as a data
// mismatch.
func Ranks(o Order) (map[string]int, error) {
	ranks := make(map[string]int, len(o))
	for i, k := range o {
		if prev, ok := ranks[k]; ok {
			return nil, errors.New(errors.ErrCodeDataMismatchDuplicate,
				"duplicate key %q in axis order at positions %d and %d", k, prev, i)
		}
		ranks[k] = i
	}
	return ranks, nil
}

// substitute replaces the '*' placeholder with the flexible base and checks
// that the substitution did not collapse two entries into one (picking
// flex="C" would merge "*C" and "CC", for example).
func substitute(pattern []string, flex string) (Order, error) {
	if err := ValidateFlex(flex); err != nil {
		return nil, err
	}
	out := make(Order, len(pattern))
	seen := make(map[string]struct{}, len(pattern))
	for i, p := range pattern {
		k := strings.ReplaceAll(p, "*", flex)
		if _, dup := seen[k]; dup {
			return nil, errors.New(errors.ErrCodeConfigSymbol,
				"flexible symbol %q collides with a fixed base in the canonical order", flex)
		}
		seen[k] = struct{}{}
		out[i] = k
	}
	return out, nil
}

// ValidateFlex checks that the flexible symbol is a single accepted base:
// a member of the nucleotide alphabet, or U for RNA contexts.
func ValidateFlex(flex string) error {
	if len(flex) != 1 || !strings.Contains(flexSymbols, flex) {
		return errors.New(errors.ErrCodeConfigSymbol,
			"flexible symbol must be one of %q, got %q", flexSymbols, flex)
	}
	return nil
}
