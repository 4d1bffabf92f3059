package corr

import (
	"sort"

	"github.com/dnamaps/arlequin/pkg/errors"
)

// Flat is a correlation matrix with plain string keys on the row axis and
// named columns, as produced by basepair-level correlation tables.
type Flat struct {
	Index   []string
	Columns []string
	Values  [][]float64
}

// NewFlat builds a Flat matrix and validates its shape.
func NewFlat(index, columns []string, values [][]float64) (*Flat, error) {
	if len(values) != len(index) {
		return nil, errors.New(errors.ErrCodeShapeMatrix,
			"matrix has %d value rows for %d index keys", len(values), len(index))
	}
	for r, row := range values {
		if len(row) != len(columns) {
			return nil, errors.New(errors.ErrCodeShapeMatrix,
				"matrix row %d has %d values for %d columns", r, len(row), len(columns))
		}
	}
	return &Flat{Index: index, Columns: columns, Values: values}, nil
}

// Window is a fixed-position substring extractor over index keys, defined by
// a start offset and a length. The default (1,2) takes the central basepair
// step of a 4-letter oligomer.
type Window struct {
	Start, Length int
}

// DefaultWindow is the basepair-step category window: characters 1-2.
var DefaultWindow = Window{Start: 1, Length: 2}

// Extract returns the category substring of key. The extraction is
// position-fixed: a key shorter than the window is a configuration error,
// never silently truncated.
func (w Window) Extract(key string) (string, error) {
	if w.Start < 0 || w.Length < 1 {
		return "", errors.New(errors.ErrCodeConfigWindow,
			"malformed category window (start=%d, length=%d)", w.Start, w.Length)
	}
	if len(key) < w.Start+w.Length {
		return "", errors.New(errors.ErrCodeConfigWindow,
			"key %q too short for category window (start=%d, length=%d)", key, w.Start, w.Length)
	}
	return key[w.Start : w.Start+w.Length], nil
}

// CategoryGroup is the sub-matrix of rows belonging to one category value.
type CategoryGroup struct {
	Category string
	Sub      *Flat
}

// GroupByCategory extracts the category of every index key through the
// window, then returns one sub-matrix per distinct category plus the
// combined matrix with rows stably sorted by category. Groups are returned
// in sorted category order so output is deterministic across runs. The
// category label itself never enters the payload.
func GroupByCategory(m *Flat, w Window) ([]CategoryGroup, *Flat, error) {
	cats := make([]string, len(m.Index))
	for i, k := range m.Index {
		c, err := w.Extract(k)
		if err != nil {
			return nil, nil, err
		}
		cats[i] = c
	}

	byCat := make(map[string][]int)
	var names []string
	for i, c := range cats {
		if _, ok := byCat[c]; !ok {
			names = append(names, c)
		}
		byCat[c] = append(byCat[c], i)
	}
	sort.Strings(names)

	groups := make([]CategoryGroup, len(names))
	var combinedIdx []int
	for gi, c := range names {
		rows := byCat[c]
		groups[gi] = CategoryGroup{Category: c, Sub: m.gather(rows)}
		combinedIdx = append(combinedIdx, rows...)
	}
	return groups, m.gather(combinedIdx), nil
}

// gather builds a new Flat containing the rows of m at idx, in order.
// Columns are shared, not copied; they are never mutated.
func (m *Flat) gather(idx []int) *Flat {
	out := &Flat{
		Index:   make([]string, len(idx)),
		Columns: m.Columns,
		Values:  make([][]float64, len(idx)),
	}
	for i, src := range idx {
		out.Index[i] = m.Index[src]
		row := make([]float64, len(m.Values[src]))
		copy(row, m.Values[src])
		out.Values[i] = row
	}
	return out
}
