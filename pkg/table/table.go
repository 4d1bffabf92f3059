// Package table models the statistics tables consumed by the layout engine:
// rows keyed by an oligomer key carrying one or two numeric payload columns.
//
// Tables are read-only to the layout engine. Every operation returns a new
// table; the input is never mutated. Missing values are represented by NaN
// (see [Missing] and [IsMissing]) and render as the scale's no-data color.
package table

import (
	"math"
	"sort"

	"github.com/dnamaps/arlequin/pkg/errors"
	"github.com/dnamaps/arlequin/pkg/order"
)

// Missing returns the sentinel payload value for absent data.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v is the missing-data sentinel.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Column is a named numeric payload column.
type Column struct {
	Name   string
	Values []float64
}

// Table is a statistics table: a key column plus one or more payload columns
// of equal length.
type Table struct {
	keys []string
	cols []Column
}

// New builds a table from a key column and payload columns. Every payload
// column must have exactly len(keys) values.
func New(keys []string, cols ...Column) (*Table, error) {
	for _, c := range cols {
		if len(c.Values) != len(keys) {
			return nil, errors.New(errors.ErrCodeShapeTable,
				"column %q has %d values for %d keys", c.Name, len(c.Values), len(keys))
		}
	}
	return &Table{keys: keys, cols: cols}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.keys) }

// Keys returns the key column. The returned slice is shared with the table
// and must not be modified.
func (t *Table) Keys() []string { return t.keys }

// Column returns the values of the named payload column. The returned slice
// is shared with the table and must not be modified.
func (t *Table) Column(name string) ([]float64, bool) {
	for _, c := range t.cols {
		if c.Name == name {
			return c.Values, true
		}
	}
	return nil, false
}

// ColumnNames returns the payload column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Policy selects how Reorder treats table keys absent from the axis order.
type Policy int

const (
	// PolicyStrict rejects any table key not present in the axis order.
	PolicyStrict Policy = iota

	// PolicyExpand right-outer joins the table against the axis order: the
	// result has exactly one row per order entry, with missing keys
	// materialized as NaN payloads. Used for sparse tables (e.g. observed
	// conformation percentages expanded to the full 256-key grid).
	PolicyExpand
)

// Reorder returns a new table whose rows follow the axis order's rank map.
//
// Under [PolicyStrict] every table key must appear in the order; the rows are
// stably sorted by rank, so reordering an already-ordered table is a no-op.
// Under [PolicyExpand] the result has exactly len(axis) rows in axis order;
// keys absent from the table get NaN payloads, and if the table carries a
// duplicate key the first occurrence wins.
func Reorder(t *Table, axis order.Order, policy Policy) (*Table, error) {
	ranks, err := order.Ranks(axis)
	if err != nil {
		return nil, err
	}

	switch policy {
	case PolicyStrict:
		return reorderStrict(t, ranks)
	case PolicyExpand:
		return expand(t, axis)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown missing-key policy: %d", policy)
}

func reorderStrict(t *Table, ranks map[string]int) (*Table, error) {
	idx := make([]int, t.Len())
	for i, k := range t.keys {
		if _, ok := ranks[k]; !ok {
			return nil, errors.New(errors.ErrCodeDataMismatchKey,
				"key %q not present in axis order", k)
		}
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return ranks[t.keys[idx[a]]] < ranks[t.keys[idx[b]]]
	})
	return t.gather(idx), nil
}

func expand(t *Table, axis order.Order) (*Table, error) {
	rowOf := make(map[string]int, t.Len())
	for i, k := range t.keys {
		if _, seen := rowOf[k]; !seen {
			rowOf[k] = i
		}
	}

	keys := make([]string, len(axis))
	cols := make([]Column, len(t.cols))
	for ci, c := range t.cols {
		cols[ci] = Column{Name: c.Name, Values: make([]float64, len(axis))}
	}
	for i, k := range axis {
		keys[i] = k
		src, ok := rowOf[k]
		for ci, c := range t.cols {
			if ok {
				cols[ci].Values[i] = c.Values[src]
			} else {
				cols[ci].Values[i] = Missing()
			}
		}
	}
	return &Table{keys: keys, cols: cols}, nil
}

// gather builds a new table containing the rows of t at idx, in order.
func (t *Table) gather(idx []int) *Table {
	keys := make([]string, len(idx))
	cols := make([]Column, len(t.cols))
	for ci, c := range t.cols {
		cols[ci] = Column{Name: c.Name, Values: make([]float64, len(idx))}
	}
	for i, src := range idx {
		keys[i] = t.keys[src]
		for ci, c := range t.cols {
			cols[ci].Values[i] = c.Values[src]
		}
	}
	return &Table{keys: keys, cols: cols}
}
