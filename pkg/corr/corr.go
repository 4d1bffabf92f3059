// Package corr partitions and reorders correlation matrices for multi-panel
// heatmap figures.
//
// Two shapes are supported. A [Matrix] carries two-level composite keys
// (coordinate name, oligomer unit) on both axes and can be regrouped into
// per-coordinate blocks, enumerated as unordered coordinate-pair panels, and
// annotated with block-center tick positions. A [Flat] matrix carries plain
// string keys and is grouped by a fixed-position substring of each key (the
// basepair-step category).
//
// All operations return new values; inputs are never mutated, so independent
// panels can be produced concurrently from the same matrix.
package corr

import (
	"sort"

	"github.com/dnamaps/arlequin/pkg/errors"
)

// Key is a two-level composite index entry: the outer coordinate (descriptor
// name, e.g. "shift") and the inner oligomer unit.
type Key struct {
	Coordinate string
	Unit       string
}

// Matrix is a correlation matrix with two-level composite keys on both axes.
// Values[r][c] is the coefficient between Rows[r] and Cols[c].
type Matrix struct {
	Rows, Cols []Key
	Values     [][]float64
}

// New builds a Matrix and validates its shape: one value row per row key,
// each of width len(cols).
func New(rows, cols []Key, values [][]float64) (*Matrix, error) {
	if len(values) != len(rows) {
		return nil, errors.New(errors.ErrCodeShapeMatrix,
			"matrix has %d value rows for %d row keys", len(values), len(rows))
	}
	for r, row := range values {
		if len(row) != len(cols) {
			return nil, errors.New(errors.ErrCodeShapeMatrix,
				"matrix row %d has %d values for %d column keys", r, len(row), len(cols))
		}
	}
	return &Matrix{Rows: rows, Cols: cols, Values: values}, nil
}

// Coordinates returns the distinct outer-level values of the row index in
// lexicographic order. The published code iterated a set in arbitrary order;
// sorting keeps panel enumeration reproducible across runs.
func (m *Matrix) Coordinates() []string {
	seen := make(map[string]struct{})
	var coords []string
	for _, k := range m.Rows {
		if _, ok := seen[k.Coordinate]; !ok {
			seen[k.Coordinate] = struct{}{}
			coords = append(coords, k.Coordinate)
		}
	}
	sort.Strings(coords)
	return coords
}

// Regroup reindexes both axes so coordinates appear in [Matrix.Coordinates]
// order and, within each coordinate block, units are sorted ascending. Both
// axes must decompose into the same coordinate set; anything else is a shape
// defect.
func (m *Matrix) Regroup() (*Matrix, error) {
	coords := m.Coordinates()
	if err := m.checkDecomposable(coords); err != nil {
		return nil, err
	}

	rowIdx := groupIndex(m.Rows, coords)
	colIdx := groupIndex(m.Cols, coords)

	out := &Matrix{
		Rows:   gatherKeys(m.Rows, rowIdx),
		Cols:   gatherKeys(m.Cols, colIdx),
		Values: make([][]float64, len(rowIdx)),
	}
	for r, src := range rowIdx {
		row := make([]float64, len(colIdx))
		for c, srcC := range colIdx {
			row[c] = m.Values[src][srcC]
		}
		out.Values[r] = row
	}
	return out, nil
}

// checkDecomposable verifies the column axis carries exactly the row axis's
// coordinate set.
func (m *Matrix) checkDecomposable(coords []string) error {
	colCoords := make(map[string]struct{})
	for _, k := range m.Cols {
		colCoords[k.Coordinate] = struct{}{}
	}
	if len(colCoords) != len(coords) {
		return errors.New(errors.ErrCodeShapeMatrix,
			"row axis has %d coordinates, column axis has %d", len(coords), len(colCoords))
	}
	for _, c := range coords {
		if _, ok := colCoords[c]; !ok {
			return errors.New(errors.ErrCodeShapeMatrix,
				"coordinate %q missing from column axis", c)
		}
	}
	return nil
}

// groupIndex returns source indices ordered by (coordinate block, unit).
func groupIndex(keys []Key, coords []string) []int {
	rank := make(map[string]int, len(coords))
	for i, c := range coords {
		rank[c] = i
	}
	idx := make([]int, len(keys))
	for i := range keys {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if rank[ka.Coordinate] != rank[kb.Coordinate] {
			return rank[ka.Coordinate] < rank[kb.Coordinate]
		}
		return ka.Unit < kb.Unit
	})
	return idx
}

func gatherKeys(keys []Key, idx []int) []Key {
	out := make([]Key, len(idx))
	for i, src := range idx {
		out[i] = keys[src]
	}
	return out
}

// Panel is the sub-matrix restricted to one unordered coordinate pair,
// suitable for an independent figure panel.
type Panel struct {
	RowCoordinate string
	ColCoordinate string
	RowUnits      []string
	ColUnits      []string
	Values        [][]float64
}

// Pairs regroups the matrix and enumerates every unordered coordinate pair
// exactly once, self-pairs included: K coordinates yield K*(K+1)/2 panels.
// Panels appear in nested coordinate order (outer index ≤ inner index).
func (m *Matrix) Pairs() ([]Panel, error) {
	g, err := m.Regroup()
	if err != nil {
		return nil, err
	}
	coords := g.Coordinates()

	panels := make([]Panel, 0, len(coords)*(len(coords)+1)/2)
	for i, rc := range coords {
		for _, cc := range coords[i:] {
			panels = append(panels, g.slice(rc, cc))
		}
	}
	return panels, nil
}

// slice extracts the block of rows with coordinate rc against columns with
// coordinate cc. The receiver must already be regrouped.
func (m *Matrix) slice(rc, cc string) Panel {
	var rows, cols []int
	for i, k := range m.Rows {
		if k.Coordinate == rc {
			rows = append(rows, i)
		}
	}
	for i, k := range m.Cols {
		if k.Coordinate == cc {
			cols = append(cols, i)
		}
	}

	p := Panel{
		RowCoordinate: rc,
		ColCoordinate: cc,
		RowUnits:      make([]string, len(rows)),
		ColUnits:      make([]string, len(cols)),
		Values:        make([][]float64, len(rows)),
	}
	for i, r := range rows {
		p.RowUnits[i] = m.Rows[r].Unit
		row := make([]float64, len(cols))
		for j, c := range cols {
			row[j] = m.Values[r][c]
		}
		p.Values[i] = row
	}
	for j, c := range cols {
		p.ColUnits[j] = m.Cols[c].Unit
	}
	return p
}

// BlockTicks computes tick positions for a combined matrix of total rows
// split into k equally sized coordinate blocks, placing each tick at the
// center of its block: start = total/(2k), step = 2*start, positions
// start, start+step, ... below total-1. The integer arithmetic reproduces
// the published figure exactly.
func BlockTicks(total, k int) ([]int, error) {
	if total < 1 || k < 1 {
		return nil, errors.New(errors.ErrCodeConfigGrid,
			"block ticks need positive matrix size and coordinate count, got %d/%d", total, k)
	}
	start := total / (2 * k)
	step := 2 * start
	if step == 0 {
		return nil, errors.New(errors.ErrCodeConfigGrid,
			"matrix of %d rows cannot be split into %d blocks", total, k)
	}
	var ticks []int
	for pos := start; pos < total-1; pos += step {
		ticks = append(ticks, pos)
	}
	return ticks, nil
}
