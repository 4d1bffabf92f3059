// Package mesh builds the split-triangle tessellation used by the
// two-series ("arlequin") heatmap figures.
//
// An M×N grid of unit cells is covered by two disjoint triangle lists so
// every cell carries an upper and a lower half that can be colored
// independently. Both triangles of a cell share the diagonal from the cell's
// bottom-left corner (i,j) to its top-right corner (i+1,j+1); the orientation
// is uniform across the whole grid.
package mesh

import (
	"github.com/dnamaps/arlequin/pkg/errors"
)

// Triangle references three lattice points by flat index.
type Triangle [3]int

// Mesh is a tessellated M×N grid: the lattice point coordinates plus the
// upper and lower triangle lists, each holding exactly M*N triangles in
// row-major cell order (j outer, i inner).
type Mesh struct {
	M, N int

	// X, Y are the lattice point coordinates in row-major order:
	// point (i,j) lives at flat index i + j*(M+1).
	X, Y []float64

	// Upper holds the triangle {(i,j), (i+1,j), (i+1,j+1)} of each cell.
	Upper []Triangle

	// Lower holds the triangle {(i,j), (i+1,j+1), (i,j+1)} of each cell.
	Lower []Triangle
}

// Tessellate builds the lattice and both triangle lists for an m×n grid.
func Tessellate(m, n int) (*Mesh, error) {
	if m < 1 || n < 1 {
		return nil, errors.New(errors.ErrCodeConfigGrid,
			"grid extents must be positive, got %dx%d", m, n)
	}

	points := (m + 1) * (n + 1)
	msh := &Mesh{
		M: m, N: n,
		X:     make([]float64, points),
		Y:     make([]float64, points),
		Upper: make([]Triangle, 0, m*n),
		Lower: make([]Triangle, 0, m*n),
	}

	for j := 0; j <= n; j++ {
		for i := 0; i <= m; i++ {
			p := i + j*(m+1)
			msh.X[p] = float64(i)
			msh.Y[p] = float64(j)
		}
	}

	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			bl := i + j*(m+1)         // bottom-left (i,j)
			br := i + 1 + j*(m+1)     // bottom-right (i+1,j)
			tr := i + 1 + (j+1)*(m+1) // top-right (i+1,j+1)
			tl := i + (j+1)*(m+1)     // top-left (i,j+1)
			msh.Upper = append(msh.Upper, Triangle{bl, br, tr})
			msh.Lower = append(msh.Lower, Triangle{bl, tr, tl})
		}
	}
	return msh, nil
}

// Cells returns the number of unit cells, M*N.
func (m *Mesh) Cells() int { return m.M * m.N }

// Points returns the number of lattice points, (M+1)*(N+1).
func (m *Mesh) Points() int { return (m.M + 1) * (m.N + 1) }

// Validate checks that a per-cell payload array matches the grid: one value
// per cell, row-major, aligned with the canonical key order that populated
// the grid.
func (m *Mesh) Validate(values []float64) error {
	if len(values) != m.Cells() {
		return errors.New(errors.ErrCodeShapePayload,
			"payload has %d values for a %dx%d grid (want %d)",
			len(values), m.M, m.N, m.Cells())
	}
	return nil
}
