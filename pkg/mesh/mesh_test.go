package mesh

import (
	"testing"

	"github.com/dnamaps/arlequin/pkg/errors"
)

func TestTessellateCounts(t *testing.T) {
	tests := []struct{ m, n int }{
		{1, 1}, {2, 1}, {16, 16}, {4, 16},
	}
	for _, tt := range tests {
		msh, err := Tessellate(tt.m, tt.n)
		if err != nil {
			t.Fatalf("Tessellate(%d,%d): %v", tt.m, tt.n, err)
		}
		cells := tt.m * tt.n
		if len(msh.Upper) != cells || len(msh.Lower) != cells {
			t.Errorf("(%d,%d): %d upper, %d lower triangles, want %d each",
				tt.m, tt.n, len(msh.Upper), len(msh.Lower), cells)
		}
		points := (tt.m + 1) * (tt.n + 1)
		if len(msh.X) != points || len(msh.Y) != points {
			t.Errorf("(%d,%d): lattice has %d points, want %d", tt.m, tt.n, len(msh.X), points)
		}
		for _, tris := range [][]Triangle{msh.Upper, msh.Lower} {
			for _, tri := range tris {
				for _, p := range tri {
					if p < 0 || p >= points {
						t.Fatalf("(%d,%d): index %d outside [0,%d)", tt.m, tt.n, p, points)
					}
				}
			}
		}
	}
}

func TestTessellateExample(t *testing.T) {
	// Grid (M=2,N=1): 6 lattice points, cell (0,0) upper triangle is
	// {(0,0),(1,0),(1,1)} = flat indices {0,1,4} with M+1=3 columns.
	msh, err := Tessellate(2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if msh.Points() != 6 {
		t.Errorf("Points = %d, want 6", msh.Points())
	}
	if got, want := msh.Upper[0], (Triangle{0, 1, 4}); got != want {
		t.Errorf("Upper[0] = %v, want %v", got, want)
	}
	if got, want := msh.Lower[0], (Triangle{0, 4, 3}); got != want {
		t.Errorf("Lower[0] = %v, want %v", got, want)
	}
}

func TestSharedDiagonal(t *testing.T) {
	msh, err := Tessellate(3, 2)
	if err != nil {
		t.Fatal(err)
	}
	for c := range msh.Upper {
		shared := 0
		for _, pu := range msh.Upper[c] {
			for _, pl := range msh.Lower[c] {
				if pu == pl {
					shared++
				}
			}
		}
		if shared != 2 {
			t.Errorf("cell %d: triangles share %d points, want 2 (the diagonal)", c, shared)
		}
	}
}

func TestDiagonalOrientationUniform(t *testing.T) {
	// Every cell's shared edge must run from (i,j) to (i+1,j+1): the first
	// vertex of both triangles is the bottom-left corner and both contain
	// the top-right corner.
	msh, err := Tessellate(4, 3)
	if err != nil {
		t.Fatal(err)
	}
	c := 0
	for j := 0; j < msh.N; j++ {
		for i := 0; i < msh.M; i++ {
			bl := i + j*(msh.M+1)
			tr := i + 1 + (j+1)*(msh.M+1)
			if msh.Upper[c][0] != bl || msh.Lower[c][0] != bl {
				t.Fatalf("cell %d: triangles do not start at bottom-left", c)
			}
			if msh.Upper[c][2] != tr || msh.Lower[c][1] != tr {
				t.Fatalf("cell %d: triangles do not share top-right corner", c)
			}
			c++
		}
	}
}

func TestTriangleStaysInCell(t *testing.T) {
	msh, err := Tessellate(5, 4)
	if err != nil {
		t.Fatal(err)
	}
	check := func(tri Triangle) {
		minX, maxX := msh.X[tri[0]], msh.X[tri[0]]
		minY, maxY := msh.Y[tri[0]], msh.Y[tri[0]]
		for _, p := range tri[1:] {
			minX = min(minX, msh.X[p])
			maxX = max(maxX, msh.X[p])
			minY = min(minY, msh.Y[p])
			maxY = max(maxY, msh.Y[p])
		}
		if maxX-minX > 1 || maxY-minY > 1 {
			t.Fatalf("triangle %v spans more than one unit cell", tri)
		}
	}
	for _, tri := range msh.Upper {
		check(tri)
	}
	for _, tri := range msh.Lower {
		check(tri)
	}
}

func TestTessellateRejectsBadExtents(t *testing.T) {
	for _, tt := range []struct{ m, n int }{{0, 1}, {1, 0}, {-1, 4}} {
		if _, err := Tessellate(tt.m, tt.n); !errors.Is(err, errors.ErrCodeConfigGrid) {
			t.Errorf("Tessellate(%d,%d) err = %v, want CONFIG_GRID", tt.m, tt.n, err)
		}
	}
}

func TestValidatePayload(t *testing.T) {
	msh, err := Tessellate(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := msh.Validate(make([]float64, 4)); err != nil {
		t.Errorf("Validate(4 values) = %v", err)
	}
	if err := msh.Validate(make([]float64, 5)); !errors.Is(err, errors.ErrCodeShapePayload) {
		t.Errorf("Validate(5 values) err = %v, want SHAPE_PAYLOAD", err)
	}
}
