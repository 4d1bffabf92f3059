package corr

import (
	"testing"

	"github.com/dnamaps/arlequin/pkg/errors"
)

// buildMatrix makes a square two-level matrix with the given coordinates and
// units per coordinate. Values encode their source position for tracing.
func buildMatrix(t *testing.T, coords, units []string) *Matrix {
	t.Helper()
	var keys []Key
	for _, c := range coords {
		for _, u := range units {
			keys = append(keys, Key{Coordinate: c, Unit: u})
		}
	}
	values := make([][]float64, len(keys))
	for r := range keys {
		values[r] = make([]float64, len(keys))
		for c := range keys {
			values[r][c] = float64(r*len(keys) + c)
		}
	}
	m, err := New(keys, keys, values)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestNewShape(t *testing.T) {
	keys := []Key{{"shift", "AA"}, {"shift", "AC"}}
	_, err := New(keys, keys, [][]float64{{1, 2}})
	if !errors.Is(err, errors.ErrCodeShapeMatrix) {
		t.Errorf("err = %v, want SHAPE_MATRIX (missing row)", err)
	}
	_, err = New(keys, keys, [][]float64{{1, 2}, {3}})
	if !errors.Is(err, errors.ErrCodeShapeMatrix) {
		t.Errorf("err = %v, want SHAPE_MATRIX (ragged row)", err)
	}
}

func TestCoordinatesSorted(t *testing.T) {
	m := buildMatrix(t, []string{"twist", "shift", "roll"}, []string{"AA"})
	got := m.Coordinates()
	want := []string{"roll", "shift", "twist"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Coordinates = %v, want %v", got, want)
		}
	}
}

func TestRegroupSortsUnitsWithinBlocks(t *testing.T) {
	// Units deliberately out of order.
	keys := []Key{
		{"shift", "CC"}, {"shift", "AA"},
		{"roll", "TT"}, {"roll", "GG"},
	}
	values := [][]float64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	}
	m, err := New(keys, keys, values)
	if err != nil {
		t.Fatal(err)
	}
	g, err := m.Regroup()
	if err != nil {
		t.Fatal(err)
	}

	wantRows := []Key{
		{"roll", "GG"}, {"roll", "TT"},
		{"shift", "AA"}, {"shift", "CC"},
	}
	for i, k := range wantRows {
		if g.Rows[i] != k {
			t.Fatalf("Rows = %v, want %v", g.Rows, wantRows)
		}
		if g.Cols[i] != k {
			t.Fatalf("Cols = %v, want %v", g.Cols, wantRows)
		}
	}

	// Value (roll GG, shift CC) was at source (3, 0).
	if g.Values[0][3] != 13 {
		t.Errorf("Values[0][3] = %v, want 13", g.Values[0][3])
	}
	// Input untouched.
	if m.Rows[0] != (Key{"shift", "CC"}) {
		t.Error("Regroup mutated its input")
	}
}

func TestRegroupRejectsMismatchedAxes(t *testing.T) {
	rows := []Key{{"shift", "AA"}}
	cols := []Key{{"twist", "AA"}}
	m, err := New(rows, cols, [][]float64{{1}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Regroup(); !errors.Is(err, errors.ErrCodeShapeMatrix) {
		t.Errorf("err = %v, want SHAPE_MATRIX", err)
	}
}

func TestPairsEnumeration(t *testing.T) {
	tests := []struct {
		coords []string
		want   int
	}{
		{[]string{"shift"}, 1},
		{[]string{"shift", "slide"}, 3},
		{[]string{"shift", "slide", "rise", "tilt"}, 10},
	}
	for _, tt := range tests {
		m := buildMatrix(t, tt.coords, []string{"AA", "AC"})
		panels, err := m.Pairs()
		if err != nil {
			t.Fatal(err)
		}
		if len(panels) != tt.want {
			t.Errorf("%d coordinates: %d panels, want %d", len(tt.coords), len(panels), tt.want)
		}

		// Every unordered pair appears exactly once.
		seen := make(map[[2]string]int)
		for _, p := range panels {
			a, b := p.RowCoordinate, p.ColCoordinate
			if b < a {
				a, b = b, a
			}
			seen[[2]string{a, b}]++
		}
		for pair, n := range seen {
			if n != 1 {
				t.Errorf("pair %v appeared %d times", pair, n)
			}
		}
	}
}

func TestPanelContents(t *testing.T) {
	m := buildMatrix(t, []string{"b", "a"}, []string{"AA", "CC"})
	panels, err := m.Pairs()
	if err != nil {
		t.Fatal(err)
	}
	// Sorted coordinates: a, b. First panel is (a,a).
	p := panels[0]
	if p.RowCoordinate != "a" || p.ColCoordinate != "a" {
		t.Fatalf("first panel = (%s,%s), want (a,a)", p.RowCoordinate, p.ColCoordinate)
	}
	if len(p.RowUnits) != 2 || len(p.ColUnits) != 2 || len(p.Values) != 2 {
		t.Errorf("panel shape: %d units x %d units, %d rows",
			len(p.RowUnits), len(p.ColUnits), len(p.Values))
	}
	if p.RowUnits[0] != "AA" || p.RowUnits[1] != "CC" {
		t.Errorf("RowUnits = %v", p.RowUnits)
	}
}

func TestBlockTicks(t *testing.T) {
	tests := []struct {
		total, k int
		want     []int
	}{
		{256, 4, []int{32, 96, 160, 224}},
		{32, 2, []int{8, 24}},
		{8, 1, []int{4}},
	}
	for _, tt := range tests {
		got, err := BlockTicks(tt.total, tt.k)
		if err != nil {
			t.Fatalf("BlockTicks(%d,%d): %v", tt.total, tt.k, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("BlockTicks(%d,%d) = %v, want %v", tt.total, tt.k, got, tt.want)
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("BlockTicks(%d,%d) = %v, want %v", tt.total, tt.k, got, tt.want)
				break
			}
		}
	}
}

func TestBlockTicksErrors(t *testing.T) {
	if _, err := BlockTicks(0, 4); !errors.Is(err, errors.ErrCodeConfigGrid) {
		t.Errorf("err = %v, want CONFIG_GRID", err)
	}
	// More blocks than rows: integer start collapses to zero.
	if _, err := BlockTicks(2, 4); !errors.Is(err, errors.ErrCodeConfigGrid) {
		t.Errorf("err = %v, want CONFIG_GRID", err)
	}
}
