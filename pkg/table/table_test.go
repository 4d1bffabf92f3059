package table

import (
	"testing"

	"github.com/dnamaps/arlequin/pkg/errors"
	"github.com/dnamaps/arlequin/pkg/order"
)

func mustTable(t *testing.T, keys []string, cols ...Column) *Table {
	t.Helper()
	tbl, err := New(keys, cols...)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestNewShapeCheck(t *testing.T) {
	_, err := New([]string{"TT", "TC"}, Column{Name: "mean", Values: []float64{1}})
	if !errors.Is(err, errors.ErrCodeShapeTable) {
		t.Errorf("err = %v, want SHAPE_TABLE", err)
	}
}

func TestReorderStrict(t *testing.T) {
	axis := order.Order{"TT", "TC", "CT", "CC"}
	tbl := mustTable(t,
		[]string{"CC", "TT", "CT", "TC"},
		Column{Name: "mean", Values: []float64{4, 1, 3, 2}},
	)

	got, err := Reorder(tbl, axis, PolicyStrict)
	if err != nil {
		t.Fatal(err)
	}
	wantKeys := []string{"TT", "TC", "CT", "CC"}
	wantVals := []float64{1, 2, 3, 4}
	for i := range wantKeys {
		if got.Keys()[i] != wantKeys[i] {
			t.Errorf("keys[%d] = %q, want %q", i, got.Keys()[i], wantKeys[i])
		}
	}
	vals, _ := got.Column("mean")
	for i := range wantVals {
		if vals[i] != wantVals[i] {
			t.Errorf("mean[%d] = %v, want %v", i, vals[i], wantVals[i])
		}
	}

	// Input table untouched.
	if tbl.Keys()[0] != "CC" {
		t.Error("Reorder mutated its input")
	}
}

func TestReorderIdempotent(t *testing.T) {
	axis := order.Order{"TT", "TC", "CT"}
	tbl := mustTable(t,
		[]string{"TT", "TC", "CT"},
		Column{Name: "v", Values: []float64{1, 2, 3}},
	)
	got, err := Reorder(tbl, axis, PolicyStrict)
	if err != nil {
		t.Fatal(err)
	}
	for i, k := range tbl.Keys() {
		if got.Keys()[i] != k {
			t.Errorf("row %d moved: %q -> %q", i, k, got.Keys()[i])
		}
	}
}

func TestReorderStrictUnknownKey(t *testing.T) {
	axis := order.Order{"TT", "TC"}
	tbl := mustTable(t,
		[]string{"TT", "XY"},
		Column{Name: "v", Values: []float64{1, 2}},
	)
	_, err := Reorder(tbl, axis, PolicyStrict)
	if !errors.Is(err, errors.ErrCodeDataMismatchKey) {
		t.Errorf("err = %v, want DATA_MISMATCH_KEY", err)
	}
}

func TestReorderDuplicateAxis(t *testing.T) {
	axis := order.Order{"TT", "TT"}
	tbl := mustTable(t, []string{"TT"}, Column{Name: "v", Values: []float64{1}})
	_, err := Reorder(tbl, axis, PolicyStrict)
	if !errors.Is(err, errors.ErrCodeDataMismatchDuplicate) {
		t.Errorf("err = %v, want DATA_MISMATCH_DUPLICATE", err)
	}
}

func TestReorderExpand(t *testing.T) {
	axis := order.Order{"TT", "TC", "CT", "CC"}
	tbl := mustTable(t,
		[]string{"CT", "TT"},
		Column{Name: "pct", Values: []float64{30, 10}},
	)
	got, err := Reorder(tbl, axis, PolicyExpand)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != len(axis) {
		t.Fatalf("Len = %d, want %d", got.Len(), len(axis))
	}
	vals, _ := got.Column("pct")
	if vals[0] != 10 || vals[2] != 30 {
		t.Errorf("observed rows misplaced: %v", vals)
	}
	if !IsMissing(vals[1]) || !IsMissing(vals[3]) {
		t.Errorf("absent keys should be NaN: %v", vals)
	}
}

func TestReorderExpandKeysNotInAxis(t *testing.T) {
	// Expand keeps only axis keys; extra table keys simply do not appear.
	axis := order.Order{"TT"}
	tbl := mustTable(t,
		[]string{"TT", "GG"},
		Column{Name: "v", Values: []float64{1, 2}},
	)
	got, err := Reorder(tbl, axis, PolicyExpand)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 1 || got.Keys()[0] != "TT" {
		t.Errorf("expand result = %v", got.Keys())
	}
}

func TestTwoPayloadColumns(t *testing.T) {
	axis := order.Order{"TA", "AT"}
	tbl := mustTable(t,
		[]string{"AT", "TA"},
		Column{Name: "shift", Values: []float64{-1, 1}},
		Column{Name: "slide", Values: []float64{-2, 2}},
	)
	got, err := Reorder(tbl, axis, PolicyStrict)
	if err != nil {
		t.Fatal(err)
	}
	shift, _ := got.Column("shift")
	slide, _ := got.Column("slide")
	if shift[0] != 1 || slide[0] != 2 {
		t.Errorf("columns not reordered together: shift=%v slide=%v", shift, slide)
	}
	if names := got.ColumnNames(); len(names) != 2 || names[0] != "shift" {
		t.Errorf("ColumnNames = %v", names)
	}
}
