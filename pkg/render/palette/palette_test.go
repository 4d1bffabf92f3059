package palette

import (
	"math"
	"testing"

	"github.com/dnamaps/arlequin/pkg/errors"
)

func TestNewValidatesBounds(t *testing.T) {
	if _, err := New([]float64{0, 1}, []string{"#fff", "#000"}, "#888"); !errors.Is(err, errors.ErrCodeConfigBounds) {
		t.Errorf("count mismatch: err = %v, want CONFIG_BOUNDS", err)
	}
	if _, err := New([]float64{0, 1, 1}, []string{"#fff", "#000"}, "#888"); !errors.Is(err, errors.ErrCodeConfigBounds) {
		t.Errorf("non-ascending: err = %v, want CONFIG_BOUNDS", err)
	}
}

func TestColorBuckets(t *testing.T) {
	s, err := New([]float64{-1, 0, 1}, []string{"#ff0000", "#0000ff"}, "#808080")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		v    float64
		want string
	}{
		{-0.5, "#ff0000"},
		{0, "#0000ff"},
		{0.5, "#0000ff"},
		{-1, "#ff0000"},
	}
	for _, tt := range tests {
		if got := s.Color(tt.v); got != tt.want {
			t.Errorf("Color(%v) = %s, want %s", tt.v, got, tt.want)
		}
	}
}

func TestColorSaturates(t *testing.T) {
	s := Correlation()
	if got := s.Color(-5); got != s.Colors[0] {
		t.Errorf("below range: %s, want %s", got, s.Colors[0])
	}
	if got := s.Color(5); got != s.Colors[len(s.Colors)-1] {
		t.Errorf("above range: %s, want %s", got, s.Colors[len(s.Colors)-1])
	}
	if got := s.Color(1.0); got != s.Colors[len(s.Colors)-1] {
		t.Errorf("at upper bound: %s, want %s", got, s.Colors[len(s.Colors)-1])
	}
}

func TestColorNoData(t *testing.T) {
	for _, s := range []*Scale{Arlequin(), Conformation(), Correlation(), Basepair()} {
		if got := s.Color(math.NaN()); got != s.NoData {
			t.Errorf("NaN color = %s, want %s", got, s.NoData)
		}
	}
}

func TestPresetsWellFormed(t *testing.T) {
	presets := map[string]*Scale{
		"arlequin":     Arlequin(),
		"conformation": Conformation(),
		"correlation":  Correlation(),
		"basepair":     Basepair(),
	}
	for name, s := range presets {
		if len(s.Bounds) != len(s.Colors)+1 {
			t.Errorf("%s: %d bounds for %d colors", name, len(s.Bounds), len(s.Colors))
		}
		if s.Min() >= s.Max() {
			t.Errorf("%s: Min %v >= Max %v", name, s.Min(), s.Max())
		}
	}
}
