package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dnamaps/arlequin/pkg/corr"
	"github.com/dnamaps/arlequin/pkg/errors"
	"github.com/dnamaps/arlequin/pkg/figure"
	"github.com/dnamaps/arlequin/pkg/mesh"
	"github.com/dnamaps/arlequin/pkg/render/palette"
	"github.com/dnamaps/arlequin/pkg/table"
)

func testArlequin(t *testing.T) *figure.Arlequin {
	t.Helper()
	m, err := mesh.Tessellate(2, 1)
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	return &figure.Arlequin{
		Title:     "diff <AB>",
		RowLabels: []string{"T..T"},
		ColLabels: []string{"GG", "AA"},
		Mesh:      m,
		Upper:     []float64{-0.8, 0.0},
		Lower:     []float64{0.9, table.Missing()},
		Scale:     palette.Arlequin(),
		Legend:    [3]string{"< 1.00-0.10", "1.00±0.10", "> 1.10"},
	}
}

func testCorrelation(t *testing.T) *figure.Correlation {
	t.Helper()
	keys := []corr.Key{
		{Coordinate: "roll", Unit: "AA"}, {Coordinate: "roll", Unit: "GG"},
		{Coordinate: "twist", Unit: "AA"}, {Coordinate: "twist", Unit: "GG"},
	}
	values := [][]float64{
		{1, 0.2, 0.3, 0.4},
		{0.2, 1, 0.5, 0.6},
		{0.3, 0.5, 1, 0.7},
		{0.4, 0.6, 0.7, 1},
	}
	m, err := corr.New(keys, keys, values)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fig, err := figure.BuildCorrelation(m, figure.CorrelationOptions{Title: "helical correlations"})
	if err != nil {
		t.Fatalf("BuildCorrelation: %v", err)
	}
	return fig
}

func testBasepair(t *testing.T) *figure.Basepair {
	t.Helper()
	flat, err := corr.NewFlat(
		[]string{"AGGT", "CAAG"},
		[]string{"shift", "slide"},
		[][]float64{{0.4, -0.5}, {0.1, 0.2}},
	)
	if err != nil {
		t.Fatalf("NewFlat: %v", err)
	}
	fig, err := figure.BuildBasepair(flat, figure.BasepairOptions{Title: "basepair correlations"})
	if err != nil {
		t.Fatalf("BuildBasepair: %v", err)
	}
	return fig
}

func TestRenderSVGArlequin(t *testing.T) {
	svg, err := RenderSVG(testArlequin(t))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	s := string(svg)

	if !strings.HasPrefix(s, "<svg") {
		t.Fatalf("output does not start with <svg: %q", s[:40])
	}
	if !strings.Contains(s, "viewBox") {
		t.Error("missing viewBox")
	}
	if got := strings.Count(s, "<polygon"); got != 4 {
		t.Errorf("polygon count = %d, want 4 (two triangles per cell)", got)
	}
	// NaN in the lower payload picks the no-data color.
	if !strings.Contains(s, palette.Arlequin().NoData) {
		t.Error("missing no-data fill for NaN cell")
	}
	// Title markup must be escaped.
	if strings.Contains(s, "<AB>") {
		t.Error("title not escaped")
	}
	if !strings.Contains(s, "diff &lt;AB&gt;") {
		t.Error("escaped title missing")
	}
}

func TestRenderSVGConformation(t *testing.T) {
	fig := &figure.Conformation{
		Title:   "MYFILE CONFORMATIONS",
		XLabels: []string{"GG", "AA"},
		YLabels: []string{"GG", "AA"},
		Values:  []float64{10, 40, table.Missing(), 95},
		Scale:   palette.Conformation(),
	}
	svg, err := RenderSVG(fig)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	s := string(svg)
	if got := strings.Count(s, "<rect"); got < 4 {
		t.Errorf("rect count = %d, want at least 4 cells", got)
	}
	if !strings.Contains(s, palette.Conformation().NoData) {
		t.Error("missing no-data fill for NaN cell")
	}
}

func TestRenderSVGCorrelation(t *testing.T) {
	svg, err := RenderSVG(testCorrelation(t))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	s := string(svg)
	if !strings.Contains(s, "roll") || !strings.Contains(s, "twist") {
		t.Error("missing coordinate tick labels")
	}
}

func TestRenderPanelSVG(t *testing.T) {
	fig := testCorrelation(t)
	if len(fig.Panels) != 3 {
		t.Fatalf("panels = %d, want 3", len(fig.Panels))
	}
	svg := RenderPanelSVG(fig.Panels[1], fig.Scale)
	s := string(svg)
	if !strings.Contains(s, "rows: roll | columns: twist") {
		t.Errorf("panel title missing, got: %.120s", s)
	}
}

func TestRenderCategorySVG(t *testing.T) {
	fig := testBasepair(t)
	if len(fig.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(fig.Groups))
	}
	svg := RenderCategorySVG(fig.Groups[0], fig.Scale)
	if !strings.Contains(string(svg), "Correlation for basepair group AA") {
		t.Error("category title missing")
	}
}

func TestRenderSVGWithoutColorbar(t *testing.T) {
	with, err := RenderSVG(testArlequin(t))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	without, err := RenderSVG(testArlequin(t), WithoutColorbar())
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if len(without) >= len(with) {
		t.Error("suppressing the colorbar should shrink the output")
	}
}

func TestRenderJSONArlequin(t *testing.T) {
	data, err := RenderJSON(testArlequin(t))
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	var out struct {
		Kind      string     `json:"kind"`
		M         int        `json:"m"`
		N         int        `json:"n"`
		Upper     []struct{} `json:"upper"`
		LowerVals []*float64 `json:"lower_values"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Kind != string(figure.KindArlequin) {
		t.Errorf("kind = %q", out.Kind)
	}
	if out.M != 2 || out.N != 1 {
		t.Errorf("grid = %dx%d, want 2x1", out.M, out.N)
	}
	if len(out.Upper) != 2 {
		t.Errorf("upper triangles = %d, want 2", len(out.Upper))
	}
	if out.LowerVals[1] != nil {
		t.Error("NaN payload value should serialize as null")
	}
	if out.LowerVals[0] == nil || *out.LowerVals[0] != 0.9 {
		t.Errorf("lower_values[0] = %v, want 0.9", out.LowerVals[0])
	}
}

func TestRenderJSONCorrelation(t *testing.T) {
	data, err := RenderJSON(testCorrelation(t))
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	var out struct {
		Kind   string `json:"kind"`
		Panels []struct {
			RowCoordinate string `json:"row_coordinate"`
		} `json:"panels"`
		Ticks []int `json:"ticks"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Kind != string(figure.KindCorrelation) {
		t.Errorf("kind = %q", out.Kind)
	}
	if len(out.Panels) != 3 {
		t.Errorf("panels = %d, want 3", len(out.Panels))
	}
	if len(out.Ticks) != 1 || out.Ticks[0] != 1 {
		t.Errorf("ticks = %v, want [1]", out.Ticks)
	}
}

type bogusFigure struct{}

func (bogusFigure) Kind() figure.Kind { return "bogus" }

func TestRenderUnknownKind(t *testing.T) {
	if _, err := RenderSVG(bogusFigure{}); errors.GetCode(err) != errors.ErrCodeInvalidFigure {
		t.Errorf("RenderSVG code = %v, want INVALID_FIGURE", errors.GetCode(err))
	}
	if _, err := RenderJSON(bogusFigure{}); errors.GetCode(err) != errors.ErrCodeInvalidFigure {
		t.Errorf("RenderJSON code = %v, want INVALID_FIGURE", errors.GetCode(err))
	}
}
