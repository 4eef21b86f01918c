package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/toolrack/pkg/params"
	"github.com/matzehuels/toolrack/pkg/tool"
)

func scenario() []tool.Tool {
	return []tool.Tool{
		{Name: "T10", Row: 0, Col: 0, HandleDiameter: 18, ShaftDiameter: 5, Enabled: true},
		{Name: "PH2", Row: 1, Col: 0, HandleDiameter: 22, ShaftDiameter: 6.4, Enabled: true},
	}
}

func TestComputeScenario(t *testing.T) {
	g := Compute(scenario(), params.Defaults())

	if g.Rows() != 2 || g.Cols() != 1 {
		t.Fatalf("grid = %dx%d, want 2x1", g.Rows(), g.Cols())
	}
	if g.ColWidths[0] != 28 {
		t.Errorf("ColWidths[0] = %v, want 28", g.ColWidths[0])
	}
	if g.RowDepths[0] != 24 || g.RowDepths[1] != 28 {
		t.Errorf("RowDepths = %v, want {0:24 1:28}", g.RowDepths)
	}
	if g.PartWidth != 48 || g.PartDepth != 72 {
		t.Errorf("part = %vx%v, want 48x72", g.PartWidth, g.PartDepth)
	}
	if c := g.Centers[tool.Cell{Row: 0, Col: 0}]; c != (Point{24, 22}) {
		t.Errorf("center(0,0) = %v, want {24 22}", c)
	}
	if c := g.Centers[tool.Cell{Row: 1, Col: 0}]; c != (Point{24, 48}) {
		t.Errorf("center(1,0) = %v, want {24 48}", c)
	}
	if g.RowStart(1) != 34 || g.RowEnd(1) != 62 {
		t.Errorf("row 1 spans [%v,%v], want [34,62]", g.RowStart(1), g.RowEnd(1))
	}
}

func TestComputeDenseGrid(t *testing.T) {
	p := params.Defaults()
	tools := []tool.Tool{
		{Name: "a", Row: 0, Col: 0, HandleDiameter: 20, ShaftDiameter: 5, Enabled: true},
		{Name: "b", Row: 3, Col: 4, HandleDiameter: 30, ShaftDiameter: 5, Enabled: true},
		{Name: "off", Row: 9, Col: 9, HandleDiameter: 50, ShaftDiameter: 5, Enabled: false},
	}
	g := Compute(tools, p)

	if g.MaxRow != 3 || g.MaxCol != 4 {
		t.Fatalf("Max = (%d,%d), want (3,4)", g.MaxRow, g.MaxCol)
	}
	for c := 0; c <= g.MaxCol; c++ {
		w, ok := g.ColWidths[c]
		if !ok || w < p.MinWeb {
			t.Errorf("ColWidths[%d] = %v (present %v), want >= %v", c, w, ok, p.MinWeb)
		}
	}
	for r := 0; r <= g.MaxRow; r++ {
		d, ok := g.RowDepths[r]
		if !ok || d < p.MinWeb {
			t.Errorf("RowDepths[%d] = %v (present %v), want >= %v", r, d, ok, p.MinWeb)
		}
	}
	if g.ColWidths[2] != p.MinWeb || g.RowDepths[1] != p.MinWeb {
		t.Errorf("empty indices = %v/%v, want min_web", g.ColWidths[2], g.RowDepths[1])
	}
	if len(g.Centers) != 2 {
		t.Errorf("len(Centers) = %d, want 2 (disabled tools ignored)", len(g.Centers))
	}

	var sumW, sumD float64
	for c := 0; c <= g.MaxCol; c++ {
		sumW += g.ColWidths[c]
	}
	for r := 0; r <= g.MaxRow; r++ {
		sumD += g.RowDepths[r]
	}
	if g.PartWidth != 2*p.EdgeMarginX+sumW {
		t.Errorf("PartWidth = %v, want %v", g.PartWidth, 2*p.EdgeMarginX+sumW)
	}
	if g.PartDepth != 2*p.EdgeMarginY+sumD {
		t.Errorf("PartDepth = %v, want %v", g.PartDepth, 2*p.EdgeMarginY+sumD)
	}
}

func TestComputeMinWebDominatesPad(t *testing.T) {
	p := params.Defaults()
	p.HandleXPad = 1
	p.MinWeb = 5
	g := Compute([]tool.Tool{{Name: "a", HandleDiameter: 10, ShaftDiameter: 3, Enabled: true}}, p)
	if g.ColWidths[0] != 15 {
		t.Errorf("ColWidths[0] = %v, want 15", g.ColWidths[0])
	}
	if g.RowDepths[0] != 16 {
		t.Errorf("RowDepths[0] = %v, want 16", g.RowDepths[0])
	}
}

func TestComputeSharedColumnUsesLargestHandle(t *testing.T) {
	p := params.Defaults()
	tools := []tool.Tool{
		{Name: "a", Row: 0, Col: 1, HandleDiameter: 10, ShaftDiameter: 3, Enabled: true},
		{Name: "b", Row: 1, Col: 1, HandleDiameter: 26, ShaftDiameter: 3, Enabled: true},
	}
	g := Compute(tools, p)
	if g.ColWidths[1] != 32 {
		t.Errorf("ColWidths[1] = %v, want 32", g.ColWidths[1])
	}
	a := g.Centers[tool.Cell{Row: 0, Col: 1}]
	b := g.Centers[tool.Cell{Row: 1, Col: 1}]
	if a.X != b.X {
		t.Errorf("shared column centers X = %v, %v; want equal", a.X, b.X)
	}
	if want := p.EdgeMarginX + p.MinWeb + 16; math.Abs(a.X-want) > 1e-12 {
		t.Errorf("center X = %v, want %v", a.X, want)
	}
}

func TestComputeEmpty(t *testing.T) {
	p := params.Defaults()
	g := Compute(nil, p)
	if !g.Empty() || g.MaxRow != -1 || g.MaxCol != -1 {
		t.Errorf("Compute(nil) Max = (%d,%d), want (-1,-1)", g.MaxRow, g.MaxCol)
	}
	if g.PartWidth != 2*p.EdgeMarginX {
		t.Errorf("PartWidth = %v, want %v", g.PartWidth, 2*p.EdgeMarginX)
	}
}

func TestComputeDeterministic(t *testing.T) {
	a := Compute(scenario(), params.Defaults())
	b := Compute(scenario(), params.Defaults())
	if a.PartWidth != b.PartWidth || a.PartDepth != b.PartDepth {
		t.Error("Compute() not deterministic")
	}
	for k, v := range a.Centers {
		if b.Centers[k] != v {
			t.Errorf("Centers[%v] = %v, then %v", k, v, b.Centers[k])
		}
	}
}

func TestCenterList(t *testing.T) {
	g := Compute(scenario(), params.Defaults())
	list := g.CenterList()
	if len(list) != 2 || list[0].Row != 0 || list[1].Row != 1 {
		t.Errorf("CenterList() = %+v", list)
	}
}
