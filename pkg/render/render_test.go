package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/toolrack/pkg/build"
	"github.com/matzehuels/toolrack/pkg/cad"
	"github.com/matzehuels/toolrack/pkg/cad/sim"
	"github.com/matzehuels/toolrack/pkg/errors"
	"github.com/matzehuels/toolrack/pkg/layout"
	"github.com/matzehuels/toolrack/pkg/params"
	"github.com/matzehuels/toolrack/pkg/tool"
)

func scenario(t *testing.T) Inputs {
	t.Helper()
	tools := []tool.Tool{
		{Name: "T10", Row: 0, Col: 0, HandleDiameter: 18, ShaftDiameter: 5, Enabled: true},
		{Name: "PH2", Row: 1, Col: 0, HandleDiameter: 22, ShaftDiameter: 6.4, Enabled: true},
		{Name: "off", Row: 4, Col: 4, HandleDiameter: 10, ShaftDiameter: 3},
	}
	p := params.Defaults()
	p.MountStyle = params.MountNone
	g := layout.Compute(tools, p)
	res, err := build.Build(context.Background(), sim.New(), build.Spec{Tools: tools, Grid: g, Params: p})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return Inputs{Doc: NewDocument(res, g, tools, p), Grid: g, Tools: tools, Params: p}
}

func TestNewDocument(t *testing.T) {
	in := scenario(t)
	doc := in.Doc

	if doc.RunID == "" {
		t.Error("RunID is empty")
	}
	if doc.Component != params.DefaultComponentName {
		t.Errorf("Component = %q, want %q", doc.Component, params.DefaultComponentName)
	}
	l := doc.Layout
	if l.Rows != 2 || l.Cols != 1 || l.PartWidth != 48 || l.PartDepth != 72 || l.StackHeight != 20 {
		t.Errorf("layout = %+v, want 2x1, 48x72, stack 20", l)
	}
	if len(l.Tools) != 2 {
		t.Fatalf("placed tools = %d, want 2 (disabled omitted)", len(l.Tools))
	}
	if got := l.Tools[1]; got.Name != "PH2" || got.Center != (layout.Point{X: 24, Y: 48}) || got.Label.Y != 37 || !got.LabelClamped {
		t.Errorf("PH2 placement = %+v", got)
	}
	if doc.Counts.Cuts != 6 || doc.Counts.Texts != 2 {
		t.Errorf("counts = %+v, want 6 cuts and 2 texts", doc.Counts)
	}
	if doc.Params["mount_style"] != "none" {
		t.Errorf("params[mount_style] = %v, want none", doc.Params["mount_style"])
	}

	other := NewDocument(&build.Result{Component: "X"}, in.Grid, in.Tools, in.Params)
	if other.RunID == doc.RunID {
		t.Error("two documents share a run id")
	}
	if other.Warnings == nil {
		t.Error("Warnings is nil, want empty list for JSON")
	}
}

func TestPlanJSONRoundTrip(t *testing.T) {
	doc := scenario(t).Doc
	data, err := PlanJSON(doc)
	if err != nil {
		t.Fatalf("PlanJSON() error = %v", err)
	}
	if !strings.Contains(string(data), `"run_id": "`+doc.RunID+`"`) {
		t.Error("run id missing from JSON")
	}
	back, err := ParsePlan(data)
	if err != nil {
		t.Fatalf("ParsePlan() error = %v", err)
	}
	if back.RunID != doc.RunID || len(back.Ops) != len(doc.Ops) || back.Counts != doc.Counts {
		t.Errorf("round trip lost data: %d ops, counts %+v", len(back.Ops), back.Counts)
	}
}

func TestPlanDOT(t *testing.T) {
	ops := []cad.Op{
		{Seq: 1, Step: "base", Kind: cad.OpSketch, Result: "sketch-1"},
		{Seq: 2, Step: "base", Kind: cad.OpExtrude, Mode: string(cad.ExtrudeNew), Result: "body-1"},
		{Seq: 3, Step: "holes", Kind: cad.OpText, Detail: `"T10" at (24,13) h=5`},
		{Seq: 4, Step: "holes", Kind: cad.OpExtrude, Mode: string(cad.ExtrudeCutThrough), Err: "boom"},
	}
	dot := PlanDOT(ops)

	for _, want := range []string{
		"digraph plan {",
		"subgraph cluster_0 {",
		`label="base";`,
		"subgraph cluster_1 {",
		"op1 -> op2;",
		"op3 -> op4;",
		`\"T10\" at (24,13) h=5`,
		`fillcolor="#f8d7da"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("PlanDOT() missing %q", want)
		}
	}
	if strings.Count(dot, "subgraph") != 2 {
		t.Errorf("clusters = %d, want 2", strings.Count(dot, "subgraph"))
	}
}

func TestDotQuote(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{"two\nlines", `"two\nlines"`},
		{"Schraubendreher Größe 2", `"Schraubendreher Größe 2"`},
	}
	for _, tt := range tests {
		if got := dotQuote(tt.in); got != tt.want {
			t.Errorf("dotQuote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("normalizeViewBox(no viewBox) = %s", got)
	}
}

func TestLayoutSVG(t *testing.T) {
	in := scenario(t)
	svg := string(LayoutSVG(in.Grid, in.Tools, in.Params))

	if !strings.HasPrefix(svg, "<svg ") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatal("LayoutSVG() is not a complete svg document")
	}
	// plate 88 x 77 mm at 4 px/mm plus 16 px margins
	if !strings.Contains(svg, `viewBox="0 0 384.0 340.0"`) {
		t.Errorf("unexpected viewBox in %s", svg[:120])
	}
	checks := map[string]int{
		`class="plate"`:         1,
		`class="part"`:          1,
		`class="cell"`:          2,
		`class="hole"`:          2,
		`class="handle"`:        2,
		`class="label clamped"`: 2,
	}
	for frag, want := range checks {
		if got := strings.Count(svg, frag); got != want {
			t.Errorf("count(%s) = %d, want %d", frag, got, want)
		}
	}
	if !strings.Contains(svg, `font-family="Arial, sans-serif">T10</text>`) {
		t.Error("label does not use font_name")
	}
	if strings.Contains(svg, ">off<") {
		t.Error("disabled tool drawn")
	}
}

func TestArtifact(t *testing.T) {
	in := scenario(t)
	ctx := context.Background()
	for _, f := range []string{FormatJSON, FormatSVG, FormatDOT} {
		data, err := Artifact(ctx, f, in)
		if err != nil || len(data) == 0 {
			t.Errorf("Artifact(%s) = %d bytes, %v", f, len(data), err)
		}
	}
	_, err := Artifact(ctx, "pdf", in)
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Artifact(pdf) error = %v, want %s", err, errors.ErrCodeUnsupported)
	}
}

func TestExtension(t *testing.T) {
	if got := Extension(FormatPlanSVG); got != ".plan.svg" {
		t.Errorf("Extension(plan-svg) = %q", got)
	}
	if got := Extension(FormatJSON); got != ".json" {
		t.Errorf("Extension(json) = %q", got)
	}
}
