package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/toolrack/pkg/layout"
	"github.com/matzehuels/toolrack/pkg/params"
	"github.com/matzehuels/toolrack/pkg/render"
)

func TestLayoutTable(t *testing.T) {
	tools := pickTools()
	p := params.Defaults()
	summary := render.Summarize(layout.Compute(tools, p), tools, p)

	out := layoutTable(summary)
	for _, want := range []string{"Tool", "T10", "PH2", "24, 22", "24, 13"} {
		if !strings.Contains(out, want) {
			t.Errorf("layoutTable() missing %q", want)
		}
	}
	if strings.Contains(out, "old") {
		t.Error("layoutTable() lists a disabled tool")
	}
}

func TestLayoutCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	if err := runRoot(t, "layout", writeCatalogFile(t, scenarioCSV)); err != nil {
		t.Errorf("layout error = %v", err)
	}
}

func TestFormatMM(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{48, "48"},
		{6.4, "6.4"},
		{12.25, "12.25"},
		{0.333, "0.33"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := formatMM(tt.in); got != tt.want {
			t.Errorf("formatMM(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJoinMM(t *testing.T) {
	if got := joinMM([]float64{24, 25.5}); got != "24 / 25.5 mm" {
		t.Errorf("joinMM() = %q", got)
	}
}

func TestStatsLine(t *testing.T) {
	line := statsLine(2, 2, 1, 48, 72, true)
	for _, want := range []string{"2 tools", "2×1 grid", "48×72 mm", "cached"} {
		if !strings.Contains(line, want) {
			t.Errorf("statsLine() = %q, missing %q", line, want)
		}
	}
	if !strings.Contains(statsLine(1, 1, 1, 30, 30, false), "fresh") {
		t.Error("statsLine(fresh) missing fresh marker")
	}
}
