package tool

import "testing"

func TestEnabled(t *testing.T) {
	tools := []Tool{
		{Name: "a", Enabled: true},
		{Name: "b", Enabled: false},
		{Name: "c", Enabled: true},
	}
	got := Enabled(tools)
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Errorf("Enabled() = %v, want [a c]", got)
	}
}

func TestByRow(t *testing.T) {
	tools := []Tool{
		{Name: "x", Row: 2},
		{Name: "y", Row: 0},
		{Name: "z", Row: 2},
	}
	rows, groups := ByRow(tools)
	if len(rows) != 2 || rows[0] != 0 || rows[1] != 2 {
		t.Fatalf("rows = %v, want [0 2]", rows)
	}
	if g := groups[2]; len(g) != 2 || g[0].Name != "x" || g[1].Name != "z" {
		t.Errorf("groups[2] = %v, want [x z]", g)
	}
}

func TestSortByCell(t *testing.T) {
	tools := []Tool{
		{Name: "b", Row: 1, Col: 0},
		{Name: "c", Row: 0, Col: 2},
		{Name: "a", Row: 0, Col: 1},
	}
	got := SortByCell(tools)
	want := []string{"a", "c", "b"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("SortByCell()[%d] = %s, want %s", i, got[i].Name, name)
		}
	}
	if tools[0].Name != "b" {
		t.Error("SortByCell() modified its input")
	}
}

func TestCellLess(t *testing.T) {
	tests := []struct {
		a, b Cell
		want bool
	}{
		{Cell{0, 1}, Cell{1, 0}, true},
		{Cell{1, 0}, Cell{0, 1}, false},
		{Cell{1, 0}, Cell{1, 2}, true},
		{Cell{1, 2}, Cell{1, 2}, false},
	}
	for _, tt := range tests {
		if got := tt.a.Less(tt.b); got != tt.want {
			t.Errorf("%v.Less(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
