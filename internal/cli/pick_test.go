package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/toolrack/pkg/catalog"
	"github.com/matzehuels/toolrack/pkg/tool"
)

func pickTools() []tool.Tool {
	return []tool.Tool{
		{Name: "T10", Row: 0, Col: 0, HandleDiameter: 18, ShaftDiameter: 5, Enabled: true},
		{Name: "PH2", Row: 1, Col: 0, HandleDiameter: 22, ShaftDiameter: 6.4, Enabled: true},
		{Name: "old", Row: 2, Col: 0, HandleDiameter: 20, ShaftDiameter: 4},
	}
}

func press(t *testing.T, m PickModel, keys ...tea.KeyMsg) (PickModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(PickModel)
	}
	return m, cmd
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keySpace = tea.KeyMsg{Type: tea.KeySpace}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPickModelToggle(t *testing.T) {
	tools := pickTools()
	m := NewPickModel(tools)

	m, _ = press(t, m, keyDown, keyDown, keySpace)
	if m.Cursor != 2 || !m.Tools[2].Enabled {
		t.Errorf("cursor = %d enabled = %v, want row 2 enabled", m.Cursor, m.Tools[2].Enabled)
	}
	if tools[2].Enabled {
		t.Error("picker modified the caller's slice")
	}

	m, _ = press(t, m, keyUp, runes("x"))
	if m.Tools[1].Enabled {
		t.Error("x did not toggle row 1")
	}
	if got := m.EnabledCount(); got != 2 {
		t.Errorf("EnabledCount() = %d, want 2", got)
	}
}

func TestPickModelBounds(t *testing.T) {
	m := NewPickModel(pickTools())
	m, _ = press(t, m, keyUp)
	if m.Cursor != 0 {
		t.Errorf("cursor = %d after up at top, want 0", m.Cursor)
	}
	m, _ = press(t, m, runes("j"), runes("j"), runes("j"), runes("j"))
	if m.Cursor != 2 {
		t.Errorf("cursor = %d after moving past the end, want 2", m.Cursor)
	}
}

func TestPickModelAllNone(t *testing.T) {
	m := NewPickModel(pickTools())
	m, _ = press(t, m, runes("a"))
	if m.EnabledCount() != 3 {
		t.Errorf("after a: EnabledCount() = %d, want 3", m.EnabledCount())
	}
	m, _ = press(t, m, runes("n"))
	if m.EnabledCount() != 0 {
		t.Errorf("after n: EnabledCount() = %d, want 0", m.EnabledCount())
	}
}

func TestPickModelSaveAndQuit(t *testing.T) {
	m, cmd := press(t, NewPickModel(pickTools()), keyEnter)
	if !m.Saved || cmd == nil {
		t.Errorf("enter: Saved = %v, cmd = %v, want saved and quit", m.Saved, cmd)
	}

	m, cmd = press(t, NewPickModel(pickTools()), keyEsc)
	if m.Saved || cmd == nil {
		t.Errorf("esc: Saved = %v, want quit without saving", m.Saved)
	}
}

func TestPickModelScroll(t *testing.T) {
	m := NewPickModel(pickTools())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 8})
	m = next.(PickModel)
	if m.Height != 5 {
		t.Fatalf("Height = %d, want minimum 5", m.Height)
	}
	m.Height = 2
	m, _ = press(t, m, keyDown, keyDown)
	if m.Offset != 1 {
		t.Errorf("Offset = %d, want 1", m.Offset)
	}
}

func TestPickModelView(t *testing.T) {
	view := NewPickModel(pickTools()).View()
	for _, want := range []string{"Select Tools", "T10", "PH2", "old", "[1/3]", "2 enabled"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestPickOutput(t *testing.T) {
	tests := []struct {
		catalog, output, want string
	}{
		{"tools.csv", "", "tools.csv"},
		{"tools.CSV", "", "tools.CSV"},
		{"tools.yaml", "", "tools.csv"},
		{"tools.yaml", "picked.csv", "picked.csv"},
	}
	for _, tt := range tests {
		if got := pickOutput(tt.catalog, tt.output); got != tt.want {
			t.Errorf("pickOutput(%q, %q) = %q, want %q", tt.catalog, tt.output, got, tt.want)
		}
	}
}

func TestWriteCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "picked.csv")
	if err := writeCatalog(path, nil, pickTools()); err != nil {
		t.Fatalf("writeCatalog() error = %v", err)
	}
	all, err := catalog.LoadAll(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[2].Enabled {
		t.Errorf("LoadAll() = %+v, want 3 rows with the last disabled", all)
	}
	enabled, err := catalog.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(enabled) != 2 {
		t.Errorf("Load() = %d tools, want 2", len(enabled))
	}
}

func TestWriteCatalogKeepsSourceText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tools.csv")
	src := "name,row,col,handle_d_mm,shaft_d_mm,enabled,note\n" +
		"T10,0,0,18,5,true,torx\n" +
		"Spare,1,x,tbd,,0,on order\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	tools, err := catalog.LoadAll(path)
	if err != nil {
		t.Fatal(err)
	}
	table, err := catalog.LoadTable(path)
	if err != nil {
		t.Fatal(err)
	}

	// Disable T10; Spare stays disabled.
	tools[0].Enabled = false
	if err := writeCatalog(path, table, tools); err != nil {
		t.Fatalf("writeCatalog() error = %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "name,row,col,handle_d_mm,shaft_d_mm,enabled,note\n" +
		"T10,0,0,18,5,0,torx\n" +
		"Spare,1,x,tbd,,0,on order\n"
	if string(got) != want {
		t.Errorf("written catalog =\n%s\nwant\n%s", got, want)
	}
}
