package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/toolrack/pkg/errors"
	"github.com/matzehuels/toolrack/pkg/tool"
)

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"  ", true},
		{"1", true},
		{"yes", true},
		{"true", true},
		{"no", true},
		{"0", false},
		{" 0 ", false},
		{"false", false},
		{"False", false},
		{"FALSE", false},
		{"fAlSe", true},
	}
	for _, tt := range tests {
		if got := ParseBool(tt.in); got != tt.want {
			t.Errorf("ParseBool(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestReadCSV(t *testing.T) {
	src := "\xEF\xBB\xBFname,row,col,handle_d_mm,shaft_d_mm,enabled\n" +
		"T10,0,0,18,5,\n" +
		"Broken,x,y,z,w,0\n" +
		"PH2, 1 ,0,22,6.4,1\n"
	tools, err := ReadCSV(strings.NewReader(src), Options{})
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("len(tools) = %d, want 2", len(tools))
	}
	want := tool.Tool{Name: "PH2", Row: 1, Col: 0, HandleDiameter: 22, ShaftDiameter: 6.4, Enabled: true, Line: 4}
	if tools[1] != want {
		t.Errorf("tools[1] = %+v, want %+v", tools[1], want)
	}
	if tools[0].Line != 2 {
		t.Errorf("tools[0].Line = %d, want 2", tools[0].Line)
	}
}

func TestReadCSVWithoutEnabledColumn(t *testing.T) {
	src := "shaft_d_mm,handle_d_mm,col,row,name\n5,18,0,0,T10\n"
	tools, err := ReadCSV(strings.NewReader(src), Options{})
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(tools) != 1 || !tools[0].Enabled || tools[0].ShaftDiameter != 5 {
		t.Errorf("ReadCSV() = %+v", tools)
	}
}

func TestReadCSVIncludeDisabled(t *testing.T) {
	src := "name,row,col,handle_d_mm,shaft_d_mm,enabled\nOld,?,0,20,5,false\nT10,0,0,18,5,\n"
	tools, err := ReadCSV(strings.NewReader(src), Options{IncludeDisabled: true})
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(tools) != 2 || tools[0].Enabled || tools[0].Row != 0 {
		t.Errorf("ReadCSV(IncludeDisabled) = %+v", tools)
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{"empty", "", "header row"},
		{"missing columns", "name,row\nT10,0\n", "missing required columns: col, handle_d_mm, shaft_d_mm"},
		{"bad number", "name,row,col,handle_d_mm,shaft_d_mm\nT10,0,0,eighteen,5\n", "line 2: column handle_d_mm"},
		{"bad int", "name,row,col,handle_d_mm,shaft_d_mm\nT10,0,0,18,5\nPH2,1.5,0,22,6\n", "line 3: column row"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.src), Options{})
			if !errors.Is(err, errors.ErrCodeInvalidCatalog) {
				t.Fatalf("ReadCSV() error = %v, want %s", err, errors.ErrCodeInvalidCatalog)
			}
			if !errors.IsInput(err) {
				t.Errorf("IsInput(%v) = false", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestReadYAML(t *testing.T) {
	src := `
tools:
  - name: T10
    row: 0
    col: 0
    handle_d_mm: 18
    shaft_d_mm: 5
  - name: Old
    enabled: false
  - name: PH2
    row: 1
    col: 0
    handle_d_mm: 22
    shaft_d_mm: 6.4
    enabled: true
`
	tools, err := ReadYAML(strings.NewReader(src), Options{})
	if err != nil {
		t.Fatalf("ReadYAML() error = %v", err)
	}
	if len(tools) != 2 || tools[0].Name != "T10" || tools[1].ShaftDiameter != 6.4 {
		t.Errorf("ReadYAML() = %+v", tools)
	}
	if tools[1].Line != 3 {
		t.Errorf("tools[1].Line = %d, want 3", tools[1].Line)
	}
}

func TestReadYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown key", "tools:\n  - name: T10\n    colour: red\n"},
		{"missing keys", "tools:\n  - name: T10\n    row: 0\n"},
		{"wrong type", "tools:\n  - name: T10\n    row: front\n    col: 0\n    handle_d_mm: 1\n    shaft_d_mm: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadYAML(strings.NewReader(tt.src), Options{})
			if !errors.Is(err, errors.ErrCodeInvalidCatalog) {
				t.Errorf("ReadYAML() error = %v, want %s", err, errors.ErrCodeInvalidCatalog)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.csv"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}

	_, err = Load(filepath.Join(dir, "tools.json"))
	if !errors.Is(err, errors.ErrCodeInvalidCatalog) {
		t.Errorf("Load(.json) error = %v, want %s", err, errors.ErrCodeInvalidCatalog)
	}

	path := filepath.Join(dir, "tools.CSV")
	if err := os.WriteFile(path, []byte("name,row,col,handle_d_mm,shaft_d_mm\nT10,0,0,18,5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tools, err := Load(path)
	if err != nil || len(tools) != 1 {
		t.Errorf("Load() = %v, %v", tools, err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	in := []tool.Tool{
		{Name: "T10", Row: 0, Col: 0, HandleDiameter: 18, ShaftDiameter: 5, Enabled: true},
		{Name: "Old, worn", Row: 0, Col: 1, HandleDiameter: 20.5, ShaftDiameter: 4, Enabled: false},
	}
	var buf bytes.Buffer
	if err := Write(&buf, in); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out, err := ReadCSV(&buf, Options{IncludeDisabled: true})
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	for i := range in {
		got := out[i]
		got.Line = 0
		if got != in[i] {
			t.Errorf("out[%d] = %+v, want %+v", i, got, in[i])
		}
	}
}

func TestTableRoundTripKeepsPlaceholders(t *testing.T) {
	src := "name,row,col,handle_d_mm,shaft_d_mm,enabled\n" +
		"T10,0,0,18,5,1\n" +
		"Spare,1,x,tbd,,0\n"
	tools, err := ReadCSV(strings.NewReader(src), Options{IncludeDisabled: true})
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	table, err := ReadTable(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	table.Apply(tools)

	var buf bytes.Buffer
	if err := table.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if buf.String() != src {
		t.Errorf("Write() = %q, want %q", buf.String(), src)
	}
}

func TestTableSetEnabled(t *testing.T) {
	src := "\xEF\xBB\xBFname,row,col,handle_d_mm,shaft_d_mm\n" +
		"T10,0,0,18,5\n" +
		"PH2,1,0,22,6.4\n"
	table, err := ReadTable(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if !table.SetEnabled(3, false) {
		t.Fatal("SetEnabled(3) found no row")
	}
	if table.SetEnabled(9, false) {
		t.Error("SetEnabled(9) = true for a missing line")
	}

	var buf bytes.Buffer
	if err := table.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	want := "\xEF\xBB\xBFname,row,col,handle_d_mm,shaft_d_mm,enabled\n" +
		"T10,0,0,18,5\n" +
		"PH2,1,0,22,6.4,0\n"
	if buf.String() != want {
		t.Errorf("Write() = %q, want %q", buf.String(), want)
	}

	tools, err := ReadCSV(strings.NewReader(buf.String()), Options{})
	if err != nil {
		t.Fatalf("ReadCSV(rewritten) error = %v", err)
	}
	if len(tools) != 1 || tools[0].Name != "T10" {
		t.Errorf("enabled tools = %+v, want only T10", tools)
	}
}

func TestTableKeepsSpelling(t *testing.T) {
	src := "name,row,col,handle_d_mm,shaft_d_mm,enabled\nT10,0,0,18,5,FALSE\n"
	table, err := ReadTable(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	table.SetEnabled(2, false)
	var buf bytes.Buffer
	if err := table.Write(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != src {
		t.Errorf("Write() = %q, want unchanged %q", buf.String(), src)
	}
}

func TestReadTableEmpty(t *testing.T) {
	if _, err := ReadTable(strings.NewReader("")); !errors.Is(err, errors.ErrCodeInvalidCatalog) {
		t.Errorf("ReadTable(empty) error = %v, want %s", err, errors.ErrCodeInvalidCatalog)
	}
}
