package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/toolrack/pkg/params"
)

func TestWriteDefaultParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.toml")
	if err := writeDefaultParams(path, false); err != nil {
		t.Fatalf("writeDefaultParams() error = %v", err)
	}
	got, err := params.Load(path)
	if err != nil {
		t.Fatalf("params.Load() error = %v", err)
	}
	if got != params.Defaults() {
		t.Errorf("round-tripped params = %+v, want defaults", got)
	}

	err = writeDefaultParams(path, false)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second write error = %v, want already exists", err)
	}
	if err := writeDefaultParams(path, true); err != nil {
		t.Errorf("forced write error = %v", err)
	}
}

func TestParamsCommandInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.toml")
	if err := runRoot(t, "params", "--init", path); err != nil {
		t.Fatalf("params --init error = %v", err)
	}
	if _, err := params.Load(path); err != nil {
		t.Errorf("written file does not load: %v", err)
	}
}

func TestParamsTable(t *testing.T) {
	out := paramsTable(params.Definitions())
	for _, want := range []string{"Parameter", "handle_x_pad", "6 mm", "csk_angle", "90 deg", "counterbore"} {
		if !strings.Contains(out, want) {
			t.Errorf("paramsTable() missing %q", want)
		}
	}
}
