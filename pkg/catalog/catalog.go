// Package catalog reads and writes tool descriptor files.
//
// Two encodings are supported:
//
//   - CSV (.csv): a header row naming at least name,row,col,handle_d_mm and
//     shaft_d_mm, plus an optional enabled column. A UTF-8 byte order mark
//     is tolerated.
//   - YAML (.yaml, .yml): a document with a tools list whose entries use the
//     same keys.
//
// Only enabled descriptors are returned by the readers. Disabled rows are
// skipped before their numeric fields are parsed, so a disabled row may hold
// placeholder values. [Table] keeps a CSV catalog as text so it can be
// rewritten without losing those values.
package catalog

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/toolrack/pkg/errors"
	"github.com/matzehuels/toolrack/pkg/tool"
)

// Column names used by both encodings.
const (
	ColName    = "name"
	ColRow     = "row"
	ColCol     = "col"
	ColHandle  = "handle_d_mm"
	ColShaft   = "shaft_d_mm"
	ColEnabled = "enabled"
)

// RequiredColumns lists the columns every CSV catalog must have.
var RequiredColumns = []string{ColName, ColRow, ColCol, ColHandle, ColShaft}

// Load reads a catalog file, dispatching on its extension.
func Load(path string) ([]tool.Tool, error) {
	read, err := readerFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "catalog not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "open catalog %q", path)
	}
	defer f.Close()
	return read(f, Options{})
}

// LoadAll reads a catalog file including disabled descriptors. Used by the
// interactive picker, which needs to show and toggle every row.
func LoadAll(path string) ([]tool.Tool, error) {
	read, err := readerFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "catalog not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "open catalog %q", path)
	}
	defer f.Close()
	return read(f, Options{IncludeDisabled: true})
}

func readerFor(path string) (Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV, nil
	case ".yaml", ".yml":
		return ReadYAML, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidCatalog, "unsupported catalog file %q (want .csv, .yaml or .yml)", path)
}

// Options controls catalog decoding.
type Options struct {
	// IncludeDisabled keeps disabled descriptors in the result. Their numeric
	// fields are parsed leniently: malformed values are left at zero.
	IncludeDisabled bool
}

// ParseBool interprets an enabled cell. Blank means enabled; only "0",
// "false", "False" and "FALSE" (after trimming) mean disabled.
func ParseBool(s string) bool {
	switch strings.TrimSpace(s) {
	case "0", "false", "False", "FALSE":
		return false
	}
	return true
}
