package catalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/toolrack/pkg/errors"
	"github.com/matzehuels/toolrack/pkg/tool"
)

// Table is a CSV catalog held as text. Rewriting a Table changes only the
// enabled cells that were toggled; every other cell, extra columns and rows
// the readers skip are written back as they were read.
type Table struct {
	Header []string
	Rows   []TableRow

	bom     bool
	enabled int // index of the enabled column, -1 when absent
}

// TableRow is one record and the line it started on.
type TableRow struct {
	Line   int
	Fields []string
}

// ReadTable reads a CSV catalog without interpreting its values. Only the
// header is checked.
func ReadTable(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	t := &Table{enabled: -1}
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
		t.bom = true
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "CSV must include a header row")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "read CSV header")
	}
	t.Header = header
	for i, h := range header {
		if strings.TrimSpace(h) == ColEnabled {
			t.enabled = i
		}
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "read CSV record")
		}
		line, _ := cr.FieldPos(0)
		t.Rows = append(t.Rows, TableRow{Line: line, Fields: rec})
	}
	return t, nil
}

// LoadTable reads a CSV catalog file as a Table.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "catalog not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "open catalog %q", path)
	}
	defer f.Close()
	return ReadTable(f)
}

// SetEnabled sets the enabled cell of the row starting on line. A cell that
// already reads as the wanted state keeps its spelling. A missing enabled
// column is appended, blank for rows that stay enabled. It reports whether a
// row starts on line.
func (t *Table) SetEnabled(line int, enabled bool) bool {
	for i := range t.Rows {
		row := &t.Rows[i]
		if row.Line != line {
			continue
		}
		col := t.enabledColumn()
		for len(row.Fields) <= col {
			row.Fields = append(row.Fields, "")
		}
		if ParseBool(row.Fields[col]) != enabled {
			if enabled {
				row.Fields[col] = "1"
			} else {
				row.Fields[col] = "0"
			}
		}
		return true
	}
	return false
}

func (t *Table) enabledColumn() int {
	if t.enabled < 0 {
		t.Header = append(t.Header, ColEnabled)
		t.enabled = len(t.Header) - 1
	}
	return t.enabled
}

// Apply copies the enabled state of tools read from the same file onto their
// rows, matching them by line.
func (t *Table) Apply(tools []tool.Tool) {
	for _, tl := range tools {
		if tl.Line > 0 {
			t.SetEnabled(tl.Line, tl.Enabled)
		}
	}
}

// Write encodes the table as CSV.
func (t *Table) Write(w io.Writer) error {
	if t.bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row.Fields); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
