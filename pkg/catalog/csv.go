package catalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/toolrack/pkg/errors"
	"github.com/matzehuels/toolrack/pkg/tool"
)

// Reader decodes a catalog stream.
type Reader func(r io.Reader, opts Options) ([]tool.Tool, error)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV decodes a CSV catalog. The first record is the header. Error
// messages carry the 1-based line number as an editor shows it.
func ReadCSV(r io.Reader, opts Options) ([]tool.Tool, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "CSV must include a header row")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "read CSV header")
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "CSV missing required columns: %s", strings.Join(missing, ", ")).
			With("missing", missing)
	}

	field := func(rec []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var tools []tool.Tool
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "read CSV record")
		}
		line, _ := cr.FieldPos(0)
		if isBlank(rec) {
			continue
		}

		enabled := ParseBool(field(rec, ColEnabled))
		if !enabled && !opts.IncludeDisabled {
			continue
		}

		t := tool.Tool{
			Name:    strings.TrimSpace(field(rec, ColName)),
			Enabled: enabled,
			Line:    line,
		}
		p := numberParser{line: line, lenient: !enabled}
		t.Row = p.int(ColRow, field(rec, ColRow))
		t.Col = p.int(ColCol, field(rec, ColCol))
		t.HandleDiameter = p.float(ColHandle, field(rec, ColHandle))
		t.ShaftDiameter = p.float(ColShaft, field(rec, ColShaft))
		if p.err != nil {
			return nil, p.err
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// numberParser records the first malformed field of a record.
type numberParser struct {
	line    int
	lenient bool
	err     error
}

func (p *numberParser) int(col, raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		p.fail(col, raw, "integer")
	}
	return v
}

func (p *numberParser) float(col, raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		p.fail(col, raw, "number")
	}
	return v
}

func (p *numberParser) fail(col, raw, want string) {
	if p.lenient || p.err != nil {
		return
	}
	p.err = errors.New(errors.ErrCodeInvalidCatalog, "line %d: column %s: %q is not a valid %s", p.line, col, raw, want).
		With("line", p.line).With("column", col).With("value", raw)
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Write encodes tools as a CSV catalog with an enabled column.
func Write(w io.Writer, tools []tool.Tool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColName, ColRow, ColCol, ColHandle, ColShaft, ColEnabled}); err != nil {
		return err
	}
	for _, t := range tools {
		enabled := "1"
		if !t.Enabled {
			enabled = "0"
		}
		rec := []string{
			t.Name,
			strconv.Itoa(t.Row),
			strconv.Itoa(t.Col),
			strconv.FormatFloat(t.HandleDiameter, 'g', -1, 64),
			strconv.FormatFloat(t.ShaftDiameter, 'g', -1, 64),
			enabled,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
