// Package tool defines the tool descriptor shared by every pipeline stage.
//
// A [Tool] is one screwdriver (or similar hand tool) placed in the holder's
// grid. Descriptors are produced once by the catalog reader and treated as
// immutable afterwards; the layout engine, validator and model builder only
// ever read them.
package tool

import (
	"cmp"
	"slices"
)

// Tool describes one tool to be seated in the holder.
type Tool struct {
	Name           string  `json:"name" yaml:"name"`
	Row            int     `json:"row" yaml:"row"`
	Col            int     `json:"col" yaml:"col"`
	HandleDiameter float64 `json:"handle_d_mm" yaml:"handle_d_mm"`
	ShaftDiameter  float64 `json:"shaft_d_mm" yaml:"shaft_d_mm"`
	Enabled        bool    `json:"enabled" yaml:"enabled"`

	// Line is the source line (CSV) or list index (YAML) the descriptor came
	// from. Zero when the tool was constructed in code.
	Line int `json:"-" yaml:"-"`
}

// Cell returns the tool's grid position.
func (t Tool) Cell() Cell {
	return Cell{Row: t.Row, Col: t.Col}
}

// Cell is a (row, column) grid position. Row 0 is the front row.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Less orders cells row-major.
func (c Cell) Less(o Cell) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

// Enabled returns the enabled tools in their original order.
func Enabled(tools []Tool) []Tool {
	out := make([]Tool, 0, len(tools))
	for _, t := range tools {
		if t.Enabled {
			out = append(out, t)
		}
	}
	return out
}

// ByRow groups tools by row. The returned row indices are ascending and the
// tools within a row keep their input order.
func ByRow(tools []Tool) ([]int, map[int][]Tool) {
	groups := make(map[int][]Tool)
	for _, t := range tools {
		groups[t.Row] = append(groups[t.Row], t)
	}
	rows := make([]int, 0, len(groups))
	for r := range groups {
		rows = append(rows, r)
	}
	slices.Sort(rows)
	return rows, groups
}

// SortByCell returns a copy of tools ordered row-major by cell.
func SortByCell(tools []Tool) []Tool {
	out := slices.Clone(tools)
	slices.SortStableFunc(out, func(a, b Tool) int {
		if c := cmp.Compare(a.Row, b.Row); c != 0 {
			return c
		}
		return cmp.Compare(a.Col, b.Col)
	})
	return out
}
