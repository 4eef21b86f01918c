// Package layout computes the holder's grid from tool descriptors.
//
// The grid is sized per column and per row by the largest handle it holds:
// a column is as wide as its widest handle plus the larger of handle_x_pad and
// min_web, and a row is as deep as its largest handle plus the larger of
// handle_y_pad and min_web. Empty indices between occupied ones are kept at
// min_web so the grid stays dense.
//
// Coordinates have their origin at the front-left corner of the footprint,
// with X running across columns and Y running from the front row to the back.
//
// [Compute] is pure: it never mutates its inputs and the same inputs always
// produce the same Grid.
package layout

import (
	"github.com/matzehuels/toolrack/pkg/params"
	"github.com/matzehuels/toolrack/pkg/tool"
)

// Point is a position in the XY footprint plane, in millimetres.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Grid is the computed footprint of a holder.
type Grid struct {
	ColWidths map[int]float64     `json:"col_widths"`
	RowDepths map[int]float64     `json:"row_depths"`
	Centers   map[tool.Cell]Point `json:"-"`
	PartWidth float64             `json:"part_width"`
	PartDepth float64             `json:"part_depth"`
	MaxRow    int                 `json:"max_row"`
	MaxCol    int                 `json:"max_col"`

	marginX float64
	marginY float64
}

// Compute lays out the enabled tools. Disabled descriptors are ignored. With
// no enabled tools the result has MaxRow and MaxCol of -1 and a footprint made
// of the margins alone.
func Compute(tools []tool.Tool, p params.Set) Grid {
	colMax := make(map[int]float64)
	rowMax := make(map[int]float64)
	g := Grid{
		ColWidths: make(map[int]float64),
		RowDepths: make(map[int]float64),
		Centers:   make(map[tool.Cell]Point),
		MaxRow:    -1,
		MaxCol:    -1,
		marginX:   p.EdgeMarginX,
		marginY:   p.EdgeMarginY,
	}

	enabled := tool.Enabled(tools)
	for _, t := range enabled {
		colMax[t.Col] = max(colMax[t.Col], t.HandleDiameter)
		rowMax[t.Row] = max(rowMax[t.Row], t.HandleDiameter)
		g.MaxCol = max(g.MaxCol, t.Col)
		g.MaxRow = max(g.MaxRow, t.Row)
	}

	for c := 0; c <= g.MaxCol; c++ {
		g.ColWidths[c] = cellSize(colMax, c, p.HandleXPad, p.MinWeb)
	}
	for r := 0; r <= g.MaxRow; r++ {
		g.RowDepths[r] = cellSize(rowMax, r, p.HandleYPad, p.MinWeb)
	}

	for _, t := range enabled {
		g.Centers[t.Cell()] = Point{
			X: g.ColStart(t.Col) + g.ColWidths[t.Col]/2,
			Y: g.RowStart(t.Row) + g.RowDepths[t.Row]/2,
		}
	}

	g.PartWidth = 2*p.EdgeMarginX + sumTo(g.ColWidths, g.MaxCol+1)
	g.PartDepth = 2*p.EdgeMarginY + sumTo(g.RowDepths, g.MaxRow+1)
	return g
}

func cellSize(maxHandle map[int]float64, i int, pad, minWeb float64) float64 {
	h, ok := maxHandle[i]
	if !ok {
		return minWeb
	}
	return max(h+pad, h+minWeb)
}

// sumTo adds sizes[0..n) in ascending index order.
func sumTo(sizes map[int]float64, n int) float64 {
	var s float64
	for i := 0; i < n; i++ {
		s += sizes[i]
	}
	return s
}

// ColStart returns the X coordinate of the left edge of column c.
func (g Grid) ColStart(c int) float64 {
	return g.marginX + sumTo(g.ColWidths, c)
}

// RowStart returns the Y coordinate of the front edge of row r.
func (g Grid) RowStart(r int) float64 {
	return g.marginY + sumTo(g.RowDepths, r)
}

// RowEnd returns the Y coordinate of the back edge of row r.
func (g Grid) RowEnd(r int) float64 {
	return g.RowStart(r) + g.RowDepths[r]
}

// Rows returns the number of rows in the grid.
func (g Grid) Rows() int { return g.MaxRow + 1 }

// Cols returns the number of columns in the grid.
func (g Grid) Cols() int { return g.MaxCol + 1 }

// Empty reports whether the grid holds no tools.
func (g Grid) Empty() bool { return g.MaxRow < 0 || g.MaxCol < 0 }

// Center returns the hole center of cell c.
func (g Grid) Center(c tool.Cell) (Point, bool) {
	pt, ok := g.Centers[c]
	return pt, ok
}

// CenterList is a JSON-friendly rendering of Centers.
type CenterList []CellCenter

// CellCenter pairs a cell with its hole center.
type CellCenter struct {
	tool.Cell
	Point
}

// CenterList returns the occupied cells' centers in row-major order.
func (g Grid) CenterList() CenterList {
	out := make(CenterList, 0, len(g.Centers))
	for r := 0; r <= g.MaxRow; r++ {
		for c := 0; c <= g.MaxCol; c++ {
			cell := tool.Cell{Row: r, Col: c}
			if pt, ok := g.Centers[cell]; ok {
				out = append(out, CellCenter{Cell: cell, Point: pt})
			}
		}
	}
	return out
}
