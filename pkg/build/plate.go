package build

import (
	"github.com/matzehuels/toolrack/pkg/cad"
	"github.com/matzehuels/toolrack/pkg/layout"
	"github.com/matzehuels/toolrack/pkg/params"
	"github.com/matzehuels/toolrack/pkg/tool"
)

// Plate describes the wall-mounting back plate. It stands behind the holder
// on the plane y = FrontY and extends Thickness toward the wall (+Y). Sketch
// coordinates on that plane are (X, Z).
type Plate struct {
	FrontY      float64 `json:"front_y"`
	Thickness   float64 `json:"thickness"`
	MinX        float64 `json:"min_x"`
	MaxX        float64 `json:"max_x"`
	Height      float64 `json:"height"`
	StackHeight float64 `json:"stack_height"`
	Wing        float64 `json:"wing"`

	// Holes are the mount hole centers: bottom-left, bottom-right, top-left,
	// top-right.
	Holes [4]cad.Vec2 `json:"holes"`
}

// BackY returns the Y coordinate of the face that rests against the wall.
func (p Plate) BackY() float64 { return p.FrontY + p.Thickness }

// Width returns the plate width including both wings.
func (p Plate) Width() float64 { return p.MaxX - p.MinX }

// PlateExtents computes the back plate for a grid. The plate is as tall as
// the stepped stack plus one base thickness and overhangs the holder by
// mount_wing_extension on each side.
func PlateExtents(g layout.Grid, p params.Set) Plate {
	stack := StackHeight(g, p)
	height := stack + p.BaseThickness
	wing := p.MountWingExtension
	ox, oy := p.MountHoleEdgeOffsetX, p.MountHoleEdgeOffsetY
	left, right := -wing+ox, g.PartWidth+wing-ox
	return Plate{
		FrontY:      g.PartDepth,
		Thickness:   p.MountPlateThickness,
		MinX:        -wing,
		MaxX:        g.PartWidth + wing,
		Height:      height,
		StackHeight: stack,
		Wing:        wing,
		Holes: [4]cad.Vec2{
			{U: left, V: oy},
			{U: right, V: oy},
			{U: left, V: height - oy},
			{U: right, V: height - oy},
		},
	}
}

// StackHeight returns the top of the highest tier.
func StackHeight(g layout.Grid, p params.Set) float64 {
	return p.BaseThickness + float64(max(g.MaxRow, 0))*p.RowZStep
}

// RowTop returns the platform height of a row.
func RowTop(row int, p params.Set) float64 {
	return p.BaseThickness + float64(row)*p.RowZStep
}

// LabelPosition returns where a tool's label is anchored: text_y_dist in
// front of the handle, clamped to stay min_web inside the tool's row. The
// second result reports whether clamping moved it.
func LabelPosition(g layout.Grid, t tool.Tool, p params.Set) (layout.Point, bool) {
	c := g.Centers[t.Cell()]
	y := c.Y - (t.HandleDiameter/2 + p.TextYDist)
	lo := g.RowStart(t.Row) + p.MinWeb
	hi := g.RowEnd(t.Row) - p.MinWeb
	clamped := min(max(y, lo), hi)
	return layout.Point{X: c.X, Y: clamped}, clamped != y
}
