package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/toolrack/pkg/build"
	"github.com/matzehuels/toolrack/pkg/layout"
	"github.com/matzehuels/toolrack/pkg/params"
	"github.com/matzehuels/toolrack/pkg/tool"
)

const (
	svgScale  = 4.0  // px per mm
	svgMargin = 16.0 // px around the drawing
)

const layoutCSS = `
    .plate { fill: #e9ecef; stroke: #6c757d; stroke-width: 1; }
    .part { fill: #f8f9fa; stroke: #212529; stroke-width: 1.5; }
    .cell { fill: none; stroke: #adb5bd; stroke-width: 0.75; stroke-dasharray: 4 3; }
    .handle { fill: none; stroke: #0d6efd; stroke-width: 1; stroke-dasharray: 3 2; }
    .hole { fill: #343a40; }
    .label { text-anchor: middle; fill: #212529; }
    .label.clamped { fill: #b02a37; }`

// LayoutSVG draws the footprint from above: the back plate along the rear
// edge, one dashed cell per tool, the through hole, the handle outline and
// the label. The front of the holder is at the bottom of the image.
func LayoutSVG(g layout.Grid, tools []tool.Tool, p params.Set) []byte {
	plate := build.PlateExtents(g, p)
	v := viewport{minX: plate.MinX, maxY: plate.BackY()}
	width := plate.Width()*svgScale + 2*svgMargin
	height := plate.BackY()*svgScale + 2*svgMargin

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", layoutCSS)
	fmt.Fprintf(&buf, "  <title>%.4g x %.4g mm</title>\n", g.PartWidth, g.PartDepth)

	v.rect(&buf, "plate", plate.MinX, plate.FrontY, plate.MaxX, plate.BackY())
	v.rect(&buf, "part", 0, 0, g.PartWidth, g.PartDepth)

	for _, t := range tool.SortByCell(tool.Enabled(tools)) {
		x0, y0 := g.ColStart(t.Col), g.RowStart(t.Row)
		v.rect(&buf, "cell", x0, y0, x0+g.ColWidths[t.Col], y0+g.RowDepths[t.Row])

		c := g.Centers[t.Cell()]
		v.circle(&buf, "handle", c, t.HandleDiameter/2)
		v.circle(&buf, "hole", c, (t.ShaftDiameter+p.HoleBuffer)/2)

		pos, clamped := build.LabelPosition(g, t, p)
		class := "label"
		if clamped {
			class += " clamped"
		}
		x, y := v.pt(pos)
		fmt.Fprintf(&buf, `  <text class="%s" x="%.2f" y="%.2f" font-size="%.2f" font-family="%s, sans-serif">%s</text>`+"\n",
			class, x, y, p.TextHeight*svgScale, html.EscapeString(p.FontName), html.EscapeString(t.Name))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// viewport maps millimetre footprint coordinates to SVG pixels, flipping Y
// so the rear of the holder is at the top.
type viewport struct {
	minX, maxY float64
}

func (v viewport) pt(p layout.Point) (float64, float64) {
	return svgMargin + (p.X-v.minX)*svgScale, svgMargin + (v.maxY-p.Y)*svgScale
}

func (v viewport) rect(buf *bytes.Buffer, class string, x0, y0, x1, y1 float64) {
	x, y := v.pt(layout.Point{X: x0, Y: y1})
	fmt.Fprintf(buf, `  <rect class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
		class, x, y, (x1-x0)*svgScale, (y1-y0)*svgScale)
}

func (v viewport) circle(buf *bytes.Buffer, class string, c layout.Point, r float64) {
	x, y := v.pt(c)
	fmt.Fprintf(buf, `  <circle class="%s" cx="%.2f" cy="%.2f" r="%.2f"/>`+"\n", class, x, y, r*svgScale)
}
