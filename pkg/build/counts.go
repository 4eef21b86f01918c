package build

import "github.com/matzehuels/toolrack/pkg/cad"

// Counts summarises a recorded plan.
type Counts struct {
	Planes      int `json:"planes"`
	Sketches    int `json:"sketches"`
	Rectangles  int `json:"rectangles"`
	Circles     int `json:"circles"`
	Texts       int `json:"texts"`
	NewBodies   int `json:"new_bodies"`
	Joins       int `json:"joins"`
	Emboss      int `json:"emboss"`
	Cuts        int `json:"cuts"`
	ThroughCuts int `json:"through_cuts"`
	DepthCuts   int `json:"depth_cuts"`
	Chamfers    int `json:"chamfers"`
	EdgeQueries int `json:"edge_queries"`
	Total       int `json:"total"`
}

// BodyExtrudes returns the extrudes that add solid (new body and joins,
// excluding label embossing).
func (c Counts) BodyExtrudes() int { return c.NewBodies + c.Joins }

// CountOps tallies ops by kind and mode. Join extrudes issued by the label
// step are counted as Emboss rather than Joins.
func CountOps(ops []cad.Op) Counts {
	var c Counts
	for _, op := range ops {
		c.Total++
		switch op.Kind {
		case cad.OpOffsetPlane:
			c.Planes++
		case cad.OpSketch:
			c.Sketches++
		case cad.OpRectangle:
			c.Rectangles++
		case cad.OpCircle:
			c.Circles++
		case cad.OpText:
			c.Texts++
		case cad.OpChamfer:
			c.Chamfers++
		case cad.OpEdges:
			c.EdgeQueries++
		case cad.OpExtrude:
			switch cad.ExtrudeMode(op.Mode) {
			case cad.ExtrudeNew:
				c.NewBodies++
			case cad.ExtrudeJoin:
				if op.Step == StepLabels {
					c.Emboss++
				} else {
					c.Joins++
				}
			case cad.ExtrudeCutThrough:
				c.Cuts++
				c.ThroughCuts++
			case cad.ExtrudeCutToDepth:
				c.Cuts++
				c.DepthCuts++
			}
		}
	}
	return c
}
