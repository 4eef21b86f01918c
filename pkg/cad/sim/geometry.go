package sim

import (
	"math"
	"slices"

	"github.com/matzehuels/toolrack/pkg/cad"
)

const eps = 1e-6

type vec [3]float64

func (a vec) add(b vec) vec       { return vec{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a vec) scale(s float64) vec { return vec{a[0] * s, a[1] * s, a[2] * s} }
func (a vec) cad() cad.Vec3       { return cad.Vec3{X: a[0], Y: a[1], Z: a[2]} }

// axisOf returns the index and sign of an axis-aligned unit vector.
func axisOf(n vec) (int, float64) {
	for i, c := range n {
		if c != 0 {
			return i, math.Copysign(1, c)
		}
	}
	return 2, 1
}

// perp returns the two axis indices perpendicular to axis a.
func perp(a int) (int, int) {
	switch a {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

// plane is an axis-aligned sketch plane: a point maps to origin + u*U + v*V,
// and extrusions run along N.
type plane struct {
	origin vec
	u, v   vec
	n      vec
}

func (p plane) at(uv cad.Vec2) vec {
	return p.origin.add(p.u.scale(uv.U)).add(p.v.scale(uv.V))
}

// box is an axis-aligned solid.
type box struct {
	min, max vec
}

func newBox(a, b vec) box {
	var out box
	for i := range 3 {
		out.min[i] = math.Min(a[i], b[i])
		out.max[i] = math.Max(a[i], b[i])
	}
	return out
}

func (b box) contains(q vec) bool {
	for i := range 3 {
		if q[i] < b.min[i]-eps || q[i] > b.max[i]+eps {
			return false
		}
	}
	return true
}

// cylinder is an axis-aligned cut. center holds the coordinates on the two
// perpendicular axes (in perp order); lo and hi bound the axial range and may
// be infinite for through-all cuts.
type cylinder struct {
	axis   int
	center [2]float64
	radius float64
	lo, hi float64
}

// strictlyContains reports whether q lies inside the cut volume.
func (c cylinder) strictlyContains(q vec) bool {
	if q[c.axis] <= c.lo+eps || q[c.axis] >= c.hi-eps {
		return false
	}
	p1, p2 := perp(c.axis)
	d := math.Hypot(q[p1]-c.center[0], q[p2]-c.center[1])
	return d < c.radius-eps
}

func (c cylinder) point(t float64) vec {
	var q vec
	p1, p2 := perp(c.axis)
	q[c.axis] = t
	q[p1] = c.center[0]
	q[p2] = c.center[1]
	return q
}

// chamfer records a chamfer applied to the circular edge of cylinder cyl at
// axial position t. into is +1 or -1: the axial direction from t into the
// material along the wall.
type chamfer struct {
	cyl   int
	t     float64
	into  float64
	width float64
	depth float64
}

// edgeRec is a derived edge with enough context to chamfer it.
type edgeRec struct {
	cad.Edge
	cyl     int
	t       float64
	into    float64
	derived bool
}

// solid is the geometric content of one body.
type solid struct {
	boxes    []box
	cuts     []cylinder
	chamfers []chamfer
}

func (s *solid) material(q vec, skip int) bool {
	in := false
	for _, b := range s.boxes {
		if b.contains(q) {
			in = true
			break
		}
	}
	if !in {
		return false
	}
	for i, c := range s.cuts {
		if i != skip && c.strictlyContains(q) {
			return false
		}
	}
	return true
}

func (s *solid) bounds() (vec, vec, bool) {
	if len(s.boxes) == 0 {
		return vec{}, vec{}, false
	}
	lo, hi := s.boxes[0].min, s.boxes[0].max
	for _, b := range s.boxes[1:] {
		for i := range 3 {
			lo[i] = math.Min(lo[i], b.min[i])
			hi[i] = math.Max(hi[i], b.max[i])
		}
	}
	return lo, hi, true
}

// wallMaterial reports whether there is material just outside the wall of
// cut i at axial position t, sampling four directions around the axis.
func (s *solid) wallMaterial(i int, t float64) bool {
	c := s.cuts[i]
	p1, p2 := perp(c.axis)
	r := c.radius + 10*eps
	for _, d := range [][2]float64{{r, 0}, {-r, 0}, {0, r}, {0, -r}} {
		q := c.point(t)
		q[p1] += d[0]
		q[p2] += d[1]
		if s.material(q, i) {
			return true
		}
	}
	return false
}

// circularEdges derives the circular edges along the wall of cut i. The
// wall's material status is evaluated between consecutive breakpoints; every
// status change (including at the ends of the cut) is an edge.
func (s *solid) circularEdges(i int) []edgeRec {
	c := s.cuts[i]
	lo, hi, ok := s.bounds()
	if !ok {
		return nil
	}
	a := c.axis
	from := math.Max(c.lo, lo[a])
	to := math.Min(c.hi, hi[a])
	if to-from <= eps {
		return nil
	}

	breaks := []float64{from, to}
	for _, b := range s.boxes {
		breaks = append(breaks, b.min[a], b.max[a])
	}
	for j, o := range s.cuts {
		if j == i {
			continue
		}
		if o.axis == a {
			breaks = append(breaks, o.lo, o.hi)
			continue
		}
		center := o.center[0]
		if p1, _ := perp(o.axis); p1 != a {
			center = o.center[1]
		}
		breaks = append(breaks, center-o.radius, center+o.radius)
	}
	breaks = slices.DeleteFunc(breaks, func(t float64) bool {
		return math.IsInf(t, 0) || t < from-eps || t > to+eps
	})
	slices.Sort(breaks)
	breaks = slices.CompactFunc(breaks, func(x, y float64) bool { return math.Abs(x-y) <= eps })

	var out []edgeRec
	prev := false
	for k := 0; k < len(breaks); k++ {
		cur := false
		if k+1 < len(breaks) {
			cur = s.wallMaterial(i, (breaks[k]+breaks[k+1])/2)
		}
		if cur != prev {
			into := 1.0
			if prev {
				into = -1
			}
			out = append(out, s.expandChamfer(i, edgeRec{
				Edge: cad.Edge{Circular: true, Center: c.point(breaks[k]).cad(), Radius: c.radius},
				cyl:  i,
				t:    breaks[k],
				into: into,
			})...)
		}
		prev = cur
	}
	return out
}

// expandChamfer replaces a chamfered edge by the chamfer's two boundary
// circles: one on the face at radius r+width, one down the wall at depth.
func (s *solid) expandChamfer(i int, e edgeRec) []edgeRec {
	for _, ch := range s.chamfers {
		if ch.cyl != i || math.Abs(ch.t-e.t) > eps {
			continue
		}
		c := s.cuts[i]
		face := e
		face.Radius = c.radius + ch.width
		face.derived = true
		wall := e
		wall.t = e.t + ch.into*ch.depth
		wall.Center = c.point(wall.t).cad()
		wall.derived = true
		return []edgeRec{face, wall}
	}
	return []edgeRec{e}
}

// boxEdges returns the twelve straight edges of every box, reported by their
// midpoints.
func (s *solid) boxEdges() []edgeRec {
	var out []edgeRec
	for _, b := range s.boxes {
		for a := range 3 {
			p1, p2 := perp(a)
			for _, u := range []float64{b.min[p1], b.max[p1]} {
				for _, v := range []float64{b.min[p2], b.max[p2]} {
					var mid vec
					mid[a] = (b.min[a] + b.max[a]) / 2
					mid[p1] = u
					mid[p2] = v
					out = append(out, edgeRec{Edge: cad.Edge{Center: mid.cad()}, cyl: -1, derived: true})
				}
			}
		}
	}
	return out
}

// edges derives every edge of the solid: circular edges per cut in creation
// order, then straight box edges.
func (s *solid) edges() []edgeRec {
	var out []edgeRec
	for i := range s.cuts {
		out = append(out, s.circularEdges(i)...)
	}
	return append(out, s.boxEdges()...)
}
