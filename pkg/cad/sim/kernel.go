// Package sim is an analytic preview kernel implementing [cad.Backend].
//
// It models exactly what a holder needs: solids are unions of axis-aligned
// boxes extruded from rectangles on axis-aligned planes, cuts are
// axis-aligned cylinders extruded from circles, and text extrudes are
// recorded without adding material. Circular edges are not stored; they are
// derived on every [Kernel.Edges] call from where each cut's wall enters and
// leaves material, so chamfer lookups exercise the same re-identification a
// real kernel needs.
//
// Every modeling operation bumps a per-component generation counter. Edge IDs
// embed the generation they were issued in and are rejected with
// [cad.ErrStaleEdge] afterwards.
package sim

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/matzehuels/toolrack/pkg/cad"
)

// ErrNoComponent is returned when a modeling call precedes BeginComponent.
var ErrNoComponent = errors.New("sim: no active component")

const (
	rootXY cad.PlaneID = "root-xy"
	rootXZ cad.PlaneID = "root-xz"
)

type itemKind int

const (
	itemRect itemKind = iota
	itemCircle
	itemText
)

type sketchItem struct {
	kind   itemKind
	min    cad.Vec2
	max    cad.Vec2
	center cad.Vec2
	radius float64
	text   cad.TextSpec
}

type sketch struct {
	plane    cad.PlaneID
	items    []sketchItem
	profiles []cad.ProfileID
}

type profileRef struct {
	sketch cad.SketchID
	index  int
}

type feature struct {
	id   cad.FeatureID
	kind string
}

type component struct {
	name     string
	gen      int
	next     int
	planes   map[cad.PlaneID]plane
	sketches map[cad.SketchID]*sketch
	profiles map[cad.ProfileID]profileRef
	bodies   map[cad.BodyID]*solid
	order    []cad.BodyID
	features []feature
	texts    int
}

func newComponent(name string) *component {
	return &component{
		name: name,
		planes: map[cad.PlaneID]plane{
			rootXY: {u: vec{1, 0, 0}, v: vec{0, 1, 0}, n: vec{0, 0, 1}},
			rootXZ: {u: vec{1, 0, 0}, v: vec{0, 0, 1}, n: vec{0, 1, 0}},
		},
		sketches: make(map[cad.SketchID]*sketch),
		profiles: make(map[cad.ProfileID]profileRef),
		bodies:   make(map[cad.BodyID]*solid),
	}
}

func (c *component) mint(prefix string) string {
	c.next++
	return prefix + "-" + strconv.Itoa(c.next)
}

// Kernel is an in-memory modeling backend. It is safe for concurrent use,
// although a single build is always sequential.
type Kernel struct {
	mu         sync.Mutex
	components map[string]*component
	current    *component
}

// New returns an empty kernel.
func New() *Kernel {
	return &Kernel{components: make(map[string]*component)}
}

var _ cad.Backend = (*Kernel)(nil)

func (k *Kernel) active() (*component, error) {
	if k.current == nil {
		return nil, ErrNoComponent
	}
	return k.current, nil
}

// BeginComponent replaces any component with the same name by a fresh one.
func (k *Kernel) BeginComponent(name string) error {
	if name == "" {
		return fmt.Errorf("sim: component name is empty")
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	c := newComponent(name)
	k.components[name] = c
	k.current = c
	return nil
}

func (k *Kernel) RootPlane(o cad.Orientation) cad.PlaneID {
	if o == cad.PlaneXZ {
		return rootXZ
	}
	return rootXY
}

func (k *Kernel) CreateOffsetPlane(base cad.PlaneID, distance float64) (cad.PlaneID, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	c, err := k.active()
	if err != nil {
		return "", err
	}
	p, ok := c.planes[base]
	if !ok {
		return "", fmt.Errorf("%w: plane %q", cad.ErrUnknownHandle, base)
	}
	p.origin = p.origin.add(p.n.scale(distance))
	id := cad.PlaneID(c.mint("plane"))
	c.planes[id] = p
	c.gen++
	return id, nil
}

func (k *Kernel) CreateSketch(pl cad.PlaneID) (cad.SketchID, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	c, err := k.active()
	if err != nil {
		return "", err
	}
	if _, ok := c.planes[pl]; !ok {
		return "", fmt.Errorf("%w: plane %q", cad.ErrUnknownHandle, pl)
	}
	id := cad.SketchID(c.mint("sketch"))
	c.sketches[id] = &sketch{plane: pl}
	c.gen++
	return id, nil
}

func (k *Kernel) addItem(id cad.SketchID, item sketchItem) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	c, err := k.active()
	if err != nil {
		return err
	}
	s, ok := c.sketches[id]
	if !ok {
		return fmt.Errorf("%w: sketch %q", cad.ErrUnknownHandle, id)
	}
	s.items = append(s.items, item)
	c.gen++
	return nil
}

func (k *Kernel) AddRectangle(id cad.SketchID, min, max cad.Vec2) error {
	if max.U-min.U <= eps || max.V-min.V <= eps {
		return fmt.Errorf("sim: degenerate rectangle (%g,%g)-(%g,%g)", min.U, min.V, max.U, max.V)
	}
	return k.addItem(id, sketchItem{kind: itemRect, min: min, max: max})
}

func (k *Kernel) AddCircle(id cad.SketchID, center cad.Vec2, radius float64) error {
	if radius <= 0 {
		return fmt.Errorf("sim: circle radius must be positive, got %g", radius)
	}
	return k.addItem(id, sketchItem{kind: itemCircle, center: center, radius: radius})
}

func (k *Kernel) AddText(id cad.SketchID, text cad.TextSpec) error {
	if text.Height <= 0 {
		return fmt.Errorf("sim: text height must be positive, got %g", text.Height)
	}
	return k.addItem(id, sketchItem{kind: itemText, text: text})
}

// Profiles returns one profile per sketch item, in creation order.
func (k *Kernel) Profiles(id cad.SketchID) ([]cad.ProfileID, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	c, err := k.active()
	if err != nil {
		return nil, err
	}
	s, ok := c.sketches[id]
	if !ok {
		return nil, fmt.Errorf("%w: sketch %q", cad.ErrUnknownHandle, id)
	}
	for i := len(s.profiles); i < len(s.items); i++ {
		pid := cad.ProfileID(c.mint("profile"))
		s.profiles = append(s.profiles, pid)
		c.profiles[pid] = profileRef{sketch: id, index: i}
	}
	return slices.Clone(s.profiles), nil
}

func (k *Kernel) Extrude(req cad.ExtrudeRequest) (cad.ExtrudeResult, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	c, err := k.active()
	if err != nil {
		return cad.ExtrudeResult{}, err
	}
	if len(req.Profiles) == 0 {
		return cad.ExtrudeResult{}, fmt.Errorf("sim: extrude needs at least one profile")
	}
	if req.Mode != cad.ExtrudeCutThrough && req.Distance <= 0 {
		return cad.ExtrudeResult{}, fmt.Errorf("sim: extrude distance must be positive, got %g", req.Distance)
	}
	dir := float64(req.Direction)
	if dir == 0 {
		dir = 1
	}

	body := &solid{}
	bodyID := req.Body
	if req.Mode != cad.ExtrudeNew {
		var ok bool
		if body, ok = c.bodies[bodyID]; !ok {
			return cad.ExtrudeResult{}, fmt.Errorf("%w: body %q", cad.ErrUnknownHandle, bodyID)
		}
	}

	// Validate every profile before mutating the body.
	items := make([]sketchItem, 0, len(req.Profiles))
	planes := make([]plane, 0, len(req.Profiles))
	for _, pid := range req.Profiles {
		ref, ok := c.profiles[pid]
		if !ok {
			return cad.ExtrudeResult{}, fmt.Errorf("%w: profile %q", cad.ErrUnknownHandle, pid)
		}
		s := c.sketches[ref.sketch]
		item := s.items[ref.index]
		switch {
		case req.Mode.IsCut() && item.kind != itemCircle:
			return cad.ExtrudeResult{}, fmt.Errorf("sim: only circular profiles can be cut (profile %q)", pid)
		case !req.Mode.IsCut() && item.kind == itemCircle:
			return cad.ExtrudeResult{}, fmt.Errorf("sim: circular bosses are not supported (profile %q)", pid)
		}
		items = append(items, item)
		planes = append(planes, c.planes[s.plane])
	}

	kind := string(req.Mode)
	for i, item := range items {
		p := planes[i]
		span := p.n.scale(dir * req.Distance)
		switch item.kind {
		case itemRect:
			a := p.at(item.min)
			b := p.at(item.max).add(span)
			body.boxes = append(body.boxes, newBox(a, b))
		case itemText:
			c.texts++
			kind = "emboss"
		case itemCircle:
			axis, sign := axisOf(p.n)
			base := p.at(item.center)
			p1, p2 := perp(axis)
			cyl := cylinder{axis: axis, center: [2]float64{base[p1], base[p2]}, radius: item.radius}
			start := base[axis]
			if req.Mode == cad.ExtrudeCutThrough {
				if dir*sign > 0 {
					cyl.lo, cyl.hi = start, math.Inf(1)
				} else {
					cyl.lo, cyl.hi = math.Inf(-1), start
				}
			} else {
				end := start + dir*sign*req.Distance
				cyl.lo, cyl.hi = math.Min(start, end), math.Max(start, end)
			}
			body.cuts = append(body.cuts, cyl)
		}
	}

	if req.Mode == cad.ExtrudeNew {
		bodyID = cad.BodyID(c.mint("body"))
		c.bodies[bodyID] = body
		c.order = append(c.order, bodyID)
	}
	fid := cad.FeatureID(c.mint("extrude"))
	c.features = append(c.features, feature{id: fid, kind: kind})
	c.gen++
	return cad.ExtrudeResult{Feature: fid, Body: bodyID}, nil
}

// Edges derives the body's edges. IDs are valid until the next modeling call.
func (k *Kernel) Edges(id cad.BodyID) ([]cad.Edge, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	c, err := k.active()
	if err != nil {
		return nil, err
	}
	body, ok := c.bodies[id]
	if !ok {
		return nil, fmt.Errorf("%w: body %q", cad.ErrUnknownHandle, id)
	}
	recs := body.edges()
	out := make([]cad.Edge, len(recs))
	for i, r := range recs {
		r.ID = edgeID(id, c.gen, i)
		r.Circular = r.cyl >= 0
		out[i] = r.Edge
	}
	return out, nil
}

func edgeID(body cad.BodyID, gen, index int) cad.EdgeID {
	return cad.EdgeID(fmt.Sprintf("%s/g%d/e%d", body, gen, index))
}

func parseEdgeID(id cad.EdgeID) (cad.BodyID, int, int, bool) {
	parts := strings.Split(string(id), "/")
	if len(parts) != 3 || !strings.HasPrefix(parts[1], "g") || !strings.HasPrefix(parts[2], "e") {
		return "", 0, 0, false
	}
	gen, err1 := strconv.Atoi(parts[1][1:])
	idx, err2 := strconv.Atoi(parts[2][1:])
	if err1 != nil || err2 != nil {
		return "", 0, 0, false
	}
	return cad.BodyID(parts[0]), gen, idx, true
}

func (k *Kernel) Chamfer(req cad.ChamferRequest) (cad.FeatureID, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	c, err := k.active()
	if err != nil {
		return "", err
	}
	bodyID, gen, idx, ok := parseEdgeID(req.Edge)
	if !ok {
		return "", fmt.Errorf("%w: edge %q", cad.ErrUnknownHandle, req.Edge)
	}
	if gen != c.gen {
		return "", fmt.Errorf("%w: %q (current generation %d)", cad.ErrStaleEdge, req.Edge, c.gen)
	}
	body, ok := c.bodies[bodyID]
	if !ok {
		return "", fmt.Errorf("%w: body %q", cad.ErrUnknownHandle, bodyID)
	}
	recs := body.edges()
	if idx < 0 || idx >= len(recs) {
		return "", fmt.Errorf("%w: edge %q", cad.ErrUnknownHandle, req.Edge)
	}
	e := recs[idx]
	if e.cyl < 0 || e.derived {
		return "", fmt.Errorf("sim: edge %q cannot be chamfered", req.Edge)
	}

	var width, depth float64
	switch req.Mode {
	case cad.ChamferTwoDistance:
		depth, width = req.Distance, req.Distance2
	case cad.ChamferDistanceAngle:
		if req.Angle <= 0 || req.Angle >= 90 {
			return "", fmt.Errorf("sim: chamfer angle must be in (0, 90), got %g", req.Angle)
		}
		width = req.Distance
		depth = req.Distance / math.Tan(req.Angle*math.Pi/180)
	default:
		return "", fmt.Errorf("sim: unknown chamfer mode %q", req.Mode)
	}
	if width <= 0 || depth <= 0 {
		return "", fmt.Errorf("sim: chamfer distances must be positive")
	}

	body.chamfers = append(body.chamfers, chamfer{cyl: e.cyl, t: e.t, into: e.into, width: width, depth: depth})
	fid := cad.FeatureID(c.mint("chamfer"))
	c.features = append(c.features, feature{id: fid, kind: "chamfer"})
	c.gen++
	return fid, nil
}

// Stats summarises a component's content.
type Stats struct {
	Component string   `json:"component"`
	Bodies    int      `json:"bodies"`
	Boxes     int      `json:"boxes"`
	Cuts      int      `json:"cuts"`
	Chamfers  int      `json:"chamfers"`
	Texts     int      `json:"texts"`
	Features  int      `json:"features"`
	Min       cad.Vec3 `json:"min"`
	Max       cad.Vec3 `json:"max"`
}

// Size returns the extents of the bounding box.
func (s Stats) Size() cad.Vec3 {
	return cad.Vec3{X: s.Max.X - s.Min.X, Y: s.Max.Y - s.Min.Y, Z: s.Max.Z - s.Min.Z}
}

// Stats reports on the named component.
func (k *Kernel) Stats(name string) (Stats, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	c, ok := k.components[name]
	if !ok {
		return Stats{}, false
	}
	st := Stats{Component: name, Bodies: len(c.order), Features: len(c.features), Texts: c.texts}
	first := true
	for _, id := range c.order {
		b := c.bodies[id]
		st.Boxes += len(b.boxes)
		st.Cuts += len(b.cuts)
		st.Chamfers += len(b.chamfers)
		lo, hi, ok := b.bounds()
		if !ok {
			continue
		}
		if first {
			st.Min, st.Max = lo.cad(), hi.cad()
			first = false
			continue
		}
		st.Min = cad.Vec3{X: math.Min(st.Min.X, lo[0]), Y: math.Min(st.Min.Y, lo[1]), Z: math.Min(st.Min.Z, lo[2])}
		st.Max = cad.Vec3{X: math.Max(st.Max.X, hi[0]), Y: math.Max(st.Max.Y, hi[1]), Z: math.Max(st.Max.Z, hi[2])}
	}
	return st, true
}

// Components returns the names of all components in sorted order.
func (k *Kernel) Components() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	names := make([]string, 0, len(k.components))
	for n := range k.components {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
