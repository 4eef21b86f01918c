// Package build turns a validated layout into an ordered sequence of
// solid-modeling operations against a [cad.Backend].
//
// # Build Steps
//
// [Build] runs these steps strictly in order, each re-reading any backend
// state it depends on:
//
//  1. Begin the component (replacing a previous generation of it)
//  2. Base slab on the XY plane
//  3. One stepped tier per row above the front row
//  4. Tool holes, cut through all, one cut feature per hole
//  5. Hole entry chamfers, located by re-scanning body edges
//  6. Embossed labels, one emboss feature per row
//  7. Back plate on an XZ offset plane behind the holder
//  8. Four mount holes through the back plate
//  9. Screw-head finishing (counterbore or countersink)
//
// Edge handles are never kept across operations; every chamfer re-queries
// the body's edges and matches by position. An edge that cannot be located
// produces a [Warning] and the build continues.
//
// # Preconditions
//
// Build assumes its inputs passed the validate package. It performs no input
// checks of its own beyond refusing an empty grid.
package build

import (
	"context"
	"fmt"

	"github.com/matzehuels/toolrack/pkg/cad"
	"github.com/matzehuels/toolrack/pkg/errors"
	"github.com/matzehuels/toolrack/pkg/layout"
	"github.com/matzehuels/toolrack/pkg/params"
	"github.com/matzehuels/toolrack/pkg/tool"
)

// EdgeTolerance is the per-axis tolerance used when matching edges to
// expected positions.
const EdgeTolerance = 1e-4

// Step names label recorded operations.
const (
	StepBegin        = "begin"
	StepBase         = "base"
	StepTiers        = "tiers"
	StepHoles        = "holes"
	StepHoleChamfers = "hole-chamfers"
	StepLabels       = "labels"
	StepBackPlate    = "back-plate"
	StepMountHoles   = "mount-holes"
	StepFinish       = "finish"
)

// Steps lists the build steps in execution order.
var Steps = []string{
	StepBegin, StepBase, StepTiers, StepHoles, StepHoleChamfers,
	StepLabels, StepBackPlate, StepMountHoles, StepFinish,
}

// Spec is everything a build needs.
type Spec struct {
	Name   string
	Tools  []tool.Tool
	Grid   layout.Grid
	Params params.Set
}

// Result is the outcome of a build.
type Result struct {
	Component string     `json:"component"`
	Body      cad.BodyID `json:"body"`
	Plate     Plate      `json:"plate"`
	Ops       []cad.Op   `json:"ops"`
	Warnings  []Warning  `json:"warnings"`
}

// Counts summarises the recorded ops.
func (r *Result) Counts() Counts { return CountOps(r.Ops) }

// StepHook is called after each build step completes.
type StepHook func(step string, ops int)

type builder struct {
	rec    *cad.Recorder
	spec   Spec
	p      params.Set
	tools  []tool.Tool
	plate  Plate
	body   cad.BodyID
	back   cad.PlaneID
	warns  []Warning
	onStep StepHook
}

// Build issues the full operation sequence for spec against backend.
// The context is checked between steps only.
func Build(ctx context.Context, backend cad.Backend, spec Spec) (*Result, error) {
	return BuildWithHook(ctx, backend, spec, nil)
}

// BuildWithHook is Build with a callback invoked after each step.
func BuildWithHook(ctx context.Context, backend cad.Backend, spec Spec, hook StepHook) (*Result, error) {
	if spec.Name == "" {
		spec.Name = params.DefaultComponentName
	}
	if spec.Grid.Empty() {
		return nil, errors.New(errors.ErrCodeNoTools, "cannot build an empty layout")
	}

	b := &builder{
		rec:    cad.Record(backend),
		spec:   spec,
		p:      spec.Params,
		tools:  tool.Enabled(spec.Tools),
		plate:  PlateExtents(spec.Grid, spec.Params),
		onStep: hook,
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{StepBegin, b.begin},
		{StepBase, b.base},
		{StepTiers, b.tiers},
		{StepHoles, b.holes},
		{StepHoleChamfers, b.holeChamfers},
		{StepLabels, b.labels},
		{StepBackPlate, b.backPlate},
		{StepMountHoles, b.mountHoles},
		{StepFinish, b.finish},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.rec.SetStep(s.name)
		if err := s.run(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeBackend, err, "build step %s", s.name).
				With("step", s.name)
		}
		if b.onStep != nil {
			b.onStep(s.name, len(b.rec.Ops()))
		}
	}

	return &Result{
		Component: spec.Name,
		Body:      b.body,
		Plate:     b.plate,
		Ops:       b.rec.Ops(),
		Warnings:  b.warns,
	}, nil
}

func (b *builder) begin() error {
	return b.rec.BeginComponent(b.spec.Name)
}

// sketchOn creates a sketch on plane and returns its profiles after draw adds
// the geometry.
func (b *builder) sketchOn(plane cad.PlaneID, draw func(cad.SketchID) error) ([]cad.ProfileID, error) {
	sk, err := b.rec.CreateSketch(plane)
	if err != nil {
		return nil, err
	}
	if err := draw(sk); err != nil {
		return nil, err
	}
	return b.rec.Profiles(sk)
}

func (b *builder) base() error {
	g := b.spec.Grid
	profiles, err := b.sketchOn(b.rec.RootPlane(cad.PlaneXY), func(sk cad.SketchID) error {
		return b.rec.AddRectangle(sk, cad.Vec2{}, cad.Vec2{U: g.PartWidth, V: g.PartDepth})
	})
	if err != nil {
		return err
	}
	res, err := b.rec.Extrude(cad.ExtrudeRequest{
		Profiles:  profiles,
		Distance:  b.p.BaseThickness,
		Mode:      cad.ExtrudeNew,
		Direction: cad.Positive,
	})
	if err != nil {
		return err
	}
	b.body = res.Body
	return nil
}

// tiers raises one slab per row k >= 1, spanning from the row's front edge to
// the back of the part, so each row sits one step above the row in front.
func (b *builder) tiers() error {
	g := b.spec.Grid
	for k := 1; k <= g.MaxRow; k++ {
		z := b.p.BaseThickness + float64(k-1)*b.p.RowZStep
		plane, err := b.rec.CreateOffsetPlane(b.rec.RootPlane(cad.PlaneXY), z)
		if err != nil {
			return err
		}
		profiles, err := b.sketchOn(plane, func(sk cad.SketchID) error {
			return b.rec.AddRectangle(sk, cad.Vec2{U: 0, V: g.RowStart(k)}, cad.Vec2{U: g.PartWidth, V: g.PartDepth})
		})
		if err != nil {
			return err
		}
		if _, err := b.rec.Extrude(cad.ExtrudeRequest{
			Profiles:  profiles,
			Distance:  b.p.RowZStep,
			Mode:      cad.ExtrudeJoin,
			Direction: cad.Positive,
			Body:      b.body,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) holes() error {
	profiles, err := b.sketchOn(b.rec.RootPlane(cad.PlaneXY), func(sk cad.SketchID) error {
		for _, t := range b.tools {
			c := b.center(t)
			r := (t.ShaftDiameter + b.p.HoleBuffer) / 2
			if err := b.rec.AddCircle(sk, cad.Vec2{U: c.X, V: c.Y}, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, pr := range profiles {
		if _, err := b.rec.Extrude(cad.ExtrudeRequest{
			Profiles:  []cad.ProfileID{pr},
			Mode:      cad.ExtrudeCutThrough,
			Direction: cad.Positive,
			Body:      b.body,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) holeChamfers() error {
	for _, t := range b.tools {
		c := b.center(t)
		want := cad.Vec3{X: c.X, Y: c.Y, Z: RowTop(t.Row, b.p)}
		edges, err := b.rec.Edges(b.body)
		if err != nil {
			return err
		}
		e, ok := cad.FindCircularEdge(edges, want, -1, EdgeTolerance)
		if !ok {
			b.warn(WarnChamferEdge, t.Name, fmt.Sprintf("Could not find chamfer edge for %s.", t.Name))
			continue
		}
		if _, err := b.rec.Chamfer(cad.ChamferRequest{
			Edge:      e.ID,
			Mode:      cad.ChamferTwoDistance,
			Distance:  b.p.HoleChamferDepth,
			Distance2: b.p.HoleChamferD / 2,
		}); err != nil {
			return err
		}
	}
	return nil
}

// labels embosses one text per tool in front of its hole. Texts are clamped
// to stay at least min_web inside their row.
func (b *builder) labels() error {
	g := b.spec.Grid
	rows, byRow := tool.ByRow(b.tools)
	for _, row := range rows {
		plane, err := b.rec.CreateOffsetPlane(b.rec.RootPlane(cad.PlaneXY), RowTop(row, b.p))
		if err != nil {
			return err
		}
		profiles, err := b.sketchOn(plane, func(sk cad.SketchID) error {
			for _, t := range byRow[row] {
				pos, clamped := LabelPosition(g, t, b.p)
				if clamped {
					b.warn(WarnLabelClamped, t.Name, fmt.Sprintf("Text for %s clamped to row boundary.", t.Name))
				}
				if err := b.rec.AddText(sk, cad.TextSpec{
					Text:     t.Name,
					Position: cad.Vec2{U: pos.X, V: pos.Y},
					Height:   b.p.TextHeight,
					Font:     b.p.FontName,
					Align:    cad.AlignCenter,
				}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if _, err := b.rec.Extrude(cad.ExtrudeRequest{
			Profiles:  profiles,
			Distance:  b.p.EmbossHeight,
			Mode:      cad.ExtrudeJoin,
			Direction: cad.Positive,
			Body:      b.body,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) backPlate() error {
	plane, err := b.rec.CreateOffsetPlane(b.rec.RootPlane(cad.PlaneXZ), b.plate.FrontY)
	if err != nil {
		return err
	}
	b.back = plane
	profiles, err := b.sketchOn(plane, func(sk cad.SketchID) error {
		return b.rec.AddRectangle(sk, cad.Vec2{U: b.plate.MinX, V: 0}, cad.Vec2{U: b.plate.MaxX, V: b.plate.Height})
	})
	if err != nil {
		return err
	}
	_, err = b.rec.Extrude(cad.ExtrudeRequest{
		Profiles:  profiles,
		Distance:  b.plate.Thickness,
		Mode:      cad.ExtrudeJoin,
		Direction: cad.Positive,
		Body:      b.body,
	})
	return err
}

func (b *builder) mountHoles() error {
	return b.cutPlateCircles(b.back, b.p.MountHoleD/2, b.plate.Thickness, cad.Positive)
}

func (b *builder) finish() error {
	switch b.p.MountStyle {
	case params.MountCounterbore:
		plane, err := b.rec.CreateOffsetPlane(b.rec.RootPlane(cad.PlaneXZ), b.plate.BackY())
		if err != nil {
			return err
		}
		return b.cutPlateCircles(plane, b.p.CboreD/2, b.p.CboreDepth, cad.Negative)
	case params.MountCountersink:
		return b.countersink()
	}
	return nil
}

func (b *builder) cutPlateCircles(plane cad.PlaneID, radius, depth float64, dir cad.Direction) error {
	profiles, err := b.sketchOn(plane, func(sk cad.SketchID) error {
		for _, h := range b.plate.Holes {
			if err := b.rec.AddCircle(sk, h, radius); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, pr := range profiles {
		if _, err := b.rec.Extrude(cad.ExtrudeRequest{
			Profiles:  []cad.ProfileID{pr},
			Distance:  depth,
			Mode:      cad.ExtrudeCutToDepth,
			Direction: dir,
			Body:      b.body,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) countersink() error {
	radius := b.p.MountHoleD / 2
	for i, h := range b.plate.Holes {
		want := cad.Vec3{X: h.U, Y: b.plate.BackY(), Z: h.V}
		edges, err := b.rec.Edges(b.body)
		if err != nil {
			return err
		}
		name := MountHoleName(i)
		e, ok := cad.FindCircularEdge(edges, want, radius, EdgeTolerance)
		if !ok {
			b.warn(WarnCountersinkEdge, name, fmt.Sprintf("Could not find countersink edge for %s.", name))
			continue
		}
		if _, err := b.rec.Chamfer(cad.ChamferRequest{
			Edge:     e.ID,
			Mode:     cad.ChamferDistanceAngle,
			Distance: (b.p.CskD - b.p.MountHoleD) / 2,
			Angle:    b.p.CskAngle / 2,
		}); err != nil {
			return err
		}
	}
	return nil
}

// MountHoleName names mount hole i (0-based) in warnings.
func MountHoleName(i int) string {
	return fmt.Sprintf("mount-hole-%d", i+1)
}

func (b *builder) center(t tool.Tool) layout.Point {
	return b.spec.Grid.Centers[t.Cell()]
}

func (b *builder) warn(kind WarningKind, name, msg string) {
	b.warns = append(b.warns, Warning{Kind: kind, Tool: name, Message: msg})
}
