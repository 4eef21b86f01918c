package cad

import (
	"fmt"
	"strings"
)

// OpKind names a backend call.
type OpKind string

const (
	OpBeginComponent OpKind = "begin-component"
	OpRootPlane      OpKind = "root-plane"
	OpOffsetPlane    OpKind = "offset-plane"
	OpSketch         OpKind = "sketch"
	OpRectangle      OpKind = "rectangle"
	OpCircle         OpKind = "circle"
	OpText           OpKind = "text"
	OpProfiles       OpKind = "profiles"
	OpExtrude        OpKind = "extrude"
	OpChamfer        OpKind = "chamfer"
	OpEdges          OpKind = "edges"
)

// Op is one recorded backend call.
type Op struct {
	Seq    int    `json:"seq"`
	Step   string `json:"step,omitempty"`
	Kind   OpKind `json:"kind"`
	Target string `json:"target,omitempty"`
	Result string `json:"result,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Detail string `json:"detail,omitempty"`
	Count  int    `json:"count,omitempty"`
	Err    string `json:"error,omitempty"`
}

// String renders the op on one line, e.g. "12 extrude[join] body-1 (1 profile)".
func (o Op) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s", o.Seq, o.Kind)
	if o.Mode != "" {
		fmt.Fprintf(&b, "[%s]", o.Mode)
	}
	if o.Target != "" {
		fmt.Fprintf(&b, " %s", o.Target)
	}
	if o.Result != "" {
		fmt.Fprintf(&b, " -> %s", o.Result)
	}
	if o.Detail != "" {
		fmt.Fprintf(&b, " %s", o.Detail)
	}
	if o.Err != "" {
		fmt.Fprintf(&b, " !%s", o.Err)
	}
	return b.String()
}

// Recorder wraps a Backend and records every call as an Op. It implements
// Backend itself, so callers use it in place of the wrapped backend.
type Recorder struct {
	backend Backend
	step    string
	ops     []Op
}

// Record returns a Recorder around b.
func Record(b Backend) *Recorder {
	return &Recorder{backend: b}
}

// SetStep labels subsequent ops with a build step name.
func (r *Recorder) SetStep(step string) { r.step = step }

// Ops returns the recorded calls in issue order.
func (r *Recorder) Ops() []Op { return r.ops }

func (r *Recorder) add(op Op, err error) {
	op.Seq = len(r.ops) + 1
	op.Step = r.step
	if err != nil {
		op.Err = err.Error()
	}
	r.ops = append(r.ops, op)
}

func (r *Recorder) BeginComponent(name string) error {
	err := r.backend.BeginComponent(name)
	r.add(Op{Kind: OpBeginComponent, Target: name}, err)
	return err
}

func (r *Recorder) RootPlane(o Orientation) PlaneID {
	id := r.backend.RootPlane(o)
	r.add(Op{Kind: OpRootPlane, Mode: string(o), Result: string(id)}, nil)
	return id
}

func (r *Recorder) CreateOffsetPlane(base PlaneID, distance float64) (PlaneID, error) {
	id, err := r.backend.CreateOffsetPlane(base, distance)
	r.add(Op{Kind: OpOffsetPlane, Target: string(base), Result: string(id), Detail: fmt.Sprintf("d=%g", distance)}, err)
	return id, err
}

func (r *Recorder) CreateSketch(plane PlaneID) (SketchID, error) {
	id, err := r.backend.CreateSketch(plane)
	r.add(Op{Kind: OpSketch, Target: string(plane), Result: string(id)}, err)
	return id, err
}

func (r *Recorder) AddRectangle(sketch SketchID, min, max Vec2) error {
	err := r.backend.AddRectangle(sketch, min, max)
	r.add(Op{Kind: OpRectangle, Target: string(sketch), Detail: fmt.Sprintf("(%g,%g)-(%g,%g)", min.U, min.V, max.U, max.V)}, err)
	return err
}

func (r *Recorder) AddCircle(sketch SketchID, center Vec2, radius float64) error {
	err := r.backend.AddCircle(sketch, center, radius)
	r.add(Op{Kind: OpCircle, Target: string(sketch), Detail: fmt.Sprintf("c=(%g,%g) r=%g", center.U, center.V, radius)}, err)
	return err
}

func (r *Recorder) AddText(sketch SketchID, text TextSpec) error {
	err := r.backend.AddText(sketch, text)
	r.add(Op{Kind: OpText, Target: string(sketch), Detail: fmt.Sprintf("%q at (%g,%g) h=%g", text.Text, text.Position.U, text.Position.V, text.Height)}, err)
	return err
}

func (r *Recorder) Profiles(sketch SketchID) ([]ProfileID, error) {
	ids, err := r.backend.Profiles(sketch)
	r.add(Op{Kind: OpProfiles, Target: string(sketch), Count: len(ids)}, err)
	return ids, err
}

func (r *Recorder) Extrude(req ExtrudeRequest) (ExtrudeResult, error) {
	res, err := r.backend.Extrude(req)
	detail := fmt.Sprintf("d=%g", req.Distance)
	if req.Mode == ExtrudeCutThrough {
		detail = "through-all"
	}
	if req.Direction == Negative {
		detail += " reversed"
	}
	r.add(Op{
		Kind:   OpExtrude,
		Mode:   string(req.Mode),
		Target: string(req.Body),
		Result: string(res.Feature),
		Detail: detail,
		Count:  len(req.Profiles),
	}, err)
	return res, err
}

func (r *Recorder) Chamfer(req ChamferRequest) (FeatureID, error) {
	id, err := r.backend.Chamfer(req)
	detail := fmt.Sprintf("d1=%g d2=%g", req.Distance, req.Distance2)
	if req.Mode == ChamferDistanceAngle {
		detail = fmt.Sprintf("d=%g a=%g", req.Distance, req.Angle)
	}
	r.add(Op{Kind: OpChamfer, Mode: string(req.Mode), Target: string(req.Edge), Result: string(id), Detail: detail}, err)
	return id, err
}

func (r *Recorder) Edges(body BodyID) ([]Edge, error) {
	edges, err := r.backend.Edges(body)
	r.add(Op{Kind: OpEdges, Target: string(body), Count: len(edges)}, err)
	return edges, err
}

var _ Backend = (*Recorder)(nil)
