// Package cad defines the capability surface a solid-modeling backend must
// offer to build a holder.
//
// The model builder never talks to a CAD host directly. It issues a small set
// of abstract operations (planes, sketches, extrudes, chamfers and an edge
// query) through [Backend]. A host integration implements Backend against its
// own API; the sim subpackage implements it analytically for previews and
// tests.
//
// # Handles
//
// Planes, sketches, profiles, features and bodies are identified by opaque
// string handles minted by the backend. Edge handles are special: they are
// only valid until the next modeling operation on the component, after which
// the backend must reject them with [ErrStaleEdge]. Callers re-query [Backend.Edges]
// whenever they need an edge.
package cad

import "errors"

// ErrStaleEdge is returned when an edge handle from an earlier topology
// generation is passed to a modeling operation.
var ErrStaleEdge = errors.New("cad: stale edge handle")

// ErrUnknownHandle is returned for handles the backend never issued.
var ErrUnknownHandle = errors.New("cad: unknown handle")

type (
	PlaneID   string
	SketchID  string
	ProfileID string
	FeatureID string
	BodyID    string
	EdgeID    string
)

// Orientation selects a root construction plane.
type Orientation string

const (
	// PlaneXY is the ground plane; its normal is +Z.
	PlaneXY Orientation = "xy"
	// PlaneXZ is the wall-facing plane; its normal is +Y.
	PlaneXZ Orientation = "xz"
)

// Vec2 is a point in sketch coordinates. On an XY-family plane U maps to X
// and V to Y; on an XZ-family plane U maps to X and V to Z.
type Vec2 struct {
	U float64 `json:"u"`
	V float64 `json:"v"`
}

// Vec3 is a point in model space, in millimetres.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Near reports whether every coordinate of v is within tol of o.
func (v Vec3) Near(o Vec3, tol float64) bool {
	return abs(v.X-o.X) <= tol && abs(v.Y-o.Y) <= tol && abs(v.Z-o.Z) <= tol
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// Align is a text anchor.
type Align string

const AlignCenter Align = "center"

// TextSpec describes a single-line sketch text.
type TextSpec struct {
	Text     string  `json:"text"`
	Position Vec2    `json:"position"`
	Height   float64 `json:"height"`
	Font     string  `json:"font"`
	Align    Align   `json:"align"`
}

// ExtrudeMode selects how an extrusion combines with the body.
type ExtrudeMode string

const (
	ExtrudeNew        ExtrudeMode = "new"
	ExtrudeJoin       ExtrudeMode = "join"
	ExtrudeCutThrough ExtrudeMode = "cut-through-all"
	ExtrudeCutToDepth ExtrudeMode = "cut-to-depth"
)

// IsCut reports whether the mode removes material.
func (m ExtrudeMode) IsCut() bool {
	return m == ExtrudeCutThrough || m == ExtrudeCutToDepth
}

// Direction is the extrusion sense relative to the sketch plane normal.
type Direction int

const (
	Positive Direction = 1
	Negative Direction = -1
)

// ExtrudeRequest describes one extrude feature.
type ExtrudeRequest struct {
	Profiles  []ProfileID
	Distance  float64 // ignored for ExtrudeCutThrough
	Mode      ExtrudeMode
	Direction Direction
	Body      BodyID // target body; empty for ExtrudeNew
}

// ExtrudeResult identifies the created feature and the affected body.
type ExtrudeResult struct {
	Feature FeatureID
	Body    BodyID
}

// ChamferMode selects how a chamfer is dimensioned.
type ChamferMode string

const (
	ChamferTwoDistance   ChamferMode = "two-distance"
	ChamferDistanceAngle ChamferMode = "distance-angle"
)

// ChamferRequest describes a chamfer on one edge.
//
// For ChamferTwoDistance, Distance is measured along the hole axis and
// Distance2 across the adjacent face. For ChamferDistanceAngle, Distance is
// measured across the face and Angle (degrees) is the angle between the
// chamfer and the hole axis.
type ChamferRequest struct {
	Edge      EdgeID
	Mode      ChamferMode
	Distance  float64
	Distance2 float64
	Angle     float64
}

// Edge is a body edge as reported by the backend.
type Edge struct {
	ID       EdgeID  `json:"id"`
	Circular bool    `json:"circular"`
	Center   Vec3    `json:"center"`
	Radius   float64 `json:"radius"`
}

// Backend is a solid-modeling backend.
type Backend interface {
	// BeginComponent deletes any previously generated component with the
	// same name and makes a fresh, empty one the target of later calls.
	BeginComponent(name string) error
	RootPlane(o Orientation) PlaneID
	CreateOffsetPlane(base PlaneID, distance float64) (PlaneID, error)
	CreateSketch(plane PlaneID) (SketchID, error)
	AddRectangle(sketch SketchID, min, max Vec2) error
	AddCircle(sketch SketchID, center Vec2, radius float64) error
	AddText(sketch SketchID, text TextSpec) error
	// Profiles returns the sketch's closed regions in creation order.
	Profiles(sketch SketchID) ([]ProfileID, error)
	Extrude(req ExtrudeRequest) (ExtrudeResult, error)
	Chamfer(req ChamferRequest) (FeatureID, error)
	// Edges returns the body's current edges. The returned IDs are valid
	// until the next modeling operation.
	Edges(body BodyID) ([]Edge, error)
}

// FindCircularEdge returns the first circular edge centered within tol of
// center on every axis. A negative radius matches any radius; otherwise the
// radius must also be within tol.
func FindCircularEdge(edges []Edge, center Vec3, radius, tol float64) (Edge, bool) {
	for _, e := range edges {
		if !e.Circular || !e.Center.Near(center, tol) {
			continue
		}
		if radius >= 0 && abs(e.Radius-radius) > tol {
			continue
		}
		return e, true
	}
	return Edge{}, false
}
