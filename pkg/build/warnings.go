package build

// WarningKind classifies a non-fatal geometry problem.
type WarningKind string

const (
	WarnChamferEdge     WarningKind = "chamfer-edge"
	WarnCountersinkEdge WarningKind = "countersink-edge"
	WarnLabelClamped    WarningKind = "label-clamped"
)

// Warning is a non-fatal geometry problem. Tool names the tool or mount hole
// it concerns.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Tool    string      `json:"tool"`
	Message string      `json:"message"`
}

func (w Warning) String() string { return w.Message }
