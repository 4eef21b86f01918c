// Package params defines the named dimensional parameters of a holder.
//
// Every dimension the layout engine, validator and model builder use comes
// from a [Set]. A Set starts from [Defaults] and may be overlaid from a TOML
// or YAML file (see [Load] and [Decode]) or from a decoded JSON object (see
// [Overlay]). Lengths are stored in millimetres and angles in degrees; file
// values may carry a unit suffix such as "0.6 cm" or "1.5708 rad".
package params

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies a parameter value.
type Kind string

const (
	KindLength Kind = "length"
	KindAngle  Kind = "angle"
	KindString Kind = "string"
)

// MountStyle selects how screw heads seat in the back plate.
type MountStyle string

const (
	MountNone        MountStyle = "none"
	MountCounterbore MountStyle = "counterbore"
	MountCountersink MountStyle = "countersink"
)

// MountStyles lists the supported styles in display order.
var MountStyles = []MountStyle{MountNone, MountCounterbore, MountCountersink}

// ParseMountStyle normalizes a style name: surrounding space is dropped and
// case is ignored, so "Countersink" selects MountCountersink.
func ParseMountStyle(s string) MountStyle {
	return MountStyle(strings.ToLower(strings.TrimSpace(s)))
}

// Valid reports whether s names a supported style.
func (s MountStyle) Valid() bool {
	switch s {
	case MountNone, MountCounterbore, MountCountersink:
		return true
	}
	return false
}

// DefaultComponentName is the identity of the generated component.
const DefaultComponentName = "ScrewdriverHolder_GEN"

// Set holds one value per parameter. Lengths are millimetres, CskAngle is
// degrees. The zero Set is not useful; start from Defaults.
type Set struct {
	HandleXPad           float64    `json:"handle_x_pad"`
	HandleYPad           float64    `json:"handle_y_pad"`
	EdgeMarginX          float64    `json:"edge_margin_x"`
	EdgeMarginY          float64    `json:"edge_margin_y"`
	MinWeb               float64    `json:"min_web"`
	RowZStep             float64    `json:"row_z_step"`
	BaseThickness        float64    `json:"base_thickness"`
	MinFloorThickness    float64    `json:"min_floor_thickness"`
	HoleBuffer           float64    `json:"hole_buffer"`
	HoleChamferD         float64    `json:"hole_chamfer_d"`
	HoleChamferDepth     float64    `json:"hole_chamfer_depth"`
	TextYDist            float64    `json:"text_y_dist"`
	TextHeight           float64    `json:"text_height"`
	EmbossHeight         float64    `json:"emboss_height"`
	FontName             string     `json:"font_name"`
	MountHoleD           float64    `json:"mount_hole_d"`
	MountHoleEdgeOffsetX float64    `json:"mount_hole_edge_offset_x"`
	MountHoleEdgeOffsetY float64    `json:"mount_hole_edge_offset_y"`
	MountStyle           MountStyle `json:"mount_style"`
	CboreD               float64    `json:"cbore_d"`
	CboreDepth           float64    `json:"cbore_depth"`
	CskD                 float64    `json:"csk_d"`
	CskAngle             float64    `json:"csk_angle"`
	MountPlateThickness  float64    `json:"mount_plate_thickness"`
	MountWingExtension   float64    `json:"mount_wing_extension"`
}

// Definition describes one parameter.
type Definition struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	Default     Value  `json:"default"`
	Description string `json:"description"`
}

// Value is a single parameter value. Num is used for lengths (mm) and angles
// (deg), Str for string parameters.
type Value struct {
	Kind Kind    `json:"kind"`
	Num  float64 `json:"num,omitempty"`
	Str  string  `json:"str,omitempty"`
}

// String formats the value with its unit, e.g. "6 mm" or "90 deg".
func (v Value) String() string {
	switch v.Kind {
	case KindLength:
		return strconv.FormatFloat(v.Num, 'g', -1, 64) + " mm"
	case KindAngle:
		return strconv.FormatFloat(v.Num, 'g', -1, 64) + " deg"
	default:
		return v.Str
	}
}

// Raw returns the value as a float64 or string, as stored in a Set.
func (v Value) Raw() any {
	if v.Kind == KindString {
		return v.Str
	}
	return v.Num
}

type entry struct {
	name string
	kind Kind
	desc string
	num  func(*Set) *float64
	str  func(*Set) *string
}

func length(name, desc string, f func(*Set) *float64) entry {
	return entry{name: name, kind: KindLength, desc: desc, num: f}
}

// entries is ordered the way parameters are listed to users.
var entries = []entry{
	length("handle_x_pad", "Extra X spacing per column beyond handle diameter", func(s *Set) *float64 { return &s.HandleXPad }),
	length("handle_y_pad", "Extra Y spacing per row beyond handle diameter", func(s *Set) *float64 { return &s.HandleYPad }),
	length("edge_margin_x", "Left/right margin from outermost tools", func(s *Set) *float64 { return &s.EdgeMarginX }),
	length("edge_margin_y", "Front/back margin from outermost tools", func(s *Set) *float64 { return &s.EdgeMarginY }),
	length("min_web", "Minimum web thickness between holes", func(s *Set) *float64 { return &s.MinWeb }),
	length("row_z_step", "Row height step", func(s *Set) *float64 { return &s.RowZStep }),
	length("base_thickness", "Base thickness", func(s *Set) *float64 { return &s.BaseThickness }),
	length("min_floor_thickness", "Minimum platform thickness", func(s *Set) *float64 { return &s.MinFloorThickness }),
	length("hole_buffer", "Hole clearance buffer", func(s *Set) *float64 { return &s.HoleBuffer }),
	length("hole_chamfer_d", "Hole chamfer top width", func(s *Set) *float64 { return &s.HoleChamferD }),
	length("hole_chamfer_depth", "Hole chamfer depth", func(s *Set) *float64 { return &s.HoleChamferDepth }),
	length("text_y_dist", "Distance in front of hole center", func(s *Set) *float64 { return &s.TextYDist }),
	length("text_height", "Sketch text height", func(s *Set) *float64 { return &s.TextHeight }),
	length("emboss_height", "Emboss extrusion height", func(s *Set) *float64 { return &s.EmbossHeight }),
	{name: "font_name", kind: KindString, desc: "Font name for labels", str: func(s *Set) *string { return &s.FontName }},
	length("mount_hole_d", "Mounting hole diameter", func(s *Set) *float64 { return &s.MountHoleD }),
	length("mount_hole_edge_offset_x", "Mount hole offset from the plate's left/right edges", func(s *Set) *float64 { return &s.MountHoleEdgeOffsetX }),
	length("mount_hole_edge_offset_y", "Mount hole offset from the plate's bottom/top edges", func(s *Set) *float64 { return &s.MountHoleEdgeOffsetY }),
	{name: "mount_style", kind: KindString, desc: "Mount style (none, countersink, counterbore)", str: func(s *Set) *string { return (*string)(&s.MountStyle) }},
	length("cbore_d", "Counterbore diameter", func(s *Set) *float64 { return &s.CboreD }),
	length("cbore_depth", "Counterbore depth", func(s *Set) *float64 { return &s.CboreDepth }),
	length("csk_d", "Countersink diameter", func(s *Set) *float64 { return &s.CskD }),
	{name: "csk_angle", kind: KindAngle, desc: "Countersink included angle", num: func(s *Set) *float64 { return &s.CskAngle }},
	length("mount_plate_thickness", "Back plate thickness", func(s *Set) *float64 { return &s.MountPlateThickness }),
	length("mount_wing_extension", "Back plate overhang beyond each side of the holder", func(s *Set) *float64 { return &s.MountWingExtension }),
}

var byName = func() map[string]entry {
	m := make(map[string]entry, len(entries))
	for _, e := range entries {
		m[e.name] = e
	}
	return m
}()

// Defaults returns the default parameter set.
func Defaults() Set {
	return Set{
		HandleXPad:           6,
		HandleYPad:           6,
		EdgeMarginX:          10,
		EdgeMarginY:          10,
		MinWeb:               3,
		RowZStep:             8,
		BaseThickness:        12,
		MinFloorThickness:    8,
		HoleBuffer:           0.6,
		HoleChamferD:         2.0,
		HoleChamferDepth:     1.5,
		TextYDist:            4,
		TextHeight:           5,
		EmbossHeight:         0.8,
		FontName:             "Arial",
		MountHoleD:           5.2,
		MountHoleEdgeOffsetX: 12,
		MountHoleEdgeOffsetY: 12,
		MountStyle:           MountCounterbore,
		CboreD:               9.5,
		CboreDepth:           3.0,
		CskD:                 10,
		CskAngle:             90,
		MountPlateThickness:  5,
		MountWingExtension:   20,
	}
}

// Definitions lists every parameter with its default value.
func Definitions() []Definition {
	d := Defaults()
	out := make([]Definition, 0, len(entries))
	for _, e := range entries {
		v, _ := d.Lookup(e.name)
		out = append(out, Definition{Name: e.name, Kind: e.kind, Default: v, Description: e.desc})
	}
	return out
}

// Names returns the parameter names in display order.
func Names() []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out
}

// Lookup returns the named parameter's value.
func (s Set) Lookup(name string) (Value, bool) {
	e, ok := byName[name]
	if !ok {
		return Value{}, false
	}
	if e.kind == KindString {
		return Value{Kind: e.kind, Str: *e.str(&s)}, true
	}
	return Value{Kind: e.kind, Num: *e.num(&s)}, true
}

// Values returns every parameter keyed by name, with lengths and angles as
// float64 and strings as string. Used for cache keys and plan documents.
func (s Set) Values() map[string]any {
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		v, _ := s.Lookup(e.name)
		out[e.name] = v.Raw()
	}
	return out
}

// HoleRadius returns the mount hole radius.
func (s Set) HoleRadius() float64 {
	return s.MountHoleD / 2
}

// set assigns a raw decoded value to the named parameter.
func (s *Set) set(name string, raw any) error {
	e, ok := byName[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q", name)
	}
	switch e.kind {
	case KindString:
		str, ok := raw.(string)
		if !ok {
			return fmt.Errorf("parameter %q must be a string, got %T", name, raw)
		}
		if name == "mount_style" {
			str = string(ParseMountStyle(str))
		}
		*e.str(s) = str
	case KindLength:
		v, err := toNumber(raw, ParseLength)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", name, err)
		}
		*e.num(s) = v
	case KindAngle:
		v, err := toNumber(raw, ParseAngle)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", name, err)
		}
		*e.num(s) = v
	}
	return nil
}

func toNumber(raw any, parse func(string) (float64, error)) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		return parse(v)
	default:
		return 0, fmt.Errorf("expected a number or unit expression, got %T", raw)
	}
}
