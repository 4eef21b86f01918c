// Package validate holds the fatal input checks that gate a build.
//
// Every check returns nil or a *errors.Error whose code identifies the rule
// and whose Details carry the offending names and values. Nothing here talks
// to a modeling backend: validation always completes before the first
// modeling operation is issued.
package validate

import (
	"fmt"
	"math"

	"github.com/matzehuels/toolrack/pkg/build"
	"github.com/matzehuels/toolrack/pkg/errors"
	"github.com/matzehuels/toolrack/pkg/layout"
	"github.com/matzehuels/toolrack/pkg/params"
	"github.com/matzehuels/toolrack/pkg/tool"
)

// Tools checks the enabled descriptors: at least one must exist, names must
// be non-empty, rows and columns non-negative, diameters positive and cells
// unique.
func Tools(tools []tool.Tool) error {
	enabled := tool.Enabled(tools)
	if len(enabled) == 0 {
		return errors.New(errors.ErrCodeNoTools, "No enabled tools found in catalog.")
	}

	seen := make(map[tool.Cell]tool.Tool, len(enabled))
	for _, t := range enabled {
		if t.Name == "" {
			return errors.New(errors.ErrCodeInvalidTool, "Tool name must be non-empty.").
				With("line", t.Line)
		}
		if t.Row < 0 || t.Col < 0 {
			return errors.New(errors.ErrCodeInvalidTool, "Invalid row/col for tool '%s'.", t.Name).
				With("tool", t.Name).With("row", t.Row).With("col", t.Col)
		}
		if t.HandleDiameter <= 0 || t.ShaftDiameter <= 0 {
			return errors.New(errors.ErrCodeInvalidTool, "Invalid diameters for tool '%s'.", t.Name).
				With("tool", t.Name).With("handle_d_mm", t.HandleDiameter).With("shaft_d_mm", t.ShaftDiameter)
		}
		if prev, ok := seen[t.Cell()]; ok {
			return errors.New(errors.ErrCodeDuplicateCell, "Duplicate row/col (%d, %d) for '%s' and '%s'.",
				t.Row, t.Col, t.Name, prev.Name).
				With("tool", t.Name).With("other", prev.Name).With("row", t.Row).With("col", t.Col)
		}
		seen[t.Cell()] = t
	}
	return nil
}

// Params checks parameter relationships and ranges.
func Params(p params.Set) error {
	if p.BaseThickness < p.MinFloorThickness {
		return errors.New(errors.ErrCodeBaseThickness, "Base thickness must be >= min_floor_thickness.").
			With("base_thickness", p.BaseThickness).With("min_floor_thickness", p.MinFloorThickness)
	}
	if err := errors.ValidateMountStyle(string(p.MountStyle)); err != nil {
		return err
	}

	positive := []struct {
		name  string
		value float64
	}{
		{"min_web", p.MinWeb},
		{"row_z_step", p.RowZStep},
		{"base_thickness", p.BaseThickness},
		{"mount_hole_d", p.MountHoleD},
		{"mount_plate_thickness", p.MountPlateThickness},
		{"text_height", p.TextHeight},
		{"emboss_height", p.EmbossHeight},
	}
	for _, c := range positive {
		if c.value <= 0 || math.IsNaN(c.value) {
			return rangeError(c.name, c.value, "must be > 0")
		}
	}

	if p.CskAngle <= 0 || p.CskAngle >= 180 {
		return rangeError("csk_angle", p.CskAngle, "must be within (0, 180) degrees")
	}

	switch p.MountStyle {
	case params.MountCounterbore:
		if p.CboreD <= p.MountHoleD {
			return rangeError("cbore_d", p.CboreD, fmt.Sprintf("must exceed mount_hole_d (%g)", p.MountHoleD))
		}
		if p.CboreDepth <= 0 || p.CboreDepth >= p.MountPlateThickness {
			return rangeError("cbore_depth", p.CboreDepth, fmt.Sprintf("must be within (0, mount_plate_thickness=%g)", p.MountPlateThickness))
		}
	case params.MountCountersink:
		if p.CskD <= p.MountHoleD {
			return rangeError("csk_d", p.CskD, fmt.Sprintf("must exceed mount_hole_d (%g)", p.MountHoleD))
		}
	}
	return nil
}

func rangeError(name string, value float64, rule string) error {
	return errors.New(errors.ErrCodeParamRange, "Parameter %s=%g %s.", name, value, rule).
		With("param", name).With("value", value)
}

// Spacing checks that holes sharing a row or a column leave at least min_web
// of material between them. Every unordered pair is compared.
func Spacing(tools []tool.Tool, g layout.Grid, p params.Set) error {
	enabled := tool.Enabled(tools)
	for i, a := range enabled {
		for _, b := range enabled[i+1:] {
			required := (a.ShaftDiameter+b.ShaftDiameter)/2 + p.MinWeb
			ca, cb := g.Centers[a.Cell()], g.Centers[b.Cell()]
			if a.Row == b.Row {
				if err := checkPair(a, b, "x", math.Abs(ca.X-cb.X), required); err != nil {
					return err
				}
			}
			if a.Col == b.Col {
				if err := checkPair(a, b, "y", math.Abs(ca.Y-cb.Y), required); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func checkPair(a, b tool.Tool, axis string, actual, required float64) error {
	if actual >= required {
		return nil
	}
	return errors.New(errors.ErrCodeSpacing, "Hole spacing too tight between '%s' and '%s' (%s: %.3g mm, need %.3g mm).",
		a.Name, b.Name, axis, actual, required).
		With("tool", a.Name).With("other", b.Name).With("axis", axis).
		With("actual", actual).With("required", required)
}

// MountOffsets checks that the mount hole offsets leave min_web of material
// between each hole and the edges of a part of the given size.
func MountOffsets(p params.Set, partWidth, partDepth float64) error {
	r := p.HoleRadius()
	ox, oy := p.MountHoleEdgeOffsetX, p.MountHoleEdgeOffsetY
	minimum := r + p.MinWeb

	if ox <= minimum {
		return mountError("Mount hole X offset too small for edge clearance.", "x", ox, minimum)
	}
	if oy <= minimum {
		return mountError("Mount hole Y offset too small for edge clearance.", "y", oy, minimum)
	}
	if limit := partWidth - r - p.MinWeb; ox >= limit {
		return mountError("Mount hole X offset places holes outside part.", "x", ox, limit)
	}
	if limit := partDepth - r - p.MinWeb; oy >= limit {
		return mountError("Mount hole Y offset places holes outside part.", "y", oy, limit)
	}
	return nil
}

// MountPlate checks that the mount holes sit inside the back plate's wings,
// clear of the holder body by min_web, and inside the plate height.
func MountPlate(p params.Set, plate build.Plate) error {
	r := p.HoleRadius()
	if limit := plate.Wing - r - p.MinWeb; p.MountHoleEdgeOffsetX >= limit {
		return mountError("Mount hole X offset leaves no web between hole and holder body.", "x", p.MountHoleEdgeOffsetX, limit).
			With("mount_wing_extension", plate.Wing)
	}
	if limit := plate.Height - r - p.MinWeb; p.MountHoleEdgeOffsetY >= limit {
		return mountError("Mount hole Y offset places holes outside the back plate.", "y", p.MountHoleEdgeOffsetY, limit).
			With("plate_height", plate.Height)
	}
	return nil
}

func mountError(msg, axis string, offset, limit float64) *errors.Error {
	return errors.New(errors.ErrCodeMountOffset, "%s", msg).
		With("axis", axis).With("offset", offset).With("limit", limit)
}

// All runs the checks that depend on the computed layout: spacing, mount
// offsets against the part, and mount holes against the back plate.
func All(tools []tool.Tool, g layout.Grid, p params.Set) error {
	if err := Spacing(tools, g, p); err != nil {
		return err
	}
	if err := MountOffsets(p, g.PartWidth, g.PartDepth); err != nil {
		return err
	}
	return MountPlate(p, build.PlateExtents(g, p))
}

// Inputs runs every check in pipeline order: tools, parameters, then the
// layout-dependent checks. It computes the layout itself and returns it.
func Inputs(tools []tool.Tool, p params.Set) (layout.Grid, error) {
	if err := Tools(tools); err != nil {
		return layout.Grid{}, err
	}
	if err := Params(p); err != nil {
		return layout.Grid{}, err
	}
	g := layout.Compute(tools, p)
	if err := All(tools, g, p); err != nil {
		return layout.Grid{}, err
	}
	return g, nil
}
