package render

import (
	"context"
	"slices"

	"github.com/matzehuels/toolrack/pkg/errors"
	"github.com/matzehuels/toolrack/pkg/layout"
	"github.com/matzehuels/toolrack/pkg/params"
	"github.com/matzehuels/toolrack/pkg/tool"
)

// Inputs is what every renderer draws from.
type Inputs struct {
	Doc    Document
	Grid   layout.Grid
	Tools  []tool.Tool
	Params params.Set
}

// ValidateFormats rejects unknown format names.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if !slices.Contains(Formats, f) {
			return errors.New(errors.ErrCodeUnsupported, "Unsupported output format %q.", f).
				With("format", f).With("supported", Formats)
		}
	}
	return nil
}

// Artifact renders in as format.
func Artifact(ctx context.Context, format string, in Inputs) ([]byte, error) {
	switch format {
	case FormatJSON:
		return PlanJSON(in.Doc)
	case FormatSVG:
		return LayoutSVG(in.Grid, in.Tools, in.Params), nil
	case FormatDOT:
		return []byte(PlanDOT(in.Doc.Ops)), nil
	case FormatPlanSVG:
		return RenderDOTSVG(ctx, PlanDOT(in.Doc.Ops))
	default:
		return nil, ValidateFormats([]string{format})
	}
}
