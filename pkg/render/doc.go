// Package render turns a build into the artifacts users look at.
//
// # Formats
//
//   - [FormatJSON]: the plan document ([Document]) with run id, layout
//     summary, every recorded backend operation, warnings and op counts
//   - [FormatDOT]: the operation sequence as a Graphviz digraph, one cluster
//     per build step ([PlanDOT])
//   - [FormatPlanSVG]: that digraph laid out by Graphviz ([RenderDOTSVG])
//   - [FormatSVG]: a top view of the footprint with cells, holes, handle
//     outlines, labels and the back plate ([LayoutSVG])
//
// All renderers are pure apart from the run id minted by [NewDocument].
package render

// Output format names accepted by [Artifact].
const (
	FormatJSON    = "json"
	FormatSVG     = "svg"
	FormatDOT     = "dot"
	FormatPlanSVG = "plan-svg"
)

// Formats lists every supported output format.
var Formats = []string{FormatJSON, FormatSVG, FormatDOT, FormatPlanSVG}

// Extension returns the file extension written for format.
func Extension(format string) string {
	switch format {
	case FormatPlanSVG:
		return ".plan.svg"
	default:
		return "." + format
	}
}
