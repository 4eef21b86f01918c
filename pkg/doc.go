// Package pkg provides the core libraries for toolrack holder generation.
//
// # Overview
//
// Toolrack turns a catalog of hand tools into a stepped, wall-mountable
// holder. Each tool sits in a grid cell; every row is raised one step above
// the row in front of it, holes are cut and chamfered, labels are embossed
// in front of each hole, and a back plate with mount holes is joined to the
// rear face.
//
// # Architecture
//
// The typical data flow:
//
//	Catalog (CSV/YAML) + parameter overlay (TOML/YAML)
//	         ↓
//	    [catalog], [params] packages (read descriptors and parameters)
//	         ↓
//	    [layout] package (column widths, row depths, hole centers)
//	         ↓
//	    [validate] package (fatal checks before any modeling call)
//	         ↓
//	    [build] package (modeling operations against a [cad] backend)
//	         ↓
//	    [render] package (plan JSON, top-view SVG, operation graph)
//
// [pipeline] runs the whole sequence with caching and is shared by the CLI
// and the HTTP API.
//
// # Quick Start
//
//	tools, _ := catalog.Load("tools.csv")
//	p, _ := params.Load("params.toml")
//
//	g, err := validate.Inputs(tools, p)
//	if errors.IsFatal(err) {
//	    log.Fatal(errors.UserMessage(err))
//	}
//
//	res, _ := build.Build(ctx, sim.New(), build.Spec{Tools: tools, Grid: g, Params: p})
//	for _, w := range res.Warnings {
//	    fmt.Println(w.Message)
//	}
//	data, _ := render.PlanJSON(render.NewDocument(res, g, tools, p))
//
// # Main Packages
//
// ## Domain
//
// [tool] - The tool descriptor shared by every stage.
//
// [catalog] - CSV and YAML catalog readers with line-numbered errors, plus a
// CSV writer used by the interactive picker.
//
// [params] - The parameter set, its defaults and unit-aware overlays
// ("6 mm", "0.25 in", "90 deg").
//
// [layout] - The grid: dense column and row sizes and hole centers.
//
// [validate] - Duplicate cells, diameters, hole spacing and mount hole
// offsets. Every failure is a structured [errors] value.
//
// [build] - The modeling sequence: base, stepped tiers, holes and chamfers,
// labels, back plate and mount hole finishing. Geometry problems that do not
// stop the build are returned as warnings.
//
// ## Modeling
//
// [cad] - The backend interface and an operation recorder.
//
// [cad/sim] - An analytic preview kernel that tracks solids, re-derives
// edges after every feature and rejects stale edge handles.
//
// ## Infrastructure
//
// [pipeline] - Load → validate → build → render with cache lookups.
//
// [cache] - File (CLI), memory, Redis (API) and null caches keyed by hashes
// of the enabled tools and effective parameters.
//
// [observability] - Hook interfaces with no-op defaults;
// [observability/otel] adapts them to OpenTelemetry spans and metrics.
//
// [errors] - Error codes split into fatal input and validation categories.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
//	go test ./pkg/...                # All tests
//	go test ./pkg/build/...          # Specific package
//
// [tool]: https://pkg.go.dev/github.com/matzehuels/toolrack/pkg/tool
// [catalog]: https://pkg.go.dev/github.com/matzehuels/toolrack/pkg/catalog
// [params]: https://pkg.go.dev/github.com/matzehuels/toolrack/pkg/params
// [layout]: https://pkg.go.dev/github.com/matzehuels/toolrack/pkg/layout
// [validate]: https://pkg.go.dev/github.com/matzehuels/toolrack/pkg/validate
// [build]: https://pkg.go.dev/github.com/matzehuels/toolrack/pkg/build
// [cad]: https://pkg.go.dev/github.com/matzehuels/toolrack/pkg/cad
// [cad/sim]: https://pkg.go.dev/github.com/matzehuels/toolrack/pkg/cad/sim
// [render]: https://pkg.go.dev/github.com/matzehuels/toolrack/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/toolrack/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/toolrack/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/toolrack/pkg/observability
// [observability/otel]: https://pkg.go.dev/github.com/matzehuels/toolrack/pkg/observability/otel
// [errors]: https://pkg.go.dev/github.com/matzehuels/toolrack/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/toolrack/pkg/buildinfo
package pkg
