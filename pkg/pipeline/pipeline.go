// Package pipeline runs the load → validate → build → render sequence that
// the CLI and the HTTP API share.
//
// # Stages
//
//  1. Load: read the tool catalog and the parameter overlay (or take both
//     inline from the request)
//  2. Validate: run every fatal check and compute the grid
//  3. Build: issue the modeling operations against a backend (the analytic
//     preview kernel by default) and assemble the plan document
//  4. Render: produce the requested output formats
//
// Plans and rendered artifacts are cached through [cache.Cache], keyed by
// the hashes of the enabled tools and the effective parameters. A fatal
// input or validation error stops the run before any backend call.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Catalog: "tools.csv",
//	    Formats: []string{render.FormatJSON, render.FormatSVG},
//	})
//	if errors.IsFatal(err) {
//	    // report errors.UserMessage(err) and stop
//	}
//	plan := res.Artifacts[render.FormatJSON]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/toolrack/pkg/build"
	"github.com/matzehuels/toolrack/pkg/cache"
	"github.com/matzehuels/toolrack/pkg/cad"
	"github.com/matzehuels/toolrack/pkg/cad/sim"
	"github.com/matzehuels/toolrack/pkg/errors"
	"github.com/matzehuels/toolrack/pkg/layout"
	"github.com/matzehuels/toolrack/pkg/params"
	"github.com/matzehuels/toolrack/pkg/render"
	"github.com/matzehuels/toolrack/pkg/tool"
)

const (
	// DefaultName is the component name used when none is given.
	DefaultName = params.DefaultComponentName

	// DefaultBackend names the analytic preview kernel in cache keys.
	DefaultBackend = "sim"
)

// DefaultFormats are rendered when Options.Formats is empty.
var DefaultFormats = []string{render.FormatJSON}

// Options configures one pipeline run. Tools and Params take precedence
// over Catalog and ParamsFile, which lets API callers send both inline.
type Options struct {
	Catalog    string      `json:"catalog,omitempty"`
	Tools      []tool.Tool `json:"tools,omitempty"`
	ParamsFile string      `json:"params_file,omitempty"`
	Params     *params.Set `json:"params,omitempty"`

	// MountStyle overrides the mount_style parameter when set.
	MountStyle string   `json:"mount_style,omitempty"`
	Name       string   `json:"name,omitempty"`
	Formats    []string `json:"formats,omitempty"`

	// Refresh skips cache reads but still writes results.
	Refresh bool `json:"refresh,omitempty"`

	// NewBackend creates the modeling backend for a build. Defaults to a
	// fresh sim.Kernel per run.
	NewBackend  func() cad.Backend `json:"-"`
	BackendName string             `json:"-"`
	Logger      *log.Logger        `json:"-"`
}

// SetDefaults fills unset fields. It is idempotent.
func (o *Options) SetDefaults() {
	if o.Name == "" {
		o.Name = DefaultName
	}
	if len(o.Formats) == 0 {
		o.Formats = append([]string(nil), DefaultFormats...)
	}
	if o.NewBackend == nil {
		o.NewBackend = func() cad.Backend { return sim.New() }
		o.BackendName = DefaultBackend
	}
	if o.BackendName == "" {
		o.BackendName = "custom"
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the options themselves. Catalog and parameter contents
// are checked by the Validate stage.
func (o *Options) Validate() error {
	if o.Catalog == "" && o.Tools == nil {
		return errors.New(errors.ErrCodeInvalidInput, "a catalog path or inline tools are required")
	}
	if err := errors.ValidateComponentName(o.Name); err != nil {
		return err
	}
	if o.MountStyle != "" {
		if err := errors.ValidateMountStyle(string(params.ParseMountStyle(o.MountStyle))); err != nil {
			return err
		}
	}
	return render.ValidateFormats(o.Formats)
}

// Result holds everything a run produced.
type Result struct {
	Tools  []tool.Tool
	Params params.Set
	Grid   layout.Grid
	Plan   render.Document

	// Artifacts maps format name to rendered bytes.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Warnings returns the plan's geometry warnings.
func (r *Result) Warnings() []build.Warning { return r.Plan.Warnings }

// Stats records sizes and stage timings.
type Stats struct {
	ToolCount    int
	Rows         int
	Cols         int
	Ops          int
	Warnings     int
	LoadTime     time.Duration
	ValidateTime time.Duration
	BuildTime    time.Duration
	RenderTime   time.Duration
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	PlanHit   bool
	RenderHit bool
}

// planKeyOpts returns the plan cache key inputs for a validated run.
func (o *Options) planKeyOpts(paramsHash string) cache.PlanKeyOpts {
	return cache.PlanKeyOpts{
		ParamsHash: paramsHash,
		Component:  o.Name,
		Backend:    o.BackendName,
	}
}
