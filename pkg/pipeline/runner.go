package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/toolrack/pkg/build"
	"github.com/matzehuels/toolrack/pkg/cache"
	"github.com/matzehuels/toolrack/pkg/catalog"
	"github.com/matzehuels/toolrack/pkg/errors"
	"github.com/matzehuels/toolrack/pkg/layout"
	"github.com/matzehuels/toolrack/pkg/observability"
	"github.com/matzehuels/toolrack/pkg/params"
	"github.com/matzehuels/toolrack/pkg/render"
	"github.com/matzehuels/toolrack/pkg/tool"
	"github.com/matzehuels/toolrack/pkg/validate"
)

// Runner executes pipeline stages with caching. It holds no per-run state,
// so one Runner may serve concurrent runs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer uses
// cache.DefaultKeyer and a nil logger uses log.Default.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs every stage.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	res := &Result{}

	start := time.Now()
	hooks.OnLoadStart(ctx, opts.source())
	tools, p, err := r.Load(opts)
	res.Stats.LoadTime = time.Since(start)
	hooks.OnLoadComplete(ctx, opts.source(), len(tools), res.Stats.LoadTime, err)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	res.Tools, res.Params = tools, p
	res.Stats.ToolCount = len(tool.Enabled(tools))
	r.Logger.Info("loaded inputs", "source", opts.source(), "tools", res.Stats.ToolCount, "duration", res.Stats.LoadTime)

	start = time.Now()
	g, err := validate.Inputs(tools, p)
	res.Stats.ValidateTime = time.Since(start)
	hooks.OnValidateComplete(ctx, res.Stats.ToolCount, res.Stats.ValidateTime, err)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	res.Grid = g
	res.Stats.Rows, res.Stats.Cols = g.Rows(), g.Cols()
	r.Logger.Debug("validated inputs", "rows", g.Rows(), "cols", g.Cols(),
		"width", g.PartWidth, "depth", g.PartDepth)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	doc, hit, err := r.Plan(ctx, opts, tools, g, p)
	res.Stats.BuildTime = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	res.Plan = doc
	res.CacheInfo.PlanHit = hit
	res.Stats.Ops = len(doc.Ops)
	res.Stats.Warnings = len(doc.Warnings)
	r.Logger.Info("built plan", "component", doc.Component, "ops", len(doc.Ops),
		"warnings", len(doc.Warnings), "cached", hit, "duration", res.Stats.BuildTime)

	start = time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	artifacts, hit, err := r.Render(ctx, opts, render.Inputs{Doc: doc, Grid: g, Tools: tools, Params: p})
	res.Stats.RenderTime = time.Since(start)
	hooks.OnRenderComplete(ctx, opts.Formats, res.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.CacheInfo.RenderHit = hit
	r.Logger.Info("rendered outputs", "formats", opts.Formats, "cached", hit, "duration", res.Stats.RenderTime)

	return res, nil
}

// Load resolves the tools and the effective parameter set.
func (r *Runner) Load(opts Options) ([]tool.Tool, params.Set, error) {
	tools := opts.Tools
	if tools == nil {
		var err error
		if tools, err = catalog.Load(opts.Catalog); err != nil {
			return nil, params.Set{}, err
		}
	}

	var p params.Set
	if opts.Params != nil {
		p = *opts.Params
	} else {
		var err error
		if p, err = params.Load(opts.ParamsFile); err != nil {
			return nil, params.Set{}, err
		}
	}
	if opts.MountStyle != "" {
		p.MountStyle = params.ParseMountStyle(opts.MountStyle)
	}
	return tools, p, nil
}

// Layout validates tools and parameters and summarises the grid. Unlike
// Execute it stops short of the layout-dependent checks, so a layout can be
// inspected even when its spacing would be rejected.
func (r *Runner) Layout(ctx context.Context, tools []tool.Tool, p params.Set) (render.LayoutSummary, bool, error) {
	if err := validate.Tools(tools); err != nil {
		return render.LayoutSummary{}, false, err
	}
	if err := validate.Params(p); err != nil {
		return render.LayoutSummary{}, false, err
	}

	catHash, paramsHash, err := inputHashes(tools, p)
	if err != nil {
		return render.LayoutSummary{}, false, err
	}
	key := r.Keyer.LayoutKey(catHash, cache.LayoutKeyOpts{ParamsHash: paramsHash})

	var summary render.LayoutSummary
	if r.get(ctx, "layout", key, &summary) {
		return summary, true, nil
	}
	summary = render.Summarize(layout.Compute(tools, p), tools, p)
	r.set(ctx, "layout", key, summary, cache.TTLLayout)
	return summary, false, nil
}

// Plan builds the plan document for validated inputs, or returns the cached
// one. A cached plan keeps the run id of the build that produced it.
func (r *Runner) Plan(ctx context.Context, opts Options, tools []tool.Tool, g layout.Grid, p params.Set) (render.Document, bool, error) {
	opts.SetDefaults()
	catHash, paramsHash, err := inputHashes(tools, p)
	if err != nil {
		return render.Document{}, false, err
	}
	key := r.Keyer.PlanKey(catHash, opts.planKeyOpts(paramsHash))

	var doc render.Document
	if !opts.Refresh && r.get(ctx, "plan", key, &doc) {
		return doc, true, nil
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnBuildStart(ctx, opts.Name, len(tool.Enabled(tools)))
	res, err := build.BuildWithHook(ctx, opts.NewBackend(), build.Spec{
		Name:   opts.Name,
		Tools:  tools,
		Grid:   g,
		Params: p,
	}, func(step string, ops int) {
		hooks.OnBuildStep(ctx, opts.Name, step, ops)
		r.Logger.Debug("build step", "step", step, "ops", ops)
	})
	var ops, warnings int
	if res != nil {
		ops, warnings = len(res.Ops), len(res.Warnings)
	}
	hooks.OnBuildComplete(ctx, opts.Name, ops, warnings, time.Since(start), err)
	if err != nil {
		return render.Document{}, false, err
	}
	for _, w := range res.Warnings {
		r.Logger.Warn(w.Message, "kind", w.Kind, "tool", w.Tool)
	}

	doc = render.NewDocument(res, g, tools, p)
	r.set(ctx, "plan", key, doc, cache.TTLPlan)
	return doc, false, nil
}

// Render produces every format in opts.Formats. The result counts as a cache
// hit only when every format was cached.
func (r *Runner) Render(ctx context.Context, opts Options, in render.Inputs) (map[string][]byte, bool, error) {
	opts.SetDefaults()
	if err := render.ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	planHash, err := cache.HashJSON(in.Doc)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash plan")
	}

	out := make(map[string][]byte, len(opts.Formats))
	allHit := true
	for _, f := range opts.Formats {
		key := r.Keyer.ArtifactKey(planHash, cache.ArtifactKeyOpts{Format: f})
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				out[f] = data
				continue
			}
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		allHit = false

		data, err := render.Artifact(ctx, f, in)
		if err != nil {
			return nil, false, err
		}
		out[f] = data
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "format", f, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return out, allHit, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// get decodes a cached JSON value into v. Backend failures and undecodable
// entries count as misses.
func (r *Runner) get(ctx context.Context, keyType, key string, v any) bool {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !hit || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

func (r *Runner) set(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// inputHashes hashes the enabled tools and the parameter values. Disabled
// rows do not affect the keys; tool order does, since it fixes the order of
// the recorded operations.
func inputHashes(tools []tool.Tool, p params.Set) (string, string, error) {
	catHash, err := cache.HashJSON(tool.Enabled(tools))
	if err != nil {
		return "", "", errors.Wrap(errors.ErrCodeInternal, err, "hash tools")
	}
	paramsHash, err := cache.HashJSON(p.Values())
	if err != nil {
		return "", "", errors.Wrap(errors.ErrCodeInternal, err, "hash params")
	}
	return catHash, paramsHash, nil
}

// source names where the tools come from, for logs and hooks.
func (o *Options) source() string {
	if o.Tools != nil {
		return "inline"
	}
	return o.Catalog
}
