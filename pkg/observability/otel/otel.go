// Package otel adapts the observability hooks to OpenTelemetry.
//
// Completion events become spans whose start time is back-dated by the
// reported duration, so no span state is kept between a start and its
// completion. Counters and histograms are recorded alongside.
package otel

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/toolrack/pkg/errors"
	"github.com/matzehuels/toolrack/pkg/observability"
)

// Hooks implements every observability hook interface.
type Hooks struct {
	tracer trace.Tracer
	now    func() time.Time

	runs          metric.Int64Counter
	failures      metric.Int64Counter
	warnings      metric.Int64Counter
	backendOps    metric.Int64Counter
	stageDuration metric.Float64Histogram
	cacheLookups  metric.Int64Counter
	cacheBytes    metric.Int64Counter
	requests      metric.Int64Counter
	reqDuration   metric.Float64Histogram
}

// New creates Hooks recording spans with tracer and instruments from meter.
func New(tracer trace.Tracer, meter metric.Meter) (*Hooks, error) {
	h := &Hooks{tracer: tracer, now: time.Now}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&h.runs, "toolrack.build.runs", "Number of completed builds", ""},
		{&h.failures, "toolrack.stage.failures", "Number of failed pipeline stages", ""},
		{&h.warnings, "toolrack.build.warnings", "Number of geometry warnings", ""},
		{&h.backendOps, "toolrack.build.operations", "Number of modeling backend operations", ""},
		{&h.cacheLookups, "toolrack.cache.lookups", "Number of cache lookups", ""},
		{&h.cacheBytes, "toolrack.cache.written", "Bytes written to the cache", "By"},
		{&h.requests, "toolrack.http.requests", "Number of API requests", ""},
	}
	for _, c := range counters {
		opts := []metric.Int64CounterOption{metric.WithDescription(c.desc)}
		if c.unit != "" {
			opts = append(opts, metric.WithUnit(c.unit))
		}
		ctr, err := meter.Int64Counter(c.name, opts...)
		if err != nil {
			return nil, err
		}
		*c.dst = ctr
	}

	var err error
	h.stageDuration, err = meter.Float64Histogram("toolrack.stage.duration",
		metric.WithDescription("Duration of pipeline stages in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	h.reqDuration, err = meter.Float64Histogram("toolrack.http.duration",
		metric.WithDescription("Duration of API requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Register installs h as the pipeline, cache and HTTP hooks.
func (h *Hooks) Register() {
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

// span records a finished span that started duration ago.
func (h *Hooks) span(ctx context.Context, name string, duration time.Duration, err error, attrs ...attribute.KeyValue) {
	end := h.now()
	_, s := h.tracer.Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(end.Add(-duration)),
	)
	if err != nil {
		s.RecordError(err)
		s.SetStatus(codes.Error, errors.UserMessage(err))
		if code := errors.GetCode(err); code != "" {
			s.SetAttributes(attribute.String("toolrack.error_code", string(code)))
		}
	} else {
		s.SetStatus(codes.Ok, "")
	}
	s.End(trace.WithTimestamp(end))
}

func (h *Hooks) stage(ctx context.Context, stage string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("stage", stage))
	h.stageDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		h.failures.Add(ctx, 1, attrs)
	}
}

func (h *Hooks) OnLoadStart(context.Context, string) {}

func (h *Hooks) OnLoadComplete(ctx context.Context, source string, toolCount int, duration time.Duration, err error) {
	h.span(ctx, "toolrack.load", duration, err,
		attribute.String("toolrack.source", source),
		attribute.Int("toolrack.tools", toolCount),
	)
	h.stage(ctx, "load", duration, err)
}

func (h *Hooks) OnValidateComplete(ctx context.Context, toolCount int, duration time.Duration, err error) {
	h.span(ctx, "toolrack.validate", duration, err, attribute.Int("toolrack.tools", toolCount))
	h.stage(ctx, "validate", duration, err)
}

func (h *Hooks) OnBuildStart(context.Context, string, int) {}

// OnBuildStep adds an event to the span active in ctx, if any.
func (h *Hooks) OnBuildStep(ctx context.Context, component, step string, opCount int) {
	trace.SpanFromContext(ctx).AddEvent("build.step", trace.WithAttributes(
		attribute.String("toolrack.component", component),
		attribute.String("toolrack.step", step),
		attribute.Int("toolrack.ops", opCount),
	))
}

func (h *Hooks) OnBuildComplete(ctx context.Context, component string, opCount, warnings int, duration time.Duration, err error) {
	h.span(ctx, "toolrack.build", duration, err,
		attribute.String("toolrack.component", component),
		attribute.Int("toolrack.ops", opCount),
		attribute.Int("toolrack.warnings", warnings),
	)
	h.stage(ctx, "build", duration, err)
	if err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("component", component))
	h.runs.Add(ctx, 1, attrs)
	h.backendOps.Add(ctx, int64(opCount), attrs)
	h.warnings.Add(ctx, int64(warnings), attrs)
}

func (h *Hooks) OnRenderStart(context.Context, []string) {}

func (h *Hooks) OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error) {
	h.span(ctx, "toolrack.render", duration, err, attribute.String("toolrack.formats", strings.Join(formats, ",")))
	h.stage(ctx, "render", duration, err)
}

func (h *Hooks) OnCacheHit(ctx context.Context, keyType string) {
	h.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key_type", keyType), attribute.Bool("hit", true)))
}

func (h *Hooks) OnCacheMiss(ctx context.Context, keyType string) {
	h.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key_type", keyType), attribute.Bool("hit", false)))
}

func (h *Hooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	h.cacheBytes.Add(ctx, int64(size), metric.WithAttributes(attribute.String("key_type", keyType)))
}

func (h *Hooks) OnRequest(context.Context, string, string) {}

func (h *Hooks) OnResponse(ctx context.Context, method, route string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	h.requests.Add(ctx, 1, attrs)
	h.reqDuration.Record(ctx, duration.Seconds(), attrs)
}

func (h *Hooks) OnError(ctx context.Context, method, route string, err error) {
	trace.SpanFromContext(ctx).RecordError(err, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
	))
}

var (
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.HTTPHooks     = (*Hooks)(nil)
)
