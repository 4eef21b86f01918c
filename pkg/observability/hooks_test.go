package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "tools.csv")
	p.OnLoadComplete(ctx, "tools.csv", 2, time.Millisecond, nil)
	p.OnValidateComplete(ctx, 2, time.Millisecond, errors.New("bad"))
	p.OnBuildStart(ctx, "ScrewdriverHolder_GEN", 2)
	p.OnBuildStep(ctx, "ScrewdriverHolder_GEN", "base", 7)
	p.OnBuildComplete(ctx, "ScrewdriverHolder_GEN", 60, 2, time.Millisecond, nil)
	p.OnRenderStart(ctx, []string{"json"})
	p.OnRenderComplete(ctx, []string{"json"}, time.Millisecond, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "plan")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "artifact", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/plan")
	h.OnResponse(ctx, "POST", "/v1/plan", 200, time.Millisecond)
	h.OnError(ctx, "POST", "/v1/plan", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}

	pipeline := &testPipelineHooks{}
	cache := &testCacheHooks{}
	http := &testHTTPHooks{}
	SetPipelineHooks(pipeline)
	SetCacheHooks(cache)
	SetHTTPHooks(http)
	if Pipeline() != pipeline || Cache() != cache || HTTP() != http {
		t.Error("registered hooks not returned by accessors")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() did not restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) replaced the registered hooks")
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
