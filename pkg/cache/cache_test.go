package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set() error = %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v, want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

// roundTrip exercises the behaviour every storing backend shares.
func roundTrip(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) hit = %v, err = %v, want miss", hit, err)
	}
	if err := c.Set(ctx, "plan:abc", []byte(`{"ok":true}`), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, hit, err := c.Get(ctx, "plan:abc")
	if err != nil || !hit {
		t.Fatalf("Get() hit = %v, err = %v, want hit", hit, err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("Get() = %q, want %q", data, `{"ok":true}`)
	}
	if err := c.Delete(ctx, "plan:abc"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, hit, _ := c.Get(ctx, "plan:abc"); hit {
		t.Error("Get() after Delete() still hits")
	}
	if err := c.Delete(ctx, "plan:abc"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	roundTrip(t, c)
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "short", []byte("x"), time.Minute)
	_ = c.Set(ctx, "forever", []byte("y"), 0)
	now = now.Add(time.Hour)

	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry still hits")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl expired")
	}
}

func TestFileCacheClear(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear()")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	roundTrip(t, c)

	now := time.Now()
	c.now = func() time.Time { return now }
	_ = c.Set(context.Background(), "k", []byte("v"), time.Second)
	now = now.Add(2 * time.Second)
	if _, hit, _ := c.Get(context.Background(), "k"); hit {
		t.Error("expired entry still hits")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after expiry", c.Len())
	}
}

func TestMemoryCacheCopies(t *testing.T) {
	c := NewMemoryCache()
	buf := []byte("abc")
	_ = c.Set(context.Background(), "k", buf, 0)
	buf[0] = 'z'
	data, _, _ := c.Get(context.Background(), "k")
	if string(data) != "abc" {
		t.Errorf("Get() = %q, want stored value unaffected by caller", data)
	}
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	if err == nil {
		t.Fatal("NewRedisCache() error = nil, want connection failure")
	}
	if !strings.Contains(err.Error(), "127.0.0.1:1") {
		t.Errorf("error %q does not name the address", err)
	}
}

func TestHash(t *testing.T) {
	if Hash([]byte("hello")) != Hash([]byte("hello")) {
		t.Error("Hash is not deterministic")
	}
	if Hash([]byte("hello")) == Hash([]byte("world")) {
		t.Error("different inputs share a hash")
	}
	if n := len(Hash([]byte("hello"))); n != 64 {
		t.Errorf("len(Hash()) = %d, want 64", n)
	}

	a, _ := HashJSON(map[string]any{"x": 1, "y": "z"})
	b, _ := HashJSON(map[string]any{"y": "z", "x": 1})
	if a != b {
		t.Error("HashJSON depends on map order")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	l1 := k.LayoutKey("cat", LayoutKeyOpts{ParamsHash: "p1"})
	l2 := k.LayoutKey("cat", LayoutKeyOpts{ParamsHash: "p2"})
	if l1 == l2 {
		t.Error("different params share a layout key")
	}
	if !strings.HasPrefix(l1, "layout:") {
		t.Errorf("LayoutKey() = %q, want layout: prefix", l1)
	}

	p1 := k.PlanKey("cat", PlanKeyOpts{ParamsHash: "p", Component: "A"})
	p2 := k.PlanKey("cat", PlanKeyOpts{ParamsHash: "p", Component: "B"})
	if p1 == p2 {
		t.Error("different components share a plan key")
	}

	a1 := k.ArtifactKey("plan", ArtifactKeyOpts{Format: "svg"})
	a2 := k.ArtifactKey("plan", ArtifactKeyOpts{Format: "dot"})
	if a1 == a2 {
		t.Error("different formats share an artifact key")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "api:")
	opts := PlanKeyOpts{ParamsHash: "p"}
	if got, want := scoped.PlanKey("cat", opts), "api:"+inner.PlanKey("cat", opts); got != want {
		t.Errorf("PlanKey() = %q, want %q", got, want)
	}

	nilInner := NewScopedKeyer(nil, "x:")
	if got := nilInner.ArtifactKey("h", ArtifactKeyOpts{}); !strings.HasPrefix(got, "x:artifact:") {
		t.Errorf("ArtifactKey() with nil inner = %q", got)
	}
}

var errPermanent = errors.New("permanent")

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) != nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable(Retryable(err)) = false")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("Retryable does not unwrap to its cause")
	}
	if IsRetryable(errPermanent) {
		t.Error("IsRetryable(plain error) = true")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = 100 * time.Millisecond })
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		failWith  error
		wantCalls int
		wantErr   error
	}{
		{"first try", 0, nil, 1, nil},
		{"permanent", 5, errPermanent, 1, errPermanent},
		{"recovers", 1, Retryable(ErrNetwork), 2, nil},
		{"gives up", 5, Retryable(ErrNetwork), 3, ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.failures {
					return tt.failWith
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryWithBackoffCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrNetwork) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
