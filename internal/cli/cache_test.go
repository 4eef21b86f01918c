package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/toolrack/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestClearCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), appName)

	if n, err := clearCache(dir); err != nil || n != -1 {
		t.Fatalf("clearCache(missing) = %d, %v, want -1, nil", n, err)
	}

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, k := range []string{"plan:a", "plan:b", "artifact:c"} {
		if err := fc.Set(ctx, k, []byte("{}"), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	n, err := clearCache(dir)
	if err != nil {
		t.Fatalf("clearCache() error = %v", err)
	}
	if n != 3 {
		t.Errorf("clearCache() = %d, want 3", n)
	}
	if _, hit, _ := fc.Get(ctx, "plan:a"); hit {
		t.Error("entry survived clearCache")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache root removed: %v", err)
	}
}

func TestNewCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c, err := newCache(true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("newCache(noCache) = %T, want cache.NullCache", c)
	}

	c, err = newCache(false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("newCache() = %T, want *cache.FileCache", c)
	}
}
