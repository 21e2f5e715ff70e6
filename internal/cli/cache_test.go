package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/asciifolio/pkg/cache"
)

// cacheConfig writes a config whose file cache lives in a temp dir.
func cacheConfig(t *testing.T, backend string) (path, dir string) {
	t.Helper()
	base := t.TempDir()
	dir = filepath.Join(base, "cache")
	path = filepath.Join(base, "asciifolio.toml")
	data := fmt.Sprintf("[cache]\nbackend = %q\ndir = %q\n", backend, dir)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path, dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCachePath(t *testing.T) {
	path, dir := cacheConfig(t, "file")

	out, err := runCLI(t, "--config", path, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if got := strings.TrimSpace(out); got != dir {
		t.Errorf("cache path = %q, want %q", got, dir)
	}
}

func TestCacheClear(t *testing.T) {
	path, dir := cacheConfig(t, "file")

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"a", "b"} {
		if err := fc.Set(ctx, key, []byte("img"), time.Hour); err != nil {
			t.Fatal(err)
		}
	}
	fc.Close()

	if _, err := runCLI(t, "--config", path, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}

	fc, err = cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer fc.Close()
	if _, ok, _ := fc.Get(ctx, "a"); ok {
		t.Error("entry still cached after clear")
	}
}

func TestCacheClearEmpty(t *testing.T) {
	path, _ := cacheConfig(t, "file")
	if _, err := runCLI(t, "--config", path, "cache", "clear"); err != nil {
		t.Errorf("cache clear on a missing dir error: %v", err)
	}
}

func TestCacheClearNoneBackend(t *testing.T) {
	path, _ := cacheConfig(t, "none")
	if _, err := runCLI(t, "--config", path, "cache", "clear"); err != nil {
		t.Errorf("cache clear with backend none error: %v", err)
	}
}
