package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func TestNullCacheStoresNothing(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	t.Cleanup(func() { c.Close() })

	if err := c.Set(ctx, "artifact:x", []byte("svg"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if data, hit, err := c.Get(ctx, "artifact:x"); hit || data != nil || err != nil {
		t.Errorf("Get after Set = %q, %v, %v; want a clean miss", data, hit, err)
	}
	if err := c.Delete(ctx, "artifact:x"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestHash(t *testing.T) {
	a, b := Hash([]byte("digraph G {}")), Hash([]byte("digraph H {}"))
	if a != Hash([]byte("digraph G {}")) {
		t.Error("Hash is not deterministic")
	}
	if a == b {
		t.Error("distinct inputs share a hash")
	}
	if len(a) != 64 {
		t.Errorf("len(Hash) = %d, want 64 hex chars", len(a))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	key := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	if !strings.HasPrefix(key, "artifact:") || len(key) != len("artifact:")+64 {
		t.Errorf("ArtifactKey unexpected: %s", key)
	}
	if key != k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"}) {
		t.Error("ArtifactKey should be deterministic")
	}

	// Every input participates in the key
	variants := []string{
		k.ArtifactKey("hash456", ArtifactKeyOpts{Format: "svg"}),
		k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png"}),
		k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", IconsDir: "/icons"}),
	}
	for _, v := range variants {
		if v == key {
			t.Errorf("different inputs produced the same key %s", v)
		}
	}
}

func TestScopedKeyer(t *testing.T) {
	opts := ArtifactKeyOpts{Format: "png"}
	plain := NewDefaultKeyer().ArtifactKey("abc", opts)

	tests := []struct {
		name  string
		inner Keyer
	}{
		{"explicit inner", NewDefaultKeyer()},
		{"nil inner", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewScopedKeyer(tt.inner, "serve:").ArtifactKey("abc", opts); got != "serve:"+plain {
				t.Errorf("ArtifactKey = %s, want serve:%s", got, plain)
			}
		})
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("png-bytes"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "png-bytes" {
		t.Errorf("Get(k) = %q, %v, %v", data, hit, err)
	}

	// Expired entries are misses
	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should be a miss")
	}

	// Corrupt entries are misses
	path := c.(*FileCache).path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("Get(bad) = hit %v, err %v", hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted entry should be a miss")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.(Clearer).Clear(ctx)
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache dir not empty after Clear: %d entries", len(entries))
	}
}

func TestFileCacheClearKeepsForeignFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	foreign := []string{
		filepath.Join(dir, "project", "package.json"),
		filepath.Join(dir, "settings.json"),
		filepath.Join(dir, "ab", "notes.json"),
		filepath.Join(dir, "ab", strings.Repeat("c", 62)+".txt"),
	}
	for _, p := range foreign {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	empty := filepath.Join(dir, "assets")
	if err := os.Mkdir(empty, 0755); err != nil {
		t.Fatal(err)
	}

	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "artifact:x", []byte("svg"), 0); err != nil {
		t.Fatal(err)
	}

	n, err := c.(Clearer).Clear(ctx)
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 1 {
		t.Errorf("Clear removed %d entries, want 1", n)
	}
	for _, p := range append(foreign, empty) {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Clear touched %s: %v", p, err)
		}
	}
	if _, hit, _ := c.Get(ctx, "artifact:x"); hit {
		t.Error("cached entry survived Clear")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*NullCache); !ok {
		t.Errorf("Open(\"\", \"\") = %T, want *NullCache", c)
	}

	dir := t.TempDir()
	c, err = Open(ctx, "", dir)
	if err != nil {
		t.Fatal(err)
	}
	if fc, ok := c.(*FileCache); !ok || fc.Dir() != dir {
		t.Errorf("Open(\"\", dir) = %T, want *FileCache in %s", c, dir)
	}

	sub := filepath.Join(dir, "sub")
	c, err = Open(ctx, "file://"+sub, "")
	if err != nil {
		t.Fatal(err)
	}
	if fc, ok := c.(*FileCache); !ok || fc.Dir() != sub {
		t.Errorf("Open(file://) = %T, want *FileCache in %s", c, sub)
	}

	if _, err := Open(ctx, "memcached://localhost", ""); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("Open(memcached://) error = %v, want ErrUnsupportedScheme", err)
	}
}

func TestMongoDatabase(t *testing.T) {
	tests := map[string]string{
		"mongodb://localhost:27017":             "stackdiagrams",
		"mongodb://localhost:27017/":            "stackdiagrams",
		"mongodb://localhost:27017/renders":     "renders",
		"mongodb+srv://u:p@cluster.x/cache?w=1": "cache",
	}
	for uri, want := range tests {
		if got := mongoDatabase(uri); got != want {
			t.Errorf("mongoDatabase(%q) = %q, want %q", uri, got, want)
		}
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("STACKDIAGRAMS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("STACKDIAGRAMS_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url)
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "test-key", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "test-key")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "test-key"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "test-key"); hit {
		t.Error("deleted key should be a miss")
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should stay nil")
	}
	err := Retryable(errTransient)
	if !IsRetryable(err) || err.Error() != errTransient.Error() {
		t.Errorf("Retryable(%v) = %v, retryable %v", errTransient, err, IsRetryable(err))
	}
	if !errors.Is(err, errTransient) {
		t.Error("Retryable should keep the cause reachable")
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("plain errors are not retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond

	tests := []struct {
		name      string
		failures  int
		failWith  error
		wantErr   error
		wantCalls int
	}{
		{"first try", 0, nil, nil, 1},
		{"permanent error", 5, ErrUnavailable, ErrUnavailable, 1},
		{"recovers", 1, Retryable(errTransient), nil, 2},
		{"gives up", 5, Retryable(errTransient), errTransient, connectAttempts},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.failWith
				}
				return nil
			})
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoffCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error { return Retryable(errTransient) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
