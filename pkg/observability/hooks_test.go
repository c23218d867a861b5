package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type countingCache struct {
	NoopCacheHooks
	mu   sync.Mutex
	hits int
}

func (c *countingCache) OnCacheHit(context.Context, string) {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func TestDefaultsAreNoop(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	ctx := context.Background()
	Pipeline().OnBuildComplete(ctx, "hld", 16, 17, time.Millisecond, nil)
	Pipeline().OnRenderComplete(ctx, "hld", []string{"svg"}, time.Second, errors.New("ignored"))
	Cache().OnCacheSet(ctx, "artifact", 1024)
	HTTP().OnError(ctx, "req-1", "GET", "/diagrams/hld.svg", nil)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}
}

func TestSetAndReset(t *testing.T) {
	t.Cleanup(Reset)

	counter := &countingCache{}
	SetCacheHooks(counter)
	SetCacheHooks(nil)
	Cache().OnCacheHit(context.Background(), "artifact")

	if counter.hits != 1 {
		t.Errorf("hits = %d, want 1 (nil must not replace installed hooks)", counter.hits)
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("setting cache hooks must leave pipeline hooks alone")
	}

	Reset()
	if Cache() == CacheHooks(counter) {
		t.Error("Reset should restore the no-op cache hooks")
	}
}

func TestConcurrentSet(t *testing.T) {
	t.Cleanup(Reset)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(3)
		go func() { defer wg.Done(); SetPipelineHooks(NoopPipelineHooks{}) }()
		go func() { defer wg.Done(); SetHTTPHooks(NoopHTTPHooks{}) }()
		go func() { defer wg.Done(); Cache().OnCacheMiss(context.Background(), "artifact") }()
	}
	wg.Wait()

	counter := &countingCache{}
	SetCacheHooks(counter)
	if Cache() != CacheHooks(counter) {
		t.Error("cache hooks lost after concurrent updates")
	}
}

func TestLogHooks(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	p := NewLogPipelineHooks(logger)
	p.OnBuildComplete(ctx, "otlp-flow", 9, 12, time.Millisecond, nil)
	p.OnRenderComplete(ctx, "OTLP Flow", []string{"png"}, time.Second, errors.New("boom"))
	NewLogCacheHooks(logger).OnCacheSet(ctx, "artifact", 2048)
	NewLogHTTPHooks(logger).OnResponse(ctx, "req-1", "GET", "/healthz", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"build done", "otlp-flow", "render failed", "boom", "cache set", "2048", "GET /healthz", "req-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksRespectLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})

	NewLogPipelineHooks(logger).OnRenderStart(context.Background(), "hld", []string{"svg"})
	NewLogCacheHooks(logger).OnCacheHit(context.Background(), "artifact")
	if buf.Len() != 0 {
		t.Errorf("debug events logged at info level: %s", buf.String())
	}
}
