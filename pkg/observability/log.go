package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogPipelineHooks writes pipeline events to a charmbracelet logger at debug level.
type LogPipelineHooks struct{ logger *log.Logger }

// NewLogPipelineHooks creates log-backed pipeline hooks.
func NewLogPipelineHooks(logger *log.Logger) *LogPipelineHooks {
	return &LogPipelineHooks{logger: logger}
}

func (h *LogPipelineHooks) OnBuildStart(_ context.Context, source string) {
	h.logger.Debug("build start", "source", source)
}

func (h *LogPipelineHooks) OnBuildComplete(_ context.Context, source string, nodes, edges int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("build failed", "source", source, "error", err)
		return
	}
	h.logger.Debug("build done", "source", source, "nodes", nodes, "edges", edges, "took", d.Round(time.Microsecond))
}

func (h *LogPipelineHooks) OnRenderStart(_ context.Context, diagram string, formats []string) {
	h.logger.Debug("render start", "diagram", diagram, "formats", formats)
}

func (h *LogPipelineHooks) OnRenderComplete(_ context.Context, diagram string, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "diagram", diagram, "error", err)
		return
	}
	h.logger.Debug("render done", "diagram", diagram, "formats", formats, "took", d.Round(time.Millisecond))
}

// LogCacheHooks writes cache events to a charmbracelet logger at debug level.
type LogCacheHooks struct{ logger *log.Logger }

// NewLogCacheHooks creates log-backed cache hooks.
func NewLogCacheHooks(logger *log.Logger) *LogCacheHooks {
	return &LogCacheHooks{logger: logger}
}

func (h *LogCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "key", keyType)
}

func (h *LogCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "key", keyType)
}

func (h *LogCacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key", keyType, "bytes", size)
}

// LogHTTPHooks writes preview server events to a charmbracelet logger.
// Responses are logged at info level, everything else at debug.
type LogHTTPHooks struct{ logger *log.Logger }

// NewLogHTTPHooks creates log-backed HTTP hooks.
func NewLogHTTPHooks(logger *log.Logger) *LogHTTPHooks {
	return &LogHTTPHooks{logger: logger}
}

func (h *LogHTTPHooks) OnRequest(_ context.Context, id, method, path string) {
	h.logger.Debug("request", "id", id, "method", method, "path", path)
}

func (h *LogHTTPHooks) OnResponse(_ context.Context, id, method, path string, status int, d time.Duration) {
	h.logger.Info(method+" "+path, "status", status, "took", d.Round(time.Millisecond), "id", id)
}

func (h *LogHTTPHooks) OnError(_ context.Context, id, method, path string, err error) {
	h.logger.Error(method+" "+path, "error", err, "id", id)
}

var (
	_ PipelineHooks = (*LogPipelineHooks)(nil)
	_ CacheHooks    = (*LogCacheHooks)(nil)
	_ HTTPHooks     = (*LogHTTPHooks)(nil)
)
