package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/asciifolio/pkg/observability"
)

// traceHooks reports library events at debug level.
type traceHooks struct {
	logger *log.Logger
}

var (
	_ observability.RenderHooks = traceHooks{}
	_ observability.FilterHooks = traceHooks{}
	_ observability.CacheHooks  = traceHooks{}
	_ observability.HTTPHooks   = traceHooks{}
)

func (h traceHooks) OnRenderStart(_ context.Context, target, src string) {
	h.logger.Debug("render started", "target", target, "src", src)
}

func (h traceHooks) OnRenderComplete(_ context.Context, target string, cells int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "target", target, "took", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("render complete", "target", target, "cells", cells, "took", d.Round(time.Millisecond))
}

func (h traceHooks) OnRenderStale(_ context.Context, target string) {
	h.logger.Debug("render superseded", "target", target)
}

func (h traceHooks) OnTransition(from, to string, entered, exited, moved int) {
	h.logger.Debug("filter", "from", from, "to", to, "entered", entered, "exited", exited, "moved", moved)
}

func (h traceHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h traceHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h traceHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h traceHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("fetching", "method", method, "host", host, "path", path)
}

func (h traceHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("fetched", "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h traceHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("fetch failed", "method", method, "host", host, "path", path, "err", err)
}

// installHooks routes library events to the CLI logger.
func (c *CLI) installHooks() {
	h := traceHooks{logger: c.Logger}
	observability.SetRenderHooks(h)
	observability.SetFilterHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}
