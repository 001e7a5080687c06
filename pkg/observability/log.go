package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by logging at debug level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger. A nil logger uses the
// charmbracelet default logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) OnExtractStart(_ context.Context, traceCount int) {
	h.logger.Debug("extract start", "traces", traceCount)
}

func (h *LogHooks) OnExtractComplete(_ context.Context, traceCount, leafCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("extract failed", "traces", traceCount, "duration", d, "err", err)
		return
	}
	h.logger.Debug("extract complete", "traces", traceCount, "leaves", leafCount, "duration", d)
}

func (h *LogHooks) OnMergeComplete(_ context.Context, leafCount int, d time.Duration) {
	h.logger.Debug("merge complete", "leaves", leafCount, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
