// Package cli implements the depgraph command-line interface.
//
// Commands edit the task graph of a named workspace, which is loaded before
// the command runs and saved afterwards if the command changed it. The CLI is
// built using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - add, dep, reset: edit tasks and dependencies
//   - list, edges, search: show the graph
//   - import, export: exchange JSON and CSV documents, render diagrams
//   - tui: interactive checklist
//   - serve: HTTP API over the same workspace
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which includes
// every graph mutation, document codec call and cache lookup.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at debug level along with the elapsed time since progress
// was created, e.g. "Imported 42 tasks (12ms)".
func (p *progress) done(msg string) {
	p.logger.Debugf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks writes observability events to the debug log.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnMutation(op string, version uint64, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("graph mutation rejected", "op", op, "error", err)
		return
	}
	h.logger.Debug("graph mutated", "op", op, "version", version, "duration", d)
}

func (h *logHooks) OnDecode(_ context.Context, format string, tasks int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("decode failed", "format", format, "error", err)
		return
	}
	h.logger.Debug("decoded document", "format", format, "tasks", tasks, "duration", d)
}

func (h *logHooks) OnEncode(_ context.Context, format string, tasks int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("encode failed", "format", format, "error", err)
		return
	}
	h.logger.Debug("encoded document", "format", format, "tasks", tasks, "duration", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
