package julia

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/julia/gpu"
	"github.com/gogpu/julia/render"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for julia and its sub-packages.
// By default, julia produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by julia:
//   - [slog.LevelDebug]: cache decisions (kernel rebuilt or reused, output
//     reallocated, palette uploaded)
//   - [slog.LevelInfo]: device selection
//   - [slog.LevelWarn]: GPU fallback
//
// Example:
//
//	julia.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	render.SetLogger(l)
	gpu.SetLogger(l)
}

// Logger returns the current logger used by julia.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
