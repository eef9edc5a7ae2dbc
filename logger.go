package imgres

import (
	"log/slog"

	"github.com/gogpu/imgres/internal/logging"
)

// SetLogger configures the logger for imgres and all its sub-packages.
// By default, imgres produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by imgres:
//   - [slog.LevelDebug]: cache hits and misses, frame compositing, GPU uploads
//   - [slog.LevelInfo]: lifecycle events (resource opened, resource disposed)
//   - [slog.LevelWarn]: non-fatal issues (unreachable source, frame decode failure)
//
// Every record about a resource carries a "ref" attribute naming it.
//
// Example:
//
//	// Enable debug-level logging for full diagnostics:
//	imgres.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by imgres.
// Sub-packages share the same logger configuration.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
