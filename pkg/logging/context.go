package logging

import (
	"log/slog"

	"memsim/pkg/primitives"
)

// WithPage creates a logger with page context.
// Use this for load/unload bookkeeping on a single page.
//
// Example:
//
//	log := logging.WithPage(page.ID())
//	log.Debug("process loaded", "pid", pid, "offset", off)
func WithPage(pageID primitives.PageID) *slog.Logger {
	return GetLogger().With("page_id", pageID)
}

// WithPID creates a logger with process context.
func WithPID(pid primitives.PID) *slog.Logger {
	return GetLogger().With("pid", pid)
}

// WithPagePID creates a logger with both page and process context.
func WithPagePID(pageID primitives.PageID, pid primitives.PID) *slog.Logger {
	return GetLogger().With("page_id", pageID, "pid", pid)
}

// WithComponent creates a logger with component/subsystem context.
//
// Example:
//
//	log := logging.WithComponent("ram")
//	log.Info("component initialized")
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithError creates a logger with error context.
// Use this when logging errors to include the error in structured format.
//
// Example:
//
//	log := logging.WithError(err)
//	log.Warn("load rejected", "page_id", id)
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}
