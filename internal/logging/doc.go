// Package logging assembles structured slog loggers and formatting helpers used
// across signalgen.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so workflow code can tag log
// lines with workflow instance IDs, steps, session IDs, and correlation IDs.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail, plus retention pruning for the log directory.
package logging
