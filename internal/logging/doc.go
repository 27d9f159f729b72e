// Package logging assembles structured slog loggers and formatting helpers used
// across sortline.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so stage code automatically tags log
// lines with queue item IDs, stage names, and correlation IDs. A no-op logger
// is provided for tests and wiring code that cannot fail.
package logging
