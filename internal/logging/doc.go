// Package logging assembles the structured slog loggers used by the tailer.
//
// It owns the console and JSON handlers, maps the textual levels accepted on
// the command line (off, error, warn, info, debug, trace) onto slog levels,
// and exposes attribute helpers and field names so every component emits log
// lines with the same shape. A no-op logger is provided for tests and for
// wiring code that must not fail.
package logging
