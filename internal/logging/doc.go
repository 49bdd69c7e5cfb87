// Package logging assembles the structured slog loggers used by filesort.
//
// It owns the console and JSON handlers, level parsing, and output plumbing,
// and exposes context helpers so every line written during a run carries the
// run identifier. Warnings go through WarnWithContext, which guarantees the
// event_type, error_hint, and impact fields operators rely on.
//
// Tests and wiring code that cannot fail should use NewNop.
package logging
