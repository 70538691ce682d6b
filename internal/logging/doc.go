// Package logging provides structured logging helpers built on log/slog.
//
// It centralizes attribute key naming so log entries stay consistent and
// searchable across components, and offers sanitizers for values that must
// never appear in logs verbatim (access tokens, raw session identifiers).
package logging
