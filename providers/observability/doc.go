// Package observability defines the tracing, metrics, and structured logging
// interfaces instrumented code depends on, together with attribute helpers
// and the semantic-convention constants used across the module. The slogobs
// subpackage provides a log/slog-backed implementation; [Noop] provides the
// silent default.
package observability
