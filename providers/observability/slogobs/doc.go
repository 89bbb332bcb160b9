// Package slogobs implements observability.Provider on top of the standard
// library's log/slog: spans as start/end log pairs, in-memory counters and
// histograms logged on update, and pass-through structured logging.
package slogobs
