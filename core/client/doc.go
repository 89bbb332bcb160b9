// Package client is the high-level entry point for structured completions:
// it builds the request (native response schema or prompt-embedded format
// instructions, decided per provider capability), sends it, and wraps the
// completion in a response.Response carrying the schema and the healing
// capability. The generic [Structured] wrapper adds typed resolution for a
// single response shape.
package client
