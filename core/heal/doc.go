// Package heal implements the bounded self-healing loop for structured LLM
// output: extract a JSON candidate from raw completion text, clean and parse
// it, validate it against a schema, and on failure ask a secondary "healer"
// model to repair the candidate, up to a configured number of attempts.
//
// The loop is synchronous and strictly sequential, since each healing prompt is
// built from the previous attempt's failure. It always terminates through
// the attempt boundary: even a failing healer call only costs a round, never
// an early abort. See [Healer.Heal] for the exact semantics, including the
// forced-extraction first-attempt asymmetry.
package heal
