// Package jsonschema provides the normalized schema model for structured LLM
// output: a named, optionally strict [Schema] wrapping a [Property] tree.
//
// The same tree serves two serializations. The wire form ([Schema.Wire])
// forces every declared property into the required list, which is the shape
// completion providers expect in strict mode. The pure form ([Schema.Pure])
// preserves the caller's true required/optional intent and drives local
// validation and healing prompts.
//
// Schemas can be built by hand from Property literals or generated from Go
// types via [Generate], which maps `json` and `jsonschema` struct tags.
// Validation is an optional capability injected with [WithValidator]; a
// Schema without one treats every value as conformant.
package jsonschema
