// Package parse provides typed conversion of raw LLM text into Go values.
// Because language models frequently wrap JSON in narrative prose, markdown
// code fences, or slightly broken syntax, the generic [As] function applies
// a layered recovery strategy (candidate extraction, trailing-comma
// cleanup, automatic JSON repair) before falling back to a clear error.
//
// This is the unvalidated convenience path; schema validation and healing
// live in core/response and core/heal.
package parse
