// Package extract implements heuristic recovery of JSON candidates from raw
// LLM completion text.
//
// Two primitives are provided: [Extract], which locates the most plausible
// JSON fragment inside free-form text using an ordered list of strategies
// (fenced block, "json:" label, loose brace span, whole text), and
// [CleanSyntax], which deterministically strips trailing commas before
// closing braces and brackets.
//
// Both functions are pure and allocation-light; they perform no parsing and
// make no claim that their output is valid JSON. They are the first stages of
// the structured-output pipeline in core/heal and core/response.
package extract
