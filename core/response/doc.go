// Package response exposes the two public consumption modes for structured
// LLM output. A [Response] pairs a completed chat response with its
// extraction policy (native vs forced), an optional schema, and an optional
// healing capability; [Response.StructuredOutput] resolves it either
// strictly (validate, heal, fail loudly) or gently (best-effort parse,
// swallow every failure as nil).
package response
