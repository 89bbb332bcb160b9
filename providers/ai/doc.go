// Package ai defines the provider-agnostic completion interface and the
// request/response models shared by all backends. Concrete adapters live in
// subpackages (openai, gemini); the structured-output pipeline in core/
// consumes only the [Provider] interface and, where available, the optional
// [StructuredOutputProvider] capability.
package ai
