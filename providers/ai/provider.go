package ai

import (
	"context"
	"net/http"
)

// Provider is the completion capability every backend must satisfy. It covers
// the lifecycle of a single request: authentication, endpoint configuration,
// and message dispatch. The healing loop consumes the same interface for its
// secondary repair calls, only with a different model and deterministic
// decoding.
type Provider interface {
	// SendMessage sends a chat request to the provider and returns the
	// completed response. Returns an error if the provider call fails,
	// the context is cancelled, or the response cannot be decoded.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHttpClient sets the HTTP client used for outbound requests.
	WithHttpClient(httpClient *http.Client) Provider
}

// StructuredOutputProvider is an optional interface backends implement when
// they can enforce a response schema natively (e.g. OpenAI json_schema
// response format, Gemini response schemas). Callers detect support via type
// assertion: provider.(StructuredOutputProvider). Backends without it are
// driven through forced extraction: the schema is embedded in the prompt and
// the reply is heuristically extracted.
type StructuredOutputProvider interface {
	Provider

	// SupportsNativeStructuredOutput reports whether the given model accepts
	// a native response schema. Some backends support it only for a subset
	// of their models.
	SupportsNativeStructuredOutput(model string) bool
}
