package ai

import (
	"github.com/leofalp/structo/core/jsonschema"
)

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest represents a request to send a chat message
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`             // Model name or identifier
	Messages         []Message         `json:"messages"`                    // Contains all messages in the conversation except system prompt
	SystemPrompt     string            `json:"system_prompt,omitempty"`     // Optional system prompt
	ResponseFormat   *ResponseFormat   `json:"response_format,omitempty"`   // Optional structured response format
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"` // Optional generation configuration
}

// Message represents a single message in a conversation
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`

	// Refusal is set when the model refuses to respond (safety/policy)
	Refusal string `json:"refusal,omitempty"`
}

// GenerationConfig carries decoding parameters. Temperature and TopP are
// pointers so that an explicit zero (deterministic decoding, as the healing
// loop requires) is distinguishable from "use the provider default".
type GenerationConfig struct {
	MaxOutputTokens int      `json:"max_output_tokens,omitempty"` // Optional max tokens for the output
	Temperature     *float32 `json:"temperature,omitempty"`       // Sampling temperature [0..2]. Higher => more random; lower => more deterministic.
	TopP            *float32 `json:"top_p,omitempty"`             // Nucleus sampling [0..1]. Alternative to temperature.
}

// ResponseFormat asks the provider for schema-conformant output. Backends
// that implement StructuredOutputProvider receive the wire serialization of
// the schema (all properties required); others ignore this field and rely on
// prompt-embedded format instructions.
type ResponseFormat struct {
	Schema *jsonschema.Schema `json:"-"`                // Schema for structured response; wire form is derived per backend
	Strict bool               `json:"strict,omitempty"` // If true, the model must strictly adhere to the schema, if possible.
}

/*
	##### PROVIDER OUTPUT #####
*/

type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ChatResponse represents the response from a chat completion
type ChatResponse struct {
	Id           string `json:"id"`
	Model        string `json:"model"`
	Created      int64  `json:"created"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`

	// Refusal is set when the model refuses to respond (safety/policy)
	Refusal string `json:"refusal,omitempty"`
}

/*
	##### ENUMS #####
*/

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
)
