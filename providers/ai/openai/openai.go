// Package openai adapts the OpenAI Chat Completions API, via the
// sashabaranov/go-openai SDK, to the generic ai.Provider interface.
//
// Models that accept the json_schema response format are driven through
// native structured output; the wire schema (all properties required) is
// attached to the request. Older models fall back to forced extraction
// upstream.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/leofalp/structo/providers/ai"
)

// Provider implements ai.Provider and ai.StructuredOutputProvider on top of
// the OpenAI Chat Completions API.
type Provider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates an OpenAI provider. The API key and base URL default to the
// OPENAI_API_KEY and OPENAI_API_BASE_URL environment variables.
func New() *Provider {
	return &Provider{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: os.Getenv("OPENAI_API_BASE_URL"),
	}
}

// WithAPIKey sets the API key for the provider
func (p *Provider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API
func (p *Provider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client
func (p *Provider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.httpClient = httpClient
	return p
}

// SupportsNativeStructuredOutput reports whether the model accepts the
// json_schema response format.
func (p *Provider) SupportsNativeStructuredOutput(model string) bool {
	for _, prefix := range []string{"gpt-4o", "gpt-4.1", "gpt-5", "o1", "o3", "o4"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// SendMessage implements the Provider interface
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("API key is not set")
	}

	resp, err := p.client().CreateChatCompletion(ctx, requestFromGeneric(request))
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return responseToGeneric(resp), nil
}

func (p *Provider) client() *goopenai.Client {
	cfg := goopenai.DefaultConfig(p.apiKey)
	if p.baseURL != "" {
		cfg.BaseURL = p.baseURL
	}
	if p.httpClient != nil {
		cfg.HTTPClient = p.httpClient
	}
	return goopenai.NewClientWithConfig(cfg)
}

func requestFromGeneric(request ai.ChatRequest) goopenai.ChatCompletionRequest {
	msgs := make([]goopenai.ChatCompletionMessage, 0, len(request.Messages)+1)
	if request.SystemPrompt != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: request.SystemPrompt,
		})
	}
	for _, m := range request.Messages {
		msgs = append(msgs, goopenai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	req := goopenai.ChatCompletionRequest{
		Model:    request.Model,
		Messages: msgs,
	}

	if gc := request.GenerationConfig; gc != nil {
		if gc.Temperature != nil {
			req.Temperature = *gc.Temperature
			if req.Temperature == 0 {
				// The SDK drops a zero temperature via omitempty; the
				// smallest nonzero float is its documented stand-in.
				req.Temperature = math.SmallestNonzeroFloat32
			}
		}
		if gc.TopP != nil {
			req.TopP = *gc.TopP
		}
		if gc.MaxOutputTokens > 0 {
			req.MaxCompletionTokens = gc.MaxOutputTokens
		}
	}

	if rf := request.ResponseFormat; rf != nil && rf.Schema != nil {
		req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   rf.Schema.Name(),
				Schema: rawSchema{rf.Schema.Wire()},
				Strict: rf.Strict,
			},
		}
	}

	return req
}

func responseToGeneric(resp goopenai.ChatCompletionResponse) *ai.ChatResponse {
	choice := resp.Choices[0]
	return &ai.ChatResponse{
		Id:           resp.ID,
		Model:        resp.Model,
		Created:      resp.Created,
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Refusal:      choice.Message.Refusal,
		Usage: &ai.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
}

// rawSchema is a thin json.Marshaler wrapper to pass the property tree into
// SDK types that take custom schema marshalers.
type rawSchema struct {
	v any
}

func (r rawSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.v)
}
