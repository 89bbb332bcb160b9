// Package gemini adapts the Gemini Developer API, via the
// google.golang.org/genai SDK, to the generic ai.Provider interface.
//
// Gemini models enforce response schemas natively: the wire schema is sent
// as ResponseJsonSchema with an application/json response MIME type.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/leofalp/structo/providers/ai"
)

// Provider implements ai.Provider and ai.StructuredOutputProvider on top of
// the Gemini Developer API.
type Provider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a Gemini provider. The API key defaults to the GEMINI_API_KEY
// environment variable.
func New() *Provider {
	return &Provider{
		apiKey: os.Getenv("GEMINI_API_KEY"),
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

// SupportsNativeStructuredOutput reports whether the model accepts a native
// response schema. All current Gemini generation models do.
func (p *Provider) SupportsNativeStructuredOutput(model string) bool {
	return strings.HasPrefix(model, "gemini-")
}

// SendMessage implements the Provider interface
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("API key is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     p.apiKey,
		HTTPClient: p.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: p.baseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	cfg := &genai.GenerateContentConfig{}
	if request.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: request.SystemPrompt}},
		}
	}
	if gc := request.GenerationConfig; gc != nil {
		if gc.Temperature != nil {
			cfg.Temperature = genai.Ptr[float32](*gc.Temperature)
		}
		if gc.TopP != nil {
			cfg.TopP = genai.Ptr[float32](*gc.TopP)
		}
		if gc.MaxOutputTokens > 0 {
			cfg.MaxOutputTokens = int32(gc.MaxOutputTokens)
		}
	}
	if rf := request.ResponseFormat; rf != nil && rf.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseJsonSchema = rf.Schema.Wire()
	}

	contents := contentsFromGeneric(request.Messages)
	res, err := client.Models.GenerateContent(ctx, request.Model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no candidates in response")
	}

	return responseToGeneric(request.Model, res), nil
}

func contentsFromGeneric(messages []ai.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		content := &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: m.Content}},
		}
		if m.Role == ai.RoleAssistant {
			content.Role = genai.RoleModel
		}
		contents = append(contents, content)
	}
	return contents
}

func responseToGeneric(model string, res *genai.GenerateContentResponse) *ai.ChatResponse {
	candidate := res.Candidates[0]

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part.Text == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n")
		}
		text.WriteString(part.Text)
	}

	out := &ai.ChatResponse{
		Id:           res.ResponseID,
		Model:        model,
		Content:      text.String(),
		FinishReason: string(candidate.FinishReason),
	}
	if res.UsageMetadata != nil {
		out.Usage = &ai.Usage{
			PromptTokens:     int(res.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(res.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(res.UsageMetadata.TotalTokenCount),
		}
	}
	return out
}
