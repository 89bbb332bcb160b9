package response

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/leofalp/structo/core/heal"
	"github.com/leofalp/structo/core/jsonschema"
	"github.com/leofalp/structo/providers/ai"
	"github.com/leofalp/structo/providers/validator"
)

type scriptedProvider struct {
	replies  []string
	requests []ai.ChatRequest
}

func (p *scriptedProvider) SendMessage(_ context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	p.requests = append(p.requests, request)
	idx := len(p.requests) - 1
	if idx >= len(p.replies) {
		idx = len(p.replies) - 1
	}
	return &ai.ChatResponse{Content: p.replies[idx]}, nil
}

func (p *scriptedProvider) WithAPIKey(string) ai.Provider           { return p }
func (p *scriptedProvider) WithBaseURL(string) ai.Provider          { return p }
func (p *scriptedProvider) WithHttpClient(*http.Client) ai.Provider { return p }

func personSchema() *jsonschema.Schema {
	return jsonschema.New("person",
		&jsonschema.Property{
			Type: "object",
			Properties: map[string]*jsonschema.Property{
				"name": {Type: "string"},
			},
			Required: []string{"name"},
		},
		jsonschema.WithValidator(validator.New()),
	)
}

func chat(content string) *ai.ChatResponse {
	return &ai.ChatResponse{Content: content}
}

func TestStructuredOutput_GentleNeverErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		forced  bool
		wantNil bool
	}{
		{
			name:    "valid raw json",
			content: `{"name": "Bob"}`,
			wantNil: false,
		},
		{
			name:    "trailing comma cleaned",
			content: `{"name": "Bob",}`,
			wantNil: false,
		},
		{
			name:    "garbage returns nil",
			content: "utter nonsense",
			wantNil: true,
		},
		{
			name:    "empty content returns nil",
			content: "",
			wantNil: true,
		},
		{
			name:    "forced extraction digs json out of prose",
			content: `The answer is {"name": "Bob"} as shown.`,
			forced:  true,
			wantNil: false,
		},
		{
			name:    "forced extraction with no candidate returns nil",
			content: "nothing structured at all",
			forced:  true,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(chat(tt.content), WithForcedExtraction(tt.forced))
			value, err := r.StructuredOutput(context.Background(), ModeGentle)
			if err != nil {
				t.Fatalf("gentle mode returned error: %v", err)
			}
			if (value == nil) != tt.wantNil {
				t.Errorf("value = %v, wantNil = %v", value, tt.wantNil)
			}
		})
	}
}

func TestStructuredOutput_FencedContentNotUnwrappedWithoutForcedExtraction(t *testing.T) {
	content := "```json\n{\"name\": \"Bob\"}\n```"

	// Gentle: parsing the raw fenced content fails, yielding nil.
	r := New(chat(content), WithForcedExtraction(false))
	value, err := r.StructuredOutput(context.Background(), ModeGentle)
	if err != nil {
		t.Fatalf("gentle mode returned error: %v", err)
	}
	if value != nil {
		t.Errorf("gentle value = %v, want nil: fences must not be unwrapped", value)
	}

	// Strict without healing: same content must error, not silently unwrap.
	r = New(chat(content), WithForcedExtraction(false), WithSchema(personSchema()), WithAutoHeal(false))
	if _, err := r.StructuredOutput(context.Background(), ModeStrict); err == nil {
		t.Error("strict mode must fail on fenced content outside forced extraction")
	}

	// The same content under forced extraction parses fine.
	r = New(chat(content), WithForcedExtraction(true))
	value, _ = r.StructuredOutput(context.Background(), ModeGentle)
	if value == nil {
		t.Error("forced extraction should unwrap the fence")
	}
}

func TestStructuredOutput_StrictWithoutHealingFailsFast(t *testing.T) {
	provider := &scriptedProvider{replies: []string{`{"name": "Bob"}`}}
	healer := heal.New(provider, "fixer", heal.WithMaxAttempts(5))

	r := New(chat(`{"name": 42}`),
		WithSchema(personSchema()),
		WithHealer(healer),
		WithAutoHeal(false),
	)

	if _, err := r.StructuredOutput(context.Background(), ModeStrict); err == nil {
		t.Fatal("strict mode without healing must fail on the first validation error")
	}
	if len(provider.requests) != 0 {
		t.Errorf("healer invoked %d times with healing disabled, want 0", len(provider.requests))
	}
}

func TestStructuredOutput_StrictHealsAndTrustsResult(t *testing.T) {
	provider := &scriptedProvider{replies: []string{`{"name": "Bob"}`}}
	healer := heal.New(provider, "fixer", heal.WithMaxAttempts(1))

	r := New(chat(`Here you go: {"name": 42}`),
		WithForcedExtraction(true),
		WithSchema(personSchema()),
		WithHealer(healer),
	)

	value, err := r.StructuredOutput(context.Background(), ModeStrict)
	if err != nil {
		t.Fatalf("StructuredOutput() error = %v", err)
	}
	if value.(map[string]any)["name"] != "Bob" {
		t.Errorf("value = %v, want healed Bob", value)
	}
	if len(provider.requests) != 1 {
		t.Errorf("healer invoked %d times, want 1", len(provider.requests))
	}
}

func TestStructuredOutput_AutoHealOptionOverridesDefault(t *testing.T) {
	provider := &scriptedProvider{replies: []string{`{"name": "Bob"}`}}
	healer := heal.New(provider, "fixer", heal.WithMaxAttempts(1))

	// Default says heal; the per-call option disables it.
	r := New(chat(`{"name": 42}`),
		WithSchema(personSchema()),
		WithHealer(healer),
		WithAutoHeal(true),
	)

	if _, err := r.StructuredOutput(context.Background(), ModeStrict, AutoHeal(false)); err == nil {
		t.Fatal("AutoHeal(false) must disable healing and fail fast")
	}
	if len(provider.requests) != 0 {
		t.Errorf("healer invoked %d times, want 0", len(provider.requests))
	}

	// And the reverse: default off, option on.
	r = New(chat(`{"name": 42}`),
		WithSchema(personSchema()),
		WithHealer(healer),
		WithAutoHeal(false),
	)
	value, err := r.StructuredOutput(context.Background(), ModeStrict, AutoHeal(true))
	if err != nil {
		t.Fatalf("StructuredOutput() error = %v", err)
	}
	if value.(map[string]any)["name"] != "Bob" {
		t.Errorf("value = %v, want Bob", value)
	}
}

func TestStructuredOutput_StrictSurfacesTerminalHealingFailure(t *testing.T) {
	provider := &scriptedProvider{replies: []string{`{"name": 42}`}}
	healer := heal.New(provider, "fixer", heal.WithMaxAttempts(1))

	r := New(chat(`{"name": 42}`),
		WithSchema(personSchema()),
		WithHealer(healer),
	)

	_, err := r.StructuredOutput(context.Background(), ModeStrict)
	var terminal *heal.TerminalError
	if !errors.As(err, &terminal) {
		t.Fatalf("error = %v, want *heal.TerminalError", err)
	}
}
