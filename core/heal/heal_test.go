package heal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/leofalp/structo/core/jsonschema"
	"github.com/leofalp/structo/providers/ai"
	"github.com/leofalp/structo/providers/notify"
	"github.com/leofalp/structo/providers/validator"
)

// fakeProvider records every request and replies from a scripted list; the
// last reply repeats once the script is exhausted.
type fakeProvider struct {
	replies  []string
	err      error
	requests []ai.ChatRequest
}

func (f *fakeProvider) SendMessage(_ context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	f.requests = append(f.requests, request)
	if f.err != nil {
		return nil, f.err
	}
	idx := len(f.requests) - 1
	if idx >= len(f.replies) {
		idx = len(f.replies) - 1
	}
	return &ai.ChatResponse{Content: f.replies[idx]}, nil
}

func (f *fakeProvider) WithAPIKey(string) ai.Provider           { return f }
func (f *fakeProvider) WithBaseURL(string) ai.Provider          { return f }
func (f *fakeProvider) WithHttpClient(*http.Client) ai.Provider { return f }

func nameSchema() *jsonschema.Schema {
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

func TestHeal_ImmediatelyValidNoHealerCall(t *testing.T) {
	provider := &fakeProvider{}
	healer := New(provider, "fixer", WithMaxAttempts(0))

	value, err := healer.Heal(context.Background(), `Here is the JSON: {"name": "Bob",}`, nameSchema(), ModeForcedExtraction)
	if err != nil {
		t.Fatalf("Heal() error = %v", err)
	}

	obj, ok := value.(map[string]any)
	if !ok || obj["name"] != "Bob" {
		t.Errorf("Heal() = %v, want map with name Bob", value)
	}
	if len(provider.requests) != 0 {
		t.Errorf("healer invoked %d times, want 0", len(provider.requests))
	}
}

func TestHeal_NoCandidateFailsWithoutConsumingBudget(t *testing.T) {
	provider := &fakeProvider{}
	healer := New(provider, "fixer", WithMaxAttempts(3))

	_, err := healer.Heal(context.Background(), "no structured data here, sorry", nameSchema(), ModeGeneric)

	var noCandidate *NoCandidateError
	if !errors.As(err, &noCandidate) {
		t.Fatalf("Heal() error = %v, want *NoCandidateError", err)
	}
	if len(provider.requests) != 0 {
		t.Errorf("healer invoked %d times, want 0", len(provider.requests))
	}
}

func TestHeal_HealerRepairsParseError(t *testing.T) {
	provider := &fakeProvider{replies: []string{`{"name": "Alice"}`}}
	healer := New(provider, "fixer", WithMaxAttempts(1))

	value, err := healer.Heal(context.Background(), `{"name": "Alice"`, nameSchema(), ModeGeneric)
	if err != nil {
		t.Fatalf("Heal() error = %v", err)
	}
	obj := value.(map[string]any)
	if obj["name"] != "Alice" {
		t.Errorf("name = %v, want Alice", obj["name"])
	}
	if len(provider.requests) != 1 {
		t.Fatalf("healer invoked %d times, want 1", len(provider.requests))
	}

	request := provider.requests[0]
	if request.Model != "fixer" {
		t.Errorf("healer model = %q, want fixer", request.Model)
	}
	if request.GenerationConfig == nil || request.GenerationConfig.Temperature == nil || *request.GenerationConfig.Temperature != 0 {
		t.Error("healer call must use temperature 0")
	}
	if request.GenerationConfig.MaxOutputTokens != DefaultMaxHealerTokens {
		t.Errorf("max output tokens = %d, want %d", request.GenerationConfig.MaxOutputTokens, DefaultMaxHealerTokens)
	}
	if len(request.Messages) != 1 || request.Messages[0].Role != ai.RoleUser {
		t.Error("healer call must carry a single user message")
	}
}

func TestHeal_ExhaustsBudgetAfterExactlyNInvocations(t *testing.T) {
	provider := &fakeProvider{replies: []string{"still { not json"}}
	healer := New(provider, "fixer", WithMaxAttempts(1))

	_, err := healer.Heal(context.Background(), `{"broken":`, nameSchema(), ModeGeneric)

	var terminal *TerminalError
	if !errors.As(err, &terminal) {
		t.Fatalf("Heal() error = %v, want *TerminalError", err)
	}
	if terminal.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", terminal.Attempts)
	}
	if !strings.Contains(err.Error(), "1") {
		t.Errorf("error message %q must contain the attempt count", err.Error())
	}
	if len(provider.requests) != 1 {
		t.Errorf("healer invoked %d times, want exactly 1", len(provider.requests))
	}
}

func TestHeal_TerminalValidationErrorCarriesFieldMessages(t *testing.T) {
	// Parses fine but never conforms: "name" stays a number.
	provider := &fakeProvider{replies: []string{`{"name": 42}`}}
	healer := New(provider, "fixer", WithMaxAttempts(2))

	_, err := healer.Heal(context.Background(), `{"name": 1}`, nameSchema(), ModeGeneric)

	var terminal *TerminalError
	if !errors.As(err, &terminal) {
		t.Fatalf("Heal() error = %v, want *TerminalError", err)
	}
	if terminal.LastKind != KindValidation {
		t.Errorf("LastKind = %v, want validation", terminal.LastKind)
	}
	if !strings.Contains(err.Error(), "name") {
		t.Errorf("error message %q must embed field-level validation detail", err.Error())
	}
	if len(provider.requests) != 2 {
		t.Errorf("healer invoked %d times, want 2", len(provider.requests))
	}
}

func TestHeal_HealerInvocationFailureDoesNotAbort(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	healer := New(provider, "fixer", WithMaxAttempts(2))

	_, err := healer.Heal(context.Background(), `{"broken":`, nameSchema(), ModeGeneric)

	var terminal *TerminalError
	if !errors.As(err, &terminal) {
		t.Fatalf("Heal() error = %v, want *TerminalError after budget, got early abort?", err)
	}
	if len(provider.requests) != 2 {
		t.Errorf("healer invoked %d times, want 2 (one per round)", len(provider.requests))
	}
}

func TestHeal_ForcedExtractionFirstAttemptSendsFullResponse(t *testing.T) {
	raw := "Let me explain my reasoning at length before the data. {\"name\": 7}"
	provider := &fakeProvider{replies: []string{`{"name": 8}`, `{"name": "Carol"}`}}
	healer := New(provider, "fixer", WithMaxAttempts(3))

	value, err := healer.Heal(context.Background(), raw, nameSchema(), ModeForcedExtraction)
	if err != nil {
		t.Fatalf("Heal() error = %v", err)
	}
	if value.(map[string]any)["name"] != "Carol" {
		t.Errorf("final value = %v, want Carol", value)
	}
	if len(provider.requests) != 2 {
		t.Fatalf("healer invoked %d times, want 2", len(provider.requests))
	}

	first := provider.requests[0].Messages[0].Content
	if !strings.Contains(first, "Let me explain my reasoning at length") {
		t.Error("first forced-extraction attempt must include the entire original response text")
	}

	second := provider.requests[1].Messages[0].Content
	if strings.Contains(second, "Let me explain my reasoning at length") {
		t.Error("later attempts must send only the current candidate, not the original prose")
	}
	if !strings.Contains(second, `{"name": 8}`) {
		t.Error("later attempts must include the current candidate")
	}
}

func TestHeal_GenericModeFirstAttemptSendsCandidateOnly(t *testing.T) {
	raw := "Some leading prose here. {\"name\": 7}"
	provider := &fakeProvider{replies: []string{`{"name": "Dora"}`}}
	healer := New(provider, "fixer", WithMaxAttempts(1))

	if _, err := healer.Heal(context.Background(), raw, nameSchema(), ModeGeneric); err != nil {
		t.Fatalf("Heal() error = %v", err)
	}

	prompt := provider.requests[0].Messages[0].Content
	if strings.Contains(prompt, "Some leading prose here") {
		t.Error("generic mode must never include the original prose")
	}
}

func TestHeal_ReExtractsHealerReply(t *testing.T) {
	provider := &fakeProvider{replies: []string{"Sure, here is the fix:\n```json\n{\"name\": \"Eve\"}\n```"}}
	healer := New(provider, "fixer", WithMaxAttempts(1))

	value, err := healer.Heal(context.Background(), `{"name":`, nameSchema(), ModeGeneric)
	if err != nil {
		t.Fatalf("Heal() error = %v", err)
	}
	if value.(map[string]any)["name"] != "Eve" {
		t.Errorf("value = %v, want Eve from the fenced healer reply", value)
	}
}

func TestHeal_EmitsNotificationsAroundEachInvocation(t *testing.T) {
	provider := &fakeProvider{replies: []string{`{"name": "Frank"}`}}

	var events []notify.Event
	sink := notify.Func(func(_ context.Context, event notify.Event) {
		events = append(events, event)
	})
	healer := New(provider, "fixer", WithMaxAttempts(1), WithSink(sink))

	if _, err := healer.Heal(context.Background(), `{"name":`, nameSchema(), ModeGeneric); err != nil {
		t.Fatalf("Heal() error = %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Name != EventHealerInvoke {
		t.Errorf("first event = %q, want %q", events[0].Name, EventHealerInvoke)
	}
	invoke := events[0].Payload.(HealerInvokeEvent)
	if invoke.HealerModel != "fixer" || invoke.BrokenCandidate == "" || invoke.ErrorMessage == "" {
		t.Errorf("invoke payload incomplete: %+v", invoke)
	}
	if events[1].Name != EventHealerResult {
		t.Errorf("second event = %q, want %q", events[1].Name, EventHealerResult)
	}
	result := events[1].Payload.(HealerResultEvent)
	if !result.Healed || result.Result == "" {
		t.Errorf("result payload incomplete: %+v", result)
	}
}

func TestHeal_PanickingSinkDoesNotAbortLoop(t *testing.T) {
	provider := &fakeProvider{replies: []string{`{"name": "Gail"}`}}
	sink := notify.Func(func(context.Context, notify.Event) {
		panic("sink bug")
	})
	healer := New(provider, "fixer", WithMaxAttempts(1), WithSink(sink))

	value, err := healer.Heal(context.Background(), `{"name":`, nameSchema(), ModeGeneric)
	if err != nil {
		t.Fatalf("Heal() error = %v", err)
	}
	if value.(map[string]any)["name"] != "Gail" {
		t.Errorf("value = %v, want Gail", value)
	}
}

func TestHeal_NoValidatorMeansVacuouslyValid(t *testing.T) {
	provider := &fakeProvider{}
	schema := jsonschema.New("person", &jsonschema.Property{
		Type: "object",
		Properties: map[string]*jsonschema.Property{
			"name": {Type: "string"},
		},
		Required: []string{"name"},
	})
	healer := New(provider, "fixer", WithMaxAttempts(0))

	// Does not conform, but no validation capability is configured.
	value, err := healer.Heal(context.Background(), `{"other": true}`, schema, ModeGeneric)
	if err != nil {
		t.Fatalf("Heal() error = %v", err)
	}
	if value.(map[string]any)["other"] != true {
		t.Errorf("value = %v", value)
	}
}
