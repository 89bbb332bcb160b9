package gemini

import (
	"context"
	"testing"

	"google.golang.org/genai"

	"github.com/leofalp/structo/providers/ai"
)

func TestContentsFromGeneric(t *testing.T) {
	contents := contentsFromGeneric([]ai.Message{
		{Role: ai.RoleUser, Content: "question"},
		{Role: ai.RoleAssistant, Content: "answer"},
		{Role: ai.RoleUser, Content: "follow-up"},
	})

	if len(contents) != 3 {
		t.Fatalf("contents = %d, want 3", len(contents))
	}
	if contents[0].Role != genai.RoleUser || contents[0].Parts[0].Text != "question" {
		t.Errorf("contents[0] = %+v", contents[0])
	}
	if contents[1].Role != genai.RoleModel || contents[1].Parts[0].Text != "answer" {
		t.Errorf("contents[1] = %+v", contents[1])
	}
	if contents[2].Role != genai.RoleUser {
		t.Errorf("contents[2] role = %v", contents[2].Role)
	}
}

func TestResponseToGeneric(t *testing.T) {
	res := &genai.GenerateContentResponse{
		ResponseID: "resp-1",
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{Text: "first"}, {Text: "second"}},
			},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 5,
			TotalTokenCount:      15,
		},
	}

	out := responseToGeneric("gemini-2.0-flash", res)
	if out.Id != "resp-1" || out.Model != "gemini-2.0-flash" {
		t.Errorf("identity = %q / %q", out.Id, out.Model)
	}
	if out.Content != "first\nsecond" {
		t.Errorf("content = %q", out.Content)
	}
	if out.FinishReason != string(genai.FinishReasonStop) {
		t.Errorf("finish reason = %q", out.FinishReason)
	}
	if out.Usage == nil || out.Usage.TotalTokens != 15 {
		t.Errorf("usage = %+v", out.Usage)
	}
}

func TestSupportsNativeStructuredOutput(t *testing.T) {
	p := New()
	if !p.SupportsNativeStructuredOutput("gemini-2.0-flash") {
		t.Error("gemini models should support native structured output")
	}
	if p.SupportsNativeStructuredOutput("gpt-4o") {
		t.Error("non-gemini model reported as supported")
	}
}

func TestSendMessageRequiresAPIKey(t *testing.T) {
	p := &Provider{}
	if _, err := p.SendMessage(context.Background(), ai.ChatRequest{Model: "gemini-2.0-flash"}); err == nil {
		t.Fatal("SendMessage() succeeded without an API key")
	}
}
