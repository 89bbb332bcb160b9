package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/structo/core/heal"
	"github.com/leofalp/structo/core/jsonschema"
	"github.com/leofalp/structo/core/response"
	"github.com/leofalp/structo/providers/ai"
	"github.com/leofalp/structo/providers/notify"
	"github.com/leofalp/structo/providers/observability"
)

// Client sends prompts expecting structured output and wraps each completion
// in a [response.Response] wired with the right extraction policy, schema,
// and healing capability.
//
// The extraction policy is decided per request: when the provider implements
// [ai.StructuredOutputProvider] for the chosen model, the wire schema is sent
// natively and the content is parsed raw; otherwise the schema's format
// instructions are appended to the prompt and the reply is heuristically
// extracted (forced extraction).
type Client struct {
	provider        ai.Provider
	model           string
	healerModel     string
	maxHealAttempts int
	autoHeal        bool
	forceExtraction bool
	systemPrompt    string
	observer        observability.Provider
	sink            notify.Sink
	healer          *heal.Healer
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model used for primary completions.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHealerModel sets the model used for healing calls. Defaults to the
// primary model; a smaller, cheaper model is the usual choice.
func WithHealerModel(model string) Option {
	return func(c *Client) { c.healerModel = model }
}

// WithMaxHealAttempts sets the healer invocation budget per response.
func WithMaxHealAttempts(n int) Option {
	return func(c *Client) { c.maxHealAttempts = n }
}

// WithAutoHeal sets the default healing behavior of strict consumption.
// Enabled unless configured otherwise.
func WithAutoHeal(autoHeal bool) Option {
	return func(c *Client) { c.autoHeal = autoHeal }
}

// WithForcedExtraction forces prompt-embedded schema instructions and
// heuristic extraction even on providers with native structured output.
func WithForcedExtraction() Option {
	return func(c *Client) { c.forceExtraction = true }
}

// WithSystemPrompt sets a system prompt sent with every request.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) { c.systemPrompt = prompt }
}

// WithObserver injects the observability provider.
func WithObserver(observer observability.Provider) Option {
	return func(c *Client) {
		if observer != nil {
			c.observer = observer
		}
	}
}

// WithSink injects the notification sink passed through to healing.
func WithSink(sink notify.Sink) Option {
	return func(c *Client) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// New creates a Client around an LLM provider. The healing capability is
// resolved once here, not per call.
func New(provider ai.Provider, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, errors.New("provider must not be nil")
	}

	c := &Client{
		provider:        provider,
		maxHealAttempts: heal.DefaultMaxAttempts,
		autoHeal:        true,
		observer:        observability.Noop(),
		sink:            notify.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.model == "" {
		return nil, errors.New("a model is required: use WithModel")
	}
	if c.healerModel == "" {
		c.healerModel = c.model
	}

	c.healer = heal.New(provider, c.healerModel,
		heal.WithMaxAttempts(c.maxHealAttempts),
		heal.WithObserver(c.observer),
		heal.WithSink(c.sink),
	)

	return c, nil
}

// Complete sends one prompt and returns the wrapped response. When schema is
// nil the request is a plain completion and the response carries no schema or
// healing wiring beyond parse recovery.
func (c *Client) Complete(ctx context.Context, prompt string, schema *jsonschema.Schema) (*response.Response, error) {
	if prompt == "" {
		return nil, errors.New("prompt must not be empty")
	}

	forced := c.useForcedExtraction(schema)

	request := ai.ChatRequest{
		Model:        c.model,
		SystemPrompt: c.systemPrompt,
	}

	userContent := prompt
	if schema != nil {
		if forced {
			userContent = prompt + "\n\n" + schema.FormatInstructions(true)
		} else {
			request.ResponseFormat = &ai.ResponseFormat{
				Schema: schema,
				Strict: schema.Strict(),
			}
		}
	}
	request.Messages = []ai.Message{{Role: ai.RoleUser, Content: userContent}}

	c.observer.Debug(ctx, "sending completion",
		observability.String(observability.AttrLLMModel, c.model),
		observability.String(observability.AttrSchemaName, schemaName(schema)),
		observability.Bool("forced_extraction", forced),
	)

	raw, err := c.provider.SendMessage(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	return response.New(raw,
		response.WithSchema(schema),
		response.WithHealer(c.healer),
		response.WithForcedExtraction(forced),
		response.WithAutoHeal(c.autoHeal),
	), nil
}

// useForcedExtraction decides the extraction policy for one request.
func (c *Client) useForcedExtraction(schema *jsonschema.Schema) bool {
	if schema == nil {
		return false
	}
	if c.forceExtraction {
		return true
	}
	sp, ok := c.provider.(ai.StructuredOutputProvider)
	return !ok || !sp.SupportsNativeStructuredOutput(c.model)
}

func schemaName(schema *jsonschema.Schema) string {
	if schema == nil {
		return ""
	}
	return schema.Name()
}
