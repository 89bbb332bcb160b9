package heal

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/leofalp/structo/core/extract"
	"github.com/leofalp/structo/core/jsonschema"
	"github.com/leofalp/structo/internal/utils"
	"github.com/leofalp/structo/providers/ai"
	"github.com/leofalp/structo/providers/notify"
	"github.com/leofalp/structo/providers/observability"
)

// Mode is the healing context, fixed for the duration of one Heal call. It
// changes which prompt template and which source text is sent to the healer
// on the first attempt.
type Mode int

const (
	// ModeGeneric is the default context: healing prompts always work on the
	// current JSON candidate.
	ModeGeneric Mode = iota

	// ModeForcedExtraction marks responses whose JSON was heuristically
	// extracted from free text. The first healing attempt sends the entire
	// original response, prose included, because the extraction itself may
	// have captured the wrong span; later attempts send only the current
	// candidate.
	ModeForcedExtraction
)

func (m Mode) String() string {
	if m == ModeForcedExtraction {
		return "forced_extraction"
	}
	return "generic"
}

const (
	// DefaultMaxAttempts is the healer invocation budget when not configured.
	DefaultMaxAttempts = 2

	// DefaultMaxHealerTokens bounds the healer's output so a misbehaving
	// model cannot make repair calls arbitrarily expensive.
	DefaultMaxHealerTokens = 2048
)

// Healer runs the bounded retry loop that turns a raw completion text into a
// parsed, schema-conformant value, escalating to a secondary "healer" model
// call whenever deterministic cleanup is not enough.
//
// A Healer is stateless across calls and safe for concurrent use; all loop
// state lives inside one Heal invocation. The loop itself is synchronous:
// each attempt's prompt depends on the previous attempt's failure, so there
// is nothing to parallelize.
type Healer struct {
	provider        ai.Provider
	model           string
	maxAttempts     int
	maxHealerTokens int
	observer        observability.Provider
	sink            notify.Sink
}

// Option configures a Healer.
type Option func(*Healer)

// WithMaxAttempts sets the healer invocation budget: maxAttempts = N permits
// exactly N healer calls, and the failure discovered after the N-th heal is
// terminal. Zero disables healing entirely (the first failure is terminal).
func WithMaxAttempts(n int) Option {
	return func(h *Healer) { h.maxAttempts = n }
}

// WithMaxHealerTokens bounds the output-token ceiling of healer calls.
func WithMaxHealerTokens(n int) Option {
	return func(h *Healer) { h.maxHealerTokens = n }
}

// WithObserver injects the observability provider used for spans, metrics,
// and logs around the healing loop.
func WithObserver(observer observability.Provider) Option {
	return func(h *Healer) {
		if observer != nil {
			h.observer = observer
		}
	}
}

// WithSink injects the notification sink that receives an event immediately
// before and immediately after every healer invocation.
func WithSink(sink notify.Sink) Option {
	return func(h *Healer) {
		if sink != nil {
			h.sink = sink
		}
	}
}

// New creates a Healer that repairs candidates with the given provider and
// healer model. Healer calls always use temperature 0 and a bounded output
// ceiling; the provider is typically the same one that produced the original
// completion, pointed at a cheaper model.
func New(provider ai.Provider, healerModel string, opts ...Option) *Healer {
	h := &Healer{
		provider:        provider,
		model:           healerModel,
		maxAttempts:     DefaultMaxAttempts,
		maxHealerTokens: DefaultMaxHealerTokens,
		observer:        observability.Noop(),
		sink:            notify.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// MaxAttempts returns the configured healer invocation budget.
func (h *Healer) MaxAttempts() int { return h.maxAttempts }

// Heal drives rawText through extract → clean → parse → validate, invoking
// the healer model on each failure until a conformant value emerges or the
// attempt budget is exhausted.
//
// The returned value is the decoded JSON (map[string]any, []any, or a
// primitive). Failure surfaces as *NoCandidateError when no JSON-like content
// exists at all (no budget consumed), or *TerminalError when the budget runs
// out; parse and validation failures drive retries internally and never
// escape directly.
//
// A failing healer invocation (transport, auth, timeout) does not abort the
// loop: the candidate is left unchanged, a warning is logged, and the round
// still counts, so termination is guaranteed by the attempt boundary alone.
func (h *Healer) Heal(ctx context.Context, rawText string, schema *jsonschema.Schema, mode Mode) (any, error) {
	ctx, span := h.observer.StartSpan(ctx, observability.SpanHeal,
		observability.String(observability.AttrSchemaName, schemaName(schema)),
		observability.String(observability.AttrHealingMode, mode.String()),
		observability.Int(observability.AttrHealingMaxAttempts, h.maxAttempts),
	)
	defer span.End()

	candidate, ok := extract.Extract(rawText)
	if !ok {
		err := &NoCandidateError{Raw: rawText}
		span.RecordError(err)
		span.SetStatus(observability.StatusError, "no candidate")
		h.healingOutcome(ctx, "no_candidate")
		return nil, err
	}

	attempts := 0
	for {
		parsed, fail := parseAndValidate(candidate, schema)
		if fail == nil {
			span.SetStatus(observability.StatusOK, "")
			h.healingOutcome(ctx, "ok")
			return parsed, nil
		}

		attempts++
		if attempts > h.maxAttempts {
			err := &TerminalError{
				Attempts: h.maxAttempts,
				LastKind: fail.kind,
				Detail:   fail.message,
			}
			span.RecordError(err)
			span.SetStatus(observability.StatusError, "attempt budget exhausted")
			h.healingOutcome(ctx, "exhausted")
			return nil, err
		}

		prompt := h.buildPrompt(mode, attempts, fail, candidate, rawText, schema)
		candidate = h.invokeHealer(ctx, prompt, candidate, fail, schema, mode, attempts)
	}
}

// parseAndValidate runs one clean → parse → validate step. A nil failure
// means parsed is the final conformant value.
func parseAndValidate(candidate string, schema *jsonschema.Schema) (any, *failure) {
	var parsed any
	if err := json.Unmarshal([]byte(extract.CleanSyntax(candidate)), &parsed); err != nil {
		return nil, &failure{kind: KindParse, message: err.Error()}
	}

	if schema != nil && schema.HasValidator() && !schema.Validate(parsed) {
		return nil, &failure{
			kind:    KindValidation,
			message: strings.Join(schema.ValidationErrors(parsed), ", "),
		}
	}

	return parsed, nil
}

// buildPrompt selects the healing template. The forced-extraction context
// overrides the per-kind templates on the first attempt only, sending the
// entire original response text: the extracted candidate may be the wrong
// span entirely, and only the original text still contains the right one.
func (h *Healer) buildPrompt(mode Mode, attempt int, fail *failure, candidate, rawText string, schema *jsonschema.Schema) string {
	schemaJSON := schemaPureJSON(schema)

	if mode == ModeForcedExtraction && attempt == 1 {
		return forcedExtractionPrompt(fail.message, rawText, schemaJSON)
	}

	switch fail.kind {
	case KindParse:
		return parseErrorPrompt(fail.message, candidate)
	case KindValidation:
		return validationErrorPrompt(fail.message, candidate, schemaJSON)
	default:
		return genericPrompt(fail.message, candidate, schemaJSON)
	}
}

// invokeHealer performs one secondary completion call and returns the next
// candidate. On invocation failure the previous candidate is returned
// unchanged so the loop makes no progress this round and terminates through
// the attempt boundary.
func (h *Healer) invokeHealer(ctx context.Context, prompt, candidate string, fail *failure, schema *jsonschema.Schema, mode Mode, attempt int) string {
	h.emit(ctx, EventHealerInvoke, HealerInvokeEvent{
		BrokenCandidate: candidate,
		ErrorMessage:    fail.message,
		SchemaName:      schemaName(schema),
		Schema:          schemaPure(schema),
		HealerModel:     h.model,
		Mode:            mode.String(),
		Attempt:         attempt,
	})

	h.observer.Debug(ctx, "invoking healer",
		observability.String(observability.AttrLLMModel, h.model),
		observability.Int(observability.AttrHealingAttempt, attempt),
		observability.String(observability.AttrHealingErrorKind, fail.kind.String()),
	)
	h.observer.Counter(observability.MetricHealerInvocations).Add(ctx, 1,
		observability.String(observability.AttrLLMModel, h.model),
	)

	zero := float32(0)
	timer := utils.NewTimer()
	response, err := h.provider.SendMessage(ctx, ai.ChatRequest{
		Model:    h.model,
		Messages: []ai.Message{{Role: ai.RoleUser, Content: prompt}},
		GenerationConfig: &ai.GenerationConfig{
			Temperature:     &zero,
			MaxOutputTokens: h.maxHealerTokens,
		},
	})
	timer.Stop()

	if err != nil {
		h.observer.Warn(ctx, "healer invocation failed",
			observability.Error(err),
			observability.Int(observability.AttrHealingAttempt, attempt),
			observability.Duration("duration", timer.GetDuration()),
		)
		h.emit(ctx, EventHealerResult, HealerResultEvent{
			Healed:   false,
			Original: candidate,
			Error:    err.Error(),
			Attempt:  attempt,
		})
		return candidate
	}

	h.emit(ctx, EventHealerResult, HealerResultEvent{
		Healed:   true,
		Original: candidate,
		Result:   response.Content,
		Attempt:  attempt,
	})

	// The healer may itself wrap its answer in prose or fences.
	if next, ok := extract.Extract(response.Content); ok {
		return next
	}
	return response.Content
}

// emit sends one notification, shielding the loop from sink bugs: a
// panicking sink downgrades to a warning instead of aborting healing.
func (h *Healer) emit(ctx context.Context, name string, payload any) {
	defer func() {
		if r := recover(); r != nil {
			h.observer.Warn(ctx, "notification sink panicked",
				observability.String("event", name),
			)
		}
	}()
	h.sink.Emit(ctx, notify.NewEvent(name, payload))
}

func (h *Healer) healingOutcome(ctx context.Context, status string) {
	h.observer.Counter(observability.MetricHealingOutcome).Add(ctx, 1,
		observability.String(observability.AttrStatus, status),
	)
}

func schemaName(schema *jsonschema.Schema) string {
	if schema == nil {
		return ""
	}
	return schema.Name()
}

func schemaPure(schema *jsonschema.Schema) *jsonschema.Property {
	if schema == nil {
		return nil
	}
	return schema.Pure()
}

func schemaPureJSON(schema *jsonschema.Schema) string {
	if schema == nil {
		return "{}"
	}
	s, err := schema.Pure().JSONString(true)
	if err != nil {
		return "{}"
	}
	return s
}
