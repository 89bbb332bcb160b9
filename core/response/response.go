package response

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/leofalp/structo/core/extract"
	"github.com/leofalp/structo/core/heal"
	"github.com/leofalp/structo/core/jsonschema"
	"github.com/leofalp/structo/providers/ai"
)

// Mode selects how StructuredOutput consumes the response.
type Mode int

const (
	// ModeStrict runs the full pipeline: extraction per policy, cleanup,
	// parse, validation, and healing when enabled. Failures surface as errors.
	ModeStrict Mode = iota

	// ModeGentle is best-effort: extraction per policy and a single parse,
	// no validation, no healing. Any failure yields a nil value, never an
	// error.
	ModeGentle
)

// Response wraps one completion and decides how its content becomes a
// structured value. The forced-extraction policy is fixed when the response
// is created, by whoever built the request: true means the model embedded
// JSON in free text and heuristic extraction applies, false means the
// content is expected to be JSON already and is parsed raw.
type Response struct {
	raw             *ai.ChatResponse
	schema          *jsonschema.Schema
	healer          *heal.Healer
	forced          bool
	autoHealDefault bool
}

// Option configures a Response at construction.
type Option func(*Response)

// WithSchema attaches the schema the structured output must conform to.
func WithSchema(schema *jsonschema.Schema) Option {
	return func(r *Response) { r.schema = schema }
}

// WithHealer attaches the healing capability used by strict mode.
func WithHealer(healer *heal.Healer) Option {
	return func(r *Response) { r.healer = healer }
}

// WithForcedExtraction marks the response as produced without native
// structured output support, enabling heuristic extraction before parsing.
func WithForcedExtraction(forced bool) Option {
	return func(r *Response) { r.forced = forced }
}

// WithAutoHeal sets the default healing behavior of strict mode; a per-call
// [AutoHeal] option overrides it.
func WithAutoHeal(autoHeal bool) Option {
	return func(r *Response) { r.autoHealDefault = autoHeal }
}

// New wraps a completed chat response.
func New(raw *ai.ChatResponse, opts ...Option) *Response {
	r := &Response{raw: raw, autoHealDefault: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Raw returns the underlying chat response.
func (r *Response) Raw() *ai.ChatResponse { return r.raw }

// ForcedExtraction reports the extraction policy fixed at construction.
func (r *Response) ForcedExtraction() bool { return r.forced }

// OutputOption adjusts one StructuredOutput call.
type OutputOption func(*outputConfig)

type outputConfig struct {
	autoHeal *bool
}

// AutoHeal overrides the response's default healing behavior for this call.
func AutoHeal(enabled bool) OutputOption {
	return func(c *outputConfig) { c.autoHeal = &enabled }
}

// StructuredOutput resolves the response content into a decoded JSON value.
//
// In [ModeGentle] the result is best-effort: the content is extracted first
// only when the response is under forced-extraction policy, then cleaned and
// parsed; validation and healing never run, and any failure returns (nil,
// nil) rather than an error.
//
// In [ModeStrict] the full pipeline runs. With healing enabled (the
// response's default, or an [AutoHeal] override) the healing loop owns
// retries and its result is trusted as-is; its own validate step already
// confirmed conformance. With healing disabled, the first parse/validate
// failure is returned immediately.
//
// When forced extraction is off, the content is parsed raw with no
// markdown-fence unwrapping: a fenced block in content that was never meant
// to be force-extracted fails to parse instead of being silently unwrapped.
func (r *Response) StructuredOutput(ctx context.Context, mode Mode, opts ...OutputOption) (any, error) {
	var cfg outputConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if mode == ModeGentle {
		return r.gentle(), nil
	}
	return r.strict(ctx, cfg)
}

func (r *Response) gentle() any {
	candidate, ok := r.candidate()
	if !ok {
		return nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(extract.CleanSyntax(candidate)), &parsed); err != nil {
		return nil
	}
	return parsed
}

func (r *Response) strict(ctx context.Context, cfg outputConfig) (any, error) {
	autoHeal := r.autoHealDefault
	if cfg.autoHeal != nil {
		autoHeal = *cfg.autoHeal
	}

	if autoHeal && r.healer != nil {
		mode := heal.ModeGeneric
		if r.forced {
			mode = heal.ModeForcedExtraction
		}
		return r.healer.Heal(ctx, r.content(), r.schema, mode)
	}

	// Healing disabled: a single pass, first failure is final.
	candidate, ok := r.candidate()
	if !ok {
		return nil, &heal.NoCandidateError{Raw: r.content()}
	}

	var parsed any
	if err := json.Unmarshal([]byte(extract.CleanSyntax(candidate)), &parsed); err != nil {
		return nil, fmt.Errorf("structured output parse failed: %w", err)
	}
	if r.schema != nil && r.schema.HasValidator() && !r.schema.Validate(parsed) {
		return nil, fmt.Errorf("structured output does not conform to schema %q: %v",
			r.schema.Name(), r.schema.ValidationErrors(parsed))
	}
	return parsed, nil
}

// candidate applies the extraction policy: heuristic extraction under forced
// extraction, raw content otherwise.
func (r *Response) candidate() (string, bool) {
	if r.forced {
		return extract.Extract(r.content())
	}
	return r.content(), r.content() != ""
}

func (r *Response) content() string {
	if r.raw == nil {
		return ""
	}
	return r.raw.Content
}
