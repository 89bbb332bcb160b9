package jsonschema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Property describes one node of a JSON Schema property tree. It follows the
// JSON Schema standard, supporting the subset of keywords that matter for
// structured LLM output: primitive types, object properties with required
// lists, array items, enums, and $ref/$defs for recursive types.
type Property struct {
	// Type specifies the data type (e.g., "object", "array", "string", "number")
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    []string `json:"required,omitempty"`
	// Properties of an object node, each with its own schema
	Properties map[string]*Property `json:"properties,omitempty"`
	// For array types, defines the schema of items in the array
	Items *Property `json:"items,omitempty"`
	// AdditionalProperties controls whether properties not declared in Properties are allowed
	AdditionalProperties any `json:"additionalProperties,omitempty"`
	// Default value for the property
	Default any `json:"default,omitempty"`
	// Enum contains the list of allowed values for the property
	Enum []any `json:"enum,omitempty"`
	// Ref is used for JSON Schema references to avoid infinite recursion
	Ref string `json:"$ref,omitempty"`
	// Defs contains reusable schema definitions
	Defs map[string]*Property `json:"$defs,omitempty"`
}

// Validator is the optional validation capability a Schema can be constructed
// with. Implementations check a decoded JSON value against a property tree
// and return one human-readable message per violation; an empty slice means
// the value conforms.
//
// The capability is resolved once at construction via [WithValidator] rather
// than probed at each call site; a Schema without one treats every value as
// valid.
type Validator interface {
	Validate(value any, root *Property) []string
}

// Schema is the normalized schema model for one structured-output shape:
// a name, a strictness flag, and a property tree. It is immutable once
// constructed and safe to share across concurrent requests.
//
// The same tree serves two serializations. [Schema.Wire] forces every
// declared property into the required list, which is what completion
// providers receive (several reject schemas with optional fields in strict
// mode). [Schema.Pure] preserves the caller's declared optionality and is
// what local validation and healing prompts use.
type Schema struct {
	name      string
	strict    bool
	root      *Property
	validator Validator
}

// Option configures a Schema at construction time.
type Option func(*Schema)

// WithStrict marks the schema as strict: providers that support native
// structured output are asked to enforce it, and format instructions use
// stronger language.
func WithStrict(strict bool) Option {
	return func(s *Schema) { s.strict = strict }
}

// WithValidator injects the validation capability used by Validate and
// ValidationErrors. Without it, validation is vacuously true.
func WithValidator(v Validator) Option {
	return func(s *Schema) { s.validator = v }
}

// New creates a Schema from a name and a property tree. The tree is treated
// as read-only from this point on; callers must not mutate it afterwards.
func New(name string, root *Property, opts ...Option) *Schema {
	s := &Schema{name: name, root: root}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the schema's name, used to label provider requests and events.
func (s *Schema) Name() string { return s.name }

// Strict reports whether the schema was declared strict.
func (s *Schema) Strict() bool { return s.strict }

// Pure returns the property tree with the caller's original required/optional
// semantics intact. This is the serialization used for local validation and
// for the schema JSON embedded in healing prompts.
func (s *Schema) Pure() *Property {
	return s.root
}

// Wire returns a deep copy of the property tree in which every declared
// property, at every object level, is listed as required. Provider strict
// modes commonly demand this shape regardless of the caller's declared
// optionality; the caller's intent is preserved separately by [Schema.Pure].
func (s *Schema) Wire() *Property {
	return forceRequired(s.root)
}

// HasValidator reports whether a validation capability was injected.
func (s *Schema) HasValidator() bool {
	return s.validator != nil
}

// Validate reports whether value conforms to the pure schema. When no
// validation capability is configured the result is vacuously true: callers
// must not fail merely because structural validation could not run.
func (s *Schema) Validate(value any) bool {
	if s.validator == nil {
		return true
	}
	return len(s.validator.Validate(value, s.root)) == 0
}

// ValidationErrors returns one message per field-level violation, or nil when
// the value conforms or no validation capability is configured.
func (s *Schema) ValidationErrors(value any) []string {
	if s.validator == nil {
		return nil
	}
	return s.validator.Validate(value, s.root)
}

// FormatInstructions renders natural-language prompt text instructing a model
// to emit JSON conforming to the pure schema. The forced variant adds
// stricter "output ONLY JSON" language for models without native structured
// output support, where the reply will be heuristically extracted.
func (s *Schema) FormatInstructions(forced bool) string {
	schemaJSON, err := s.root.JSONString(true)
	if err != nil {
		schemaJSON = "{}"
	}

	var b strings.Builder
	b.WriteString("Respond with a JSON ")
	if s.root != nil && s.root.Type == "array" {
		b.WriteString("array")
	} else {
		b.WriteString("object")
	}
	fmt.Fprintf(&b, " that conforms to the following JSON Schema (%q):\n\n", s.name)
	b.WriteString(schemaJSON)
	b.WriteString("\n\n")
	if forced {
		b.WriteString("Output ONLY the JSON value. Do not include explanations, markdown fences, or any text before or after the JSON.")
	} else {
		b.WriteString("Ensure the response is valid JSON matching the schema.")
	}
	return b.String()
}

// forceRequired deep-copies a property tree, setting Required on every object
// node to the sorted list of all its declared property names.
func forceRequired(p *Property) *Property {
	if p == nil {
		return nil
	}

	out := &Property{
		Type:                 p.Type,
		Description:          p.Description,
		AdditionalProperties: p.AdditionalProperties,
		Default:              p.Default,
		Ref:                  p.Ref,
	}
	if len(p.Enum) > 0 {
		out.Enum = append([]any(nil), p.Enum...)
	}
	if p.Items != nil {
		out.Items = forceRequired(p.Items)
	}
	if p.Properties != nil {
		out.Properties = make(map[string]*Property, len(p.Properties))
		names := make([]string, 0, len(p.Properties))
		for name, child := range p.Properties {
			out.Properties[name] = forceRequired(child)
			names = append(names, name)
		}
		sort.Strings(names)
		out.Required = names
	}
	if p.Defs != nil {
		out.Defs = make(map[string]*Property, len(p.Defs))
		for name, def := range p.Defs {
			out.Defs[name] = forceRequired(def)
		}
	}
	return out
}

// JSONString converts the property tree to its JSON representation.
// indent: optional bool parameter. If true, formats JSON with indentation.
// If false or omitted, returns compact JSON.
func (p *Property) JSONString(indent ...bool) (string, error) {
	shouldIndent := false
	if len(indent) > 0 {
		shouldIndent = indent[0]
	}

	var jsonBytes []byte
	var err error

	if shouldIndent {
		jsonBytes, err = json.MarshalIndent(p, "", "  ")
	} else {
		jsonBytes, err = json.Marshal(p)
	}

	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(jsonBytes), nil
}

// String returns the compact JSON representation of the property tree, or an
// error message if marshalling fails.
func (p *Property) String() string {
	jsonStr, err := p.JSONString()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return jsonStr
}
