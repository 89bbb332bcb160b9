package jsonschema

import (
	"strings"
	"testing"
)

func reviewSchema() *Property {
	return &Property{
		Type: "object",
		Properties: map[string]*Property{
			"product": {Type: "string"},
			"rating":  {Type: "integer"},
			"details": {
				Type: "object",
				Properties: map[string]*Property{
					"summary": {Type: "string"},
					"pros":    {Type: "array", Items: &Property{Type: "string"}},
				},
				Required: []string{"summary"},
			},
		},
		Required: []string{"product"},
	}
}

func TestWireForcesRequiredRecursively(t *testing.T) {
	s := New("review", reviewSchema())

	wire := s.Wire()
	if got, want := wire.Required, []string{"details", "product", "rating"}; !equalStrings(got, want) {
		t.Errorf("root required = %v, want %v", got, want)
	}
	details := wire.Properties["details"]
	if got, want := details.Required, []string{"pros", "summary"}; !equalStrings(got, want) {
		t.Errorf("nested required = %v, want %v", got, want)
	}
}

func TestWireDoesNotMutatePure(t *testing.T) {
	s := New("review", reviewSchema())

	_ = s.Wire()

	pure := s.Pure()
	if got, want := pure.Required, []string{"product"}; !equalStrings(got, want) {
		t.Errorf("pure root required = %v, want %v", got, want)
	}
	if got, want := pure.Properties["details"].Required, []string{"summary"}; !equalStrings(got, want) {
		t.Errorf("pure nested required = %v, want %v", got, want)
	}
}

func TestWireCopiesItemsAndDefs(t *testing.T) {
	root := &Property{
		Type: "array",
		Items: &Property{
			Type: "object",
			Properties: map[string]*Property{
				"name": {Type: "string"},
			},
		},
		Defs: map[string]*Property{
			"node": {
				Type: "object",
				Properties: map[string]*Property{
					"next": {Ref: "#/$defs/node"},
				},
			},
		},
	}
	s := New("list", root)

	wire := s.Wire()
	if got, want := wire.Items.Required, []string{"name"}; !equalStrings(got, want) {
		t.Errorf("items required = %v, want %v", got, want)
	}
	if got, want := wire.Defs["node"].Required, []string{"next"}; !equalStrings(got, want) {
		t.Errorf("defs required = %v, want %v", got, want)
	}
	if root.Items.Required != nil {
		t.Error("Wire mutated the original items node")
	}
}

type fakeValidator struct {
	messages []string
	calls    int
}

func (f *fakeValidator) Validate(value any, root *Property) []string {
	f.calls++
	return f.messages
}

func TestValidateWithoutValidatorIsVacuouslyTrue(t *testing.T) {
	s := New("review", reviewSchema())

	if s.HasValidator() {
		t.Error("HasValidator() = true without a validator")
	}
	if !s.Validate(map[string]any{"unexpected": true}) {
		t.Error("Validate() = false without a validator, want vacuous true")
	}
	if errs := s.ValidationErrors(map[string]any{}); errs != nil {
		t.Errorf("ValidationErrors() = %v without a validator, want nil", errs)
	}
}

func TestValidateDelegatesToValidator(t *testing.T) {
	v := &fakeValidator{messages: []string{"$.product: missing required property"}}
	s := New("review", reviewSchema(), WithValidator(v))

	if !s.HasValidator() {
		t.Error("HasValidator() = false with a validator")
	}
	if s.Validate(map[string]any{}) {
		t.Error("Validate() = true, want false when validator reports violations")
	}
	errs := s.ValidationErrors(map[string]any{})
	if len(errs) != 1 || errs[0] != v.messages[0] {
		t.Errorf("ValidationErrors() = %v, want %v", errs, v.messages)
	}
	if v.calls != 2 {
		t.Errorf("validator called %d times, want 2", v.calls)
	}
}

func TestFormatInstructions(t *testing.T) {
	s := New("review", reviewSchema())

	forced := s.FormatInstructions(true)
	if !strings.Contains(forced, `"review"`) {
		t.Error("forced instructions missing schema name")
	}
	if !strings.Contains(forced, `"product"`) {
		t.Error("forced instructions missing schema JSON")
	}
	if !strings.Contains(forced, "Output ONLY the JSON value") {
		t.Error("forced instructions missing ONLY-JSON directive")
	}

	gentle := s.FormatInstructions(false)
	if strings.Contains(gentle, "Output ONLY the JSON value") {
		t.Error("unforced instructions should not carry the ONLY-JSON directive")
	}
	if !strings.Contains(gentle, "valid JSON matching the schema") {
		t.Error("unforced instructions missing validity reminder")
	}
}

func TestFormatInstructionsArrayRoot(t *testing.T) {
	s := New("tags", &Property{Type: "array", Items: &Property{Type: "string"}})

	got := s.FormatInstructions(false)
	if !strings.Contains(got, "Respond with a JSON array") {
		t.Errorf("instructions = %q, want array phrasing", got)
	}
}

func TestStrictOption(t *testing.T) {
	if New("a", &Property{Type: "object"}).Strict() {
		t.Error("Strict() = true by default")
	}
	if !New("a", &Property{Type: "object"}, WithStrict(true)).Strict() {
		t.Error("Strict() = false with WithStrict(true)")
	}
}

func TestPropertyJSONString(t *testing.T) {
	p := &Property{Type: "object", Properties: map[string]*Property{"id": {Type: "integer"}}}

	compact, err := p.JSONString()
	if err != nil {
		t.Fatalf("JSONString() error: %v", err)
	}
	if strings.Contains(compact, "\n") {
		t.Errorf("compact JSON contains newlines: %q", compact)
	}

	indented, err := p.JSONString(true)
	if err != nil {
		t.Fatalf("JSONString(true) error: %v", err)
	}
	if !strings.Contains(indented, "\n  ") {
		t.Errorf("indented JSON not indented: %q", indented)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
