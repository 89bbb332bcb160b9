package validator

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/leofalp/structo/core/jsonschema"
)

// Structural is a tree-walking implementation of jsonschema.Validator. It
// checks a decoded JSON value (the output of encoding/json into any) against
// a property tree: types, required properties, enums, array items, and
// additionalProperties=false. $ref nodes are resolved against the root's
// $defs.
//
// It is deliberately not a full JSON Schema engine: no allOf/anyOf, formats,
// or numeric bounds. That matches what structured-output schemas generated
// from Go types can express.
type Structural struct{}

// New returns a ready-to-use structural validator. The zero value is also
// usable; the constructor exists for injection-site symmetry.
func New() *Structural {
	return &Structural{}
}

var _ jsonschema.Validator = (*Structural)(nil)

// Validate returns one message per violation found walking value against
// root. An empty result means the value conforms.
func (v *Structural) Validate(value any, root *jsonschema.Property) []string {
	if root == nil {
		return nil
	}
	w := &walker{defs: root.Defs}
	w.check("$", value, root)
	return w.violations
}

type walker struct {
	defs       map[string]*jsonschema.Property
	violations []string
}

func (w *walker) addf(format string, args ...any) {
	w.violations = append(w.violations, fmt.Sprintf(format, args...))
}

func (w *walker) check(path string, value any, prop *jsonschema.Property) {
	prop = w.resolve(prop)
	if prop == nil {
		return
	}

	if len(prop.Enum) > 0 && !enumContains(prop.Enum, value) {
		w.addf("%s: value %v is not one of the allowed values", path, value)
		return
	}

	switch prop.Type {
	case "object":
		w.checkObject(path, value, prop)
	case "array":
		w.checkArray(path, value, prop)
	case "string":
		if _, ok := value.(string); !ok {
			w.addf("%s: expected string, got %s", path, typeName(value))
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			w.addf("%s: expected boolean, got %s", path, typeName(value))
		}
	case "number":
		if _, ok := value.(float64); !ok {
			w.addf("%s: expected number, got %s", path, typeName(value))
		}
	case "integer":
		f, ok := value.(float64)
		if !ok || f != math.Trunc(f) {
			w.addf("%s: expected integer, got %s", path, typeName(value))
		}
	case "null":
		if value != nil {
			w.addf("%s: expected null, got %s", path, typeName(value))
		}
	case "":
		// Untyped node: nothing to enforce beyond enum above.
	}
}

func (w *walker) checkObject(path string, value any, prop *jsonschema.Property) {
	obj, ok := value.(map[string]any)
	if !ok {
		w.addf("%s: expected object, got %s", path, typeName(value))
		return
	}

	for _, name := range prop.Required {
		if _, present := obj[name]; !present {
			w.addf("%s: missing required property %q", path, name)
		}
	}

	for name, raw := range obj {
		child, declared := prop.Properties[name]
		if declared {
			w.check(path+"."+name, raw, child)
			continue
		}
		switch ap := prop.AdditionalProperties.(type) {
		case bool:
			if !ap {
				w.addf("%s: unexpected property %q", path, name)
			}
		case *jsonschema.Property:
			w.check(path+"."+name, raw, ap)
		}
	}
}

func (w *walker) checkArray(path string, value any, prop *jsonschema.Property) {
	arr, ok := value.([]any)
	if !ok {
		w.addf("%s: expected array, got %s", path, typeName(value))
		return
	}
	if prop.Items == nil {
		return
	}
	for i, item := range arr {
		w.check(fmt.Sprintf("%s[%d]", path, i), item, prop.Items)
	}
}

// resolve follows a $ref node to its definition under the root's $defs.
// Unresolvable refs are treated as unconstrained rather than as violations.
func (w *walker) resolve(prop *jsonschema.Property) *jsonschema.Property {
	if prop == nil || prop.Ref == "" {
		return prop
	}
	name := strings.TrimPrefix(prop.Ref, "#/$defs/")
	if def, ok := w.defs[name]; ok {
		return def
	}
	return nil
}

func enumContains(enum []any, value any) bool {
	for _, allowed := range enum {
		if reflect.DeepEqual(allowed, value) {
			return true
		}
		// JSON decoding yields float64 for all numbers; compare numerically
		// against integer enum values produced by schema generation.
		if f, ok := value.(float64); ok {
			switch a := allowed.(type) {
			case int64:
				if float64(a) == f {
					return true
				}
			case float64:
				if a == f {
					return true
				}
			}
		}
	}
	return false
}

func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
