package jsonschema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Generate builds a Schema for the Go type T using reflection. Struct fields
// are mapped through their `json` tags; a field is required when it is a
// non-pointer without omitempty, or when its `jsonschema` tag says so.
//
// Supported `jsonschema` tag entries:
//   - description=<text>
//   - enum=<value> (repeatable; converted to the field's Go type)
//   - required
//
// Recursive types are handled through $defs and $ref.
//
// Example:
//
//	type Review struct {
//	    Product string `json:"product" jsonschema:"required"`
//	    Rating  int    `json:"rating" jsonschema:"enum=1,enum=2,enum=3,enum=4,enum=5"`
//	    Notes   string `json:"notes,omitempty"`
//	}
//
//	schema, err := jsonschema.Generate[Review]("product-review")
func Generate[T any](name string, opts ...Option) (*Schema, error) {
	t := reflect.TypeFor[T]()
	gc := &genContext{
		visited: make(map[reflect.Type]string),
		defs:    make(map[string]*Property),
	}

	root, err := generateType(t, gc, true)
	if err != nil {
		return nil, err
	}
	if len(gc.defs) > 0 {
		root.Defs = gc.defs
	}

	return New(name, root, opts...), nil
}

// genContext tracks visited types during generation so recursive structures
// become $ref nodes instead of infinite trees.
type genContext struct {
	visited map[reflect.Type]string
	defs    map[string]*Property
}

func generateType(t reflect.Type, gc *genContext, isRoot bool) (*Property, error) {
	switch t.Kind() {
	case reflect.Ptr:
		return generateType(t.Elem(), gc, isRoot)
	case reflect.Struct:
		return generateStruct(t, gc, isRoot)
	default:
		return generateField(t, gc)
	}
}

func generateStruct(t reflect.Type, gc *genContext, isRoot bool) (*Property, error) {
	if defName, seen := gc.visited[t]; seen {
		return &Property{Ref: "#/$defs/" + defName}, nil
	}

	defName := defNameFor(t)
	recursive := hasRecursiveFields(t)
	if recursive {
		gc.visited[t] = defName
	}

	prop := &Property{
		Type:       "object",
		Properties: map[string]*Property{},
	}
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		fieldName := field.Name
		omitEmpty := false
		if jsonTag != "" {
			if commaIdx := strings.Index(jsonTag, ","); commaIdx != -1 {
				fieldName = jsonTag[:commaIdx]
				omitEmpty = strings.Contains(jsonTag[commaIdx:], "omitempty")
			} else {
				fieldName = jsonTag
			}
		}

		fieldProp, err := generateField(field.Type, gc)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fieldName, err)
		}
		prop.Properties[fieldName] = fieldProp

		requiredByTag := false
		if fieldProp.Ref == "" {
			requiredByTag, err = applySchemaTag(field.Type, field.Tag, fieldProp)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", fieldName, err)
			}
		}

		if (field.Type.Kind() != reflect.Ptr && !omitEmpty) || requiredByTag {
			required = append(required, fieldName)
		}
	}

	if len(required) > 0 {
		prop.Required = required
	}

	if recursive && !isRoot {
		gc.defs[defName] = prop
		return &Property{Ref: "#/$defs/" + defName}, nil
	}
	if recursive {
		// Root of a recursive type: keep the full tree here and register a
		// copy as the definition so nested $ref nodes resolve. The copy must
		// not carry Defs, otherwise the marshalled tree would self-reference.
		gc.defs[defName] = &Property{
			Type:       prop.Type,
			Properties: prop.Properties,
			Required:   prop.Required,
		}
	}

	return prop, nil
}

func generateField(t reflect.Type, gc *genContext) (*Property, error) {
	switch t.Kind() {
	case reflect.String:
		return &Property{Type: "string"}, nil
	case reflect.Bool:
		return &Property{Type: "boolean"}, nil
	case reflect.Float32, reflect.Float64:
		return &Property{Type: "number"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Property{Type: "integer"}, nil
	case reflect.Slice, reflect.Array:
		items, err := generateField(t.Elem(), gc)
		if err != nil {
			return nil, err
		}
		return &Property{Type: "array", Items: items}, nil
	case reflect.Map:
		values, err := generateField(t.Elem(), gc)
		if err != nil {
			return nil, err
		}
		return &Property{Type: "object", AdditionalProperties: values}, nil
	case reflect.Ptr:
		return generateField(t.Elem(), gc)
	case reflect.Struct:
		return generateStruct(t, gc, false)
	default:
		return nil, fmt.Errorf("unsupported type %s", t)
	}
}

// applySchemaTag parses the `jsonschema` struct tag and applies the settings
// to the property. It reports whether the field was explicitly marked
// required.
func applySchemaTag(fieldType reflect.Type, tag reflect.StructTag, prop *Property) (bool, error) {
	schemaTag := tag.Get("jsonschema")
	if schemaTag == "" {
		return false, nil
	}

	requiredByTag := false
	for _, item := range strings.Split(schemaTag, ",") {
		key, value, hasValue := strings.Cut(item, "=")
		switch {
		case key == "required" && !hasValue:
			requiredByTag = true
		case key == "description" && hasValue:
			prop.Description = value
		case key == "enum" && hasValue:
			enumValue, err := convertEnumValue(fieldType, value)
			if err != nil {
				return false, err
			}
			prop.Enum = append(prop.Enum, enumValue)
		}
	}

	return requiredByTag, nil
}

func convertEnumValue(fieldType reflect.Type, value string) (any, error) {
	switch fieldType.Kind() {
	case reflect.String:
		return value, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse enum value %q as int: %w", value, err)
		}
		return v, nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse enum value %q as float: %w", value, err)
		}
		return v, nil
	case reflect.Bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("parse enum value %q as bool: %w", value, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("enum tag unsupported for field type %s", fieldType)
	}
}

func defNameFor(t reflect.Type) string {
	if t.Name() != "" {
		return strings.ToLower(t.Name())
	}
	return "anonymousStruct"
}

// hasRecursiveFields reports whether t reaches itself through its fields.
func hasRecursiveFields(t reflect.Type) bool {
	return reachesType(t, t, make(map[reflect.Type]bool))
}

func reachesType(target, current reflect.Type, visited map[reflect.Type]bool) bool {
	if visited[current] {
		return false
	}
	visited[current] = true

	switch current.Kind() {
	case reflect.Struct:
		for i := 0; i < current.NumField(); i++ {
			field := current.Field(i)
			if !field.IsExported() {
				continue
			}
			ft := field.Type
			for ft.Kind() == reflect.Ptr || ft.Kind() == reflect.Slice || ft.Kind() == reflect.Array || ft.Kind() == reflect.Map {
				ft = ft.Elem()
			}
			if ft == target {
				return true
			}
			if ft.Kind() == reflect.Struct && reachesType(target, ft, visited) {
				return true
			}
		}
	case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Map:
		et := current.Elem()
		for et.Kind() == reflect.Ptr {
			et = et.Elem()
		}
		if et == target {
			return true
		}
		if et.Kind() == reflect.Struct && reachesType(target, et, visited) {
			return true
		}
	}

	return false
}
