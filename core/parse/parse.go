package parse

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/kaptinlin/jsonrepair"

	"github.com/leofalp/structo/core/extract"
)

// As converts raw completion text into the type T.
//
// Primitive targets (string, bool, int, uint, float) are converted directly
// with strconv. Complex targets (structs, maps, slices) go through JSON
// unmarshaling with a layered recovery strategy: if the content does not
// unmarshal as-is, a candidate is extracted from the surrounding text and
// cleaned, and as a last resort the candidate is run through jsonrepair and
// retried.
//
// As is a typed convenience for callers that want a T in one call and do not
// need validation or healing; the strict pipeline lives in core/response and
// core/heal.
//
// Example usage:
//
//	type Person struct {
//	    Name string `json:"name"`
//	    Age  int    `json:"age"`
//	}
//
//	// Valid JSON straight through
//	person, err := parse.As[Person](`{"name":"John","age":30}`)
//
//	// Prose-wrapped, slightly broken JSON is recovered
//	person, err := parse.As[Person]("Sure! {name: 'John', age: 30}")
//
//	// Primitives
//	count, err := parse.As[int]("42")
func As[T any](content string) (T, error) {
	var result T

	switch reflect.TypeFor[T]().Kind() {
	case reflect.String:
		reflect.ValueOf(&result).Elem().SetString(content)
		return result, nil

	case reflect.Bool:
		val, err := strconv.ParseBool(content)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as bool: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetBool(val)
		return result, nil

	case reflect.Float32, reflect.Float64:
		val, err := strconv.ParseFloat(content, 64)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as float: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetFloat(val)
		return result, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := strconv.ParseInt(content, 10, 64)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as int: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetInt(val)
		return result, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		val, err := strconv.ParseUint(content, 10, 64)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as uint: %w", err)
		}
		reflect.ValueOf(&result).Elem().SetUint(val)
		return result, nil

	default:
		return parseComplex[T](content)
	}
}

// parseComplex unmarshals content into T, recovering in two stages: heuristic
// extraction plus syntax cleanup first, jsonrepair second.
func parseComplex[T any](content string) (T, error) {
	var result T

	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	candidate, ok := extract.Extract(content)
	if !ok {
		candidate = content
	}
	candidate = extract.CleanSyntax(candidate)

	if err := json.Unmarshal([]byte(candidate), &result); err == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(candidate)
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: %v", result, repairErr)
	}

	if err := json.Unmarshal([]byte(repaired), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w (candidate: %s, repaired: %s)",
			result, err, candidate, repaired)
	}
	return result, nil
}
