package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/leofalp/structo/core/jsonschema"
	"github.com/leofalp/structo/core/response"
	"github.com/leofalp/structo/providers/ai"
	"github.com/leofalp/structo/providers/validator"
)

// Structured wraps a Client and provides type-safe structured output for one
// response shape. The JSON schema for T is generated once at creation time,
// a structural validator is attached, and every completion is resolved
// through the strict pipeline into a T.
//
// Example usage:
//
//	type ProductReview struct {
//	    ProductName string `json:"product_name" jsonschema:"required"`
//	    Rating      int    `json:"rating" jsonschema:"required"`
//	    Summary     string `json:"summary" jsonschema:"required"`
//	}
//
//	reviews, err := client.NewStructured[ProductReview](provider, "product-review",
//	    client.WithModel("gpt-4o-mini"),
//	)
//	result, err := reviews.Complete(ctx, "Analyze this review: ...")
//	fmt.Println(result.Data.Rating)
type Structured[T any] struct {
	client *Client
	schema *jsonschema.Schema
}

// StructuredResult pairs the typed value with the raw response metadata.
type StructuredResult[T any] struct {
	Data *T
	Raw  *ai.ChatResponse
}

// NewStructured creates a Structured client for type T. The generated schema
// carries the given name and a structural validator.
func NewStructured[T any](provider ai.Provider, schemaName string, opts ...Option) (*Structured[T], error) {
	base, err := New(provider, opts...)
	if err != nil {
		return nil, err
	}

	schema, err := jsonschema.Generate[T](schemaName, jsonschema.WithValidator(validator.New()))
	if err != nil {
		return nil, fmt.Errorf("generating schema for %T: %w", *new(T), err)
	}

	return &Structured[T]{client: base, schema: schema}, nil
}

// Schema returns the generated schema, useful for debugging or introspection.
func (s *Structured[T]) Schema() *jsonschema.Schema {
	return s.schema
}

// Complete sends the prompt and resolves the completion strictly into a T,
// healing first when the client is configured to.
func (s *Structured[T]) Complete(ctx context.Context, prompt string) (*StructuredResult[T], error) {
	resp, err := s.client.Complete(ctx, prompt, s.schema)
	if err != nil {
		return nil, err
	}

	value, err := resp.StructuredOutput(ctx, response.ModeStrict)
	if err != nil {
		return nil, err
	}

	// The healed value is a decoded any; round-trip it into T. Conformance
	// was already confirmed by the strict pipeline.
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("re-encoding structured value: %w", err)
	}
	var data T
	if err := json.Unmarshal(encoded, &data); err != nil {
		return nil, fmt.Errorf("decoding structured value as %T: %w", data, err)
	}

	return &StructuredResult[T]{Data: &data, Raw: resp.Raw()}, nil
}
