package ai

import "time"

// Schema is a provider-neutral description of the JSON a model must emit.
// Type is one of "object", "array", "string", "integer", "number", "boolean".
type Schema struct {
	Type        string
	Description string
	Properties  map[string]*Schema
	Items       *Schema
	Required    []string
	Nullable    bool
}

// GenerationRequest is a single text-generation call. It is passed by value and
// never mutated after it is built.
type GenerationRequest struct {
	Model             string
	Parts             []string
	SystemInstruction string
	Schema            *Schema
	Temperature       *float32
	TopP              *float32
	TopK              *int32
	MaxOutputTokens   int32
	Timeout           time.Duration
}

// Outcome records which of the three result kinds a call produced.
type Outcome string

const (
	OutcomeParsed   Outcome = "parsed"
	OutcomeRaw      Outcome = "raw"
	OutcomeFallback Outcome = "fallback"
)

// Result carries the value returned by the gateway and how it was obtained.
type Result[T any] struct {
	Value   T
	Outcome Outcome
	// Reason is set for fallbacks: "timeout", "provider_error", "empty", "parse_error".
	Reason string
}

// Float32 and Int32 build optional sampling parameters.
func Float32(v float32) *float32 { return &v }
func Int32(v int32) *int32       { return &v }
