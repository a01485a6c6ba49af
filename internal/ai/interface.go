package ai

import (
	"context"
	"time"
)

// TextProvider sends one generation request and returns the concatenated text
// of the first candidate. Implementations must honour ctx cancellation.
type TextProvider interface {
	Name() string
	GenerateText(ctx context.Context, req GenerationRequest) (string, error)
}

// CallRecord describes a finished provider call for auditing.
type CallRecord struct {
	Provider string
	Model    string
	Outcome  string
	Reason   string
	Duration time.Duration
}

// Recorder persists call records. Recording failures never affect the caller.
type Recorder interface {
	Record(ctx context.Context, rec CallRecord) error
}
