// README: Provider gateway; one deadline-bounded call per request with fallback on any failure.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"wayfarer/internal/logger"
	"wayfarer/internal/metrics"
)

// DefaultTimeout applies when a request carries no positive timeout.
const DefaultTimeout = 120 * time.Second

const (
	reasonTimeout       = "timeout"
	reasonCancelled     = "cancelled"
	reasonProviderError = "provider_error"
	reasonEmpty         = "empty"
	reasonParseError    = "parse_error"
)

// Gateway issues generation requests. It never retries and never returns an
// error: every failure mode collapses into the caller's fallback value.
type Gateway struct {
	provider TextProvider
	log      logger.Logger
	recorder Recorder
}

// NewGateway wires a provider. recorder may be nil.
func NewGateway(provider TextProvider, log logger.Logger, recorder Recorder) *Gateway {
	if log == nil {
		log = logger.NewNop()
	}
	return &Gateway{provider: provider, log: log, recorder: recorder}
}

// Generate performs req and decodes the output into T.
// With a schema the text is parsed as JSON; without one the raw text is
// returned, which requires T to be string.
func Generate[T any](ctx context.Context, g *Gateway, req GenerationRequest, fallback T) Result[T] {
	start := time.Now()
	text, reason := g.call(ctx, req)

	res := Result[T]{Value: fallback, Outcome: OutcomeFallback, Reason: reason}
	if reason == "" {
		if req.Schema != nil {
			var v T
			cleaned := cleanJSONString(text)
			if err := json.Unmarshal([]byte(cleaned), &v); err != nil || cleaned == "null" {
				res.Reason = reasonParseError
			} else {
				res = Result[T]{Value: v, Outcome: OutcomeParsed}
			}
		} else if v, ok := any(text).(T); ok {
			res = Result[T]{Value: v, Outcome: OutcomeRaw}
		} else {
			res.Reason = reasonParseError
		}
	}

	g.finish(ctx, req, res.Outcome, res.Reason, time.Since(start))
	return res
}

// GenerateText returns the raw text of req, or fallback.
func (g *Gateway) GenerateText(ctx context.Context, req GenerationRequest, fallback string) Result[string] {
	req.Schema = nil
	return Generate(ctx, g, req, fallback)
}

type callResult struct {
	text string
	err  error
}

// call races the provider against the request deadline. The returned reason is
// empty on success.
func (g *Gateway) call(ctx context.Context, req GenerationRequest) (string, string) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: fmt.Errorf("provider panic: %v", r)}
			}
		}()
		text, err := g.provider.GenerateText(callCtx, req)
		done <- callResult{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) {
				return "", reasonTimeout
			}
			g.log.WithError(res.err).Warn("provider call failed", logger.Fields{
				"provider": g.provider.Name(),
				"model":    req.Model,
			})
			return "", reasonProviderError
		}
		if strings.TrimSpace(res.text) == "" {
			return "", reasonEmpty
		}
		return res.text, ""
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return "", reasonCancelled
		}
		return "", reasonTimeout
	}
}

func (g *Gateway) finish(ctx context.Context, req GenerationRequest, outcome Outcome, reason string, elapsed time.Duration) {
	provider := g.provider.Name()
	metrics.ProviderCalls.WithLabelValues(provider, req.Model, string(outcome)).Inc()
	metrics.ProviderCallDuration.WithLabelValues(provider, req.Model).Observe(elapsed.Seconds())

	fields := logger.Fields{
		"provider":    provider,
		"model":       req.Model,
		"outcome":     string(outcome),
		"duration_ms": elapsed.Milliseconds(),
	}
	if reason != "" {
		fields["reason"] = reason
		g.log.Warn("generation fell back", fields)
	} else {
		g.log.Info("generation completed", fields)
	}

	if g.recorder == nil {
		return
	}
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	err := g.recorder.Record(recCtx, CallRecord{
		Provider: provider,
		Model:    req.Model,
		Outcome:  string(outcome),
		Reason:   reason,
		Duration: elapsed,
	})
	if err != nil {
		g.log.WithError(err).Warn("record generation call", fields)
	}
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
