// README: Perplexity chat-completions client (OpenAI-compatible API) for web-grounded answers.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"wayfarer/internal/ai"
	"wayfarer/internal/logger"
	"wayfarer/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.perplexity.ai"
	DefaultTimeout = 30 * time.Second
	providerName   = "perplexity"
)

// ErrNotConfigured is returned when no API key was supplied.
var ErrNotConfigured = errors.New("search provider is not configured")

// Request is one web-grounded chat completion.
type Request struct {
	Model             string
	SystemPrompt      string
	UserPrompt        string
	Temperature       float64
	TopP              float64
	MaxTokens         int64
	SearchContextSize string
	// RecencyFilter is forwarded untouched when non-empty.
	RecencyFilter string
}

// Client talks to the Perplexity API through the OpenAI SDK.
type Client struct {
	client   *openai.Client
	timeout  time.Duration
	log      logger.Logger
	recorder ai.Recorder
}

// NewClient builds a client. SDK retries are disabled; callers get exactly one attempt.
func NewClient(apiKey, baseURL string, log logger.Logger, recorder ai.Recorder, opts ...option.RequestOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.NewNop()
	}
	if apiKey == "" {
		return &Client{timeout: DefaultTimeout, log: log, recorder: recorder}
	}
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}, opts...)
	client := openai.NewClient(opts...)
	return &Client{client: &client, timeout: DefaultTimeout, log: log, recorder: recorder}
}

// WithTimeout bounds every completion call; d <= 0 keeps DefaultTimeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.timeout = d
	}
	return c
}

// ChatCompletion returns the content of the first choice, or "" when the
// provider returned no choices.
func (c *Client) ChatCompletion(ctx context.Context, req Request) (string, error) {
	if c.client == nil {
		return "", ErrNotConfigured
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		Temperature: openai.Float(req.Temperature),
		TopP:        openai.Float(req.TopP),
		MaxTokens:   openai.Int(req.MaxTokens),
	}
	opts := requestOptions(req)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(callCtx, params, opts...)
	elapsed := time.Since(start)

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "":
		outcome = "empty"
	}
	c.observe(ctx, req.Model, outcome, elapsed)

	if err != nil {
		return "", fmt.Errorf("perplexity chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// requestOptions sets the Perplexity-specific body fields the SDK does not model.
func requestOptions(req Request) []option.RequestOption {
	size := req.SearchContextSize
	if size == "" {
		size = "high"
	}
	opts := []option.RequestOption{
		option.WithJSONSet("web_search_options", map[string]any{"search_context_size": size}),
		option.WithJSONSet("search_mode", "web"),
		option.WithJSONSet("stream", false),
		option.WithJSONSet("return_images", false),
		option.WithJSONSet("return_related_questions", false),
	}
	if req.RecencyFilter != "" {
		opts = append(opts, option.WithJSONSet("search_recency_filter", req.RecencyFilter))
	}
	return opts
}

func (c *Client) observe(ctx context.Context, model, outcome string, elapsed time.Duration) {
	metrics.ProviderCalls.WithLabelValues(providerName, model, outcome).Inc()
	metrics.ProviderCallDuration.WithLabelValues(providerName, model).Observe(elapsed.Seconds())
	c.log.Info("search completion finished", logger.Fields{
		"provider":    providerName,
		"model":       model,
		"outcome":     outcome,
		"duration_ms": elapsed.Milliseconds(),
	})

	if c.recorder == nil {
		return
	}
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := c.recorder.Record(recCtx, ai.CallRecord{
		Provider: providerName,
		Model:    model,
		Outcome:  outcome,
		Duration: elapsed,
	}); err != nil {
		c.log.WithError(err).Warn("record search call", nil)
	}
}
