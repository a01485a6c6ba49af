package search

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/ai"
	"wayfarer/internal/logger"
)

const completionBody = `{
	"id": "cmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "sonar",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "{\"travel_options\": {}}"}
	}]
}`

type recorderFunc func(ctx context.Context, rec ai.CallRecord) error

func (f recorderFunc) Record(ctx context.Context, rec ai.CallRecord) error { return f(ctx, rec) }

func newTestServer(t *testing.T, status int, body string, captured *map[string]any, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer pplx-test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		if captured != nil {
			assert.NoError(t, json.Unmarshal(raw, captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChatCompletion_SendsSearchParameters(t *testing.T) {
	var body map[string]any
	var hits atomic.Int32
	srv := newTestServer(t, http.StatusOK, completionBody, &body, &hits)

	var recorded []ai.CallRecord
	rec := recorderFunc(func(_ context.Context, r ai.CallRecord) error {
		recorded = append(recorded, r)
		return nil
	})
	c := NewClient("pplx-test", srv.URL, logger.NewTest(t), rec)

	text, err := c.ChatCompletion(context.Background(), Request{
		Model:             "sonar",
		SystemPrompt:      "system",
		UserPrompt:        "Origin: Paris\nDestination: Lyon",
		Temperature:       0.2,
		TopP:              0.9,
		MaxTokens:         1400,
		SearchContextSize: "high",
		RecencyFilter:     "month",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"travel_options": {}}`, text)
	assert.EqualValues(t, 1, hits.Load())

	assert.Equal(t, "sonar", body["model"])
	assert.InDelta(t, 0.2, body["temperature"], 1e-9)
	assert.InDelta(t, 0.9, body["top_p"], 1e-9)
	assert.EqualValues(t, 1400, body["max_tokens"])
	assert.Equal(t, "web", body["search_mode"])
	assert.Equal(t, false, body["stream"])
	assert.Equal(t, false, body["return_images"])
	assert.Equal(t, false, body["return_related_questions"])
	assert.Equal(t, "month", body["search_recency_filter"])
	assert.Equal(t, map[string]any{"search_context_size": "high"}, body["web_search_options"])

	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])

	require.Len(t, recorded, 1)
	assert.Equal(t, "perplexity", recorded[0].Provider)
	assert.Equal(t, "ok", recorded[0].Outcome)
}

func TestChatCompletion_OmitsEmptyRecencyFilter(t *testing.T) {
	var body map[string]any
	var hits atomic.Int32
	srv := newTestServer(t, http.StatusOK, completionBody, &body, &hits)
	c := NewClient("pplx-test", srv.URL, logger.NewNop(), nil)

	_, err := c.ChatCompletion(context.Background(), Request{Model: "sonar", MaxTokens: 10})
	require.NoError(t, err)
	_, present := body["search_recency_filter"]
	assert.False(t, present)
	assert.Equal(t, map[string]any{"search_context_size": "high"}, body["web_search_options"])
}

func TestChatCompletion_ServerErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, http.StatusInternalServerError, `{"error": {"message": "upstream"}}`, nil, &hits)
	c := NewClient("pplx-test", srv.URL, logger.NewNop(), nil)

	_, err := c.ChatCompletion(context.Background(), Request{Model: "sonar", MaxTokens: 10})
	require.Error(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestChatCompletion_NoChoices(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"sonar","choices":[]}`, nil, &hits)
	c := NewClient("pplx-test", srv.URL, logger.NewNop(), nil)

	text, err := c.ChatCompletion(context.Background(), Request{Model: "sonar", MaxTokens: 10})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestChatCompletion_NotConfigured(t *testing.T) {
	c := NewClient("", "", logger.NewNop(), nil)

	_, err := c.ChatCompletion(context.Background(), Request{Model: "sonar"})
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestChatCompletion_StalledProviderTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	var recorded []ai.CallRecord
	rec := recorderFunc(func(_ context.Context, r ai.CallRecord) error {
		recorded = append(recorded, r)
		return nil
	})
	c := NewClient("pplx-test", srv.URL, logger.NewNop(), rec).WithTimeout(100 * time.Millisecond)

	start := time.Now()
	_, err := c.ChatCompletion(context.Background(), Request{Model: "sonar", MaxTokens: 10})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
	require.Len(t, recorded, 1)
	assert.Equal(t, "error", recorded[0].Outcome)
}

func TestWithTimeoutIgnoresNonPositive(t *testing.T) {
	c := NewClient("pplx-test", "", logger.NewNop(), nil).WithTimeout(0)
	assert.Equal(t, DefaultTimeout, c.timeout)

	c.WithTimeout(-time.Second)
	assert.Equal(t, DefaultTimeout, c.timeout)
}
