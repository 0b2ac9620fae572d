package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/CodeAssist/internal/config"
)

func TestOpenAIClient_ReplyShapedLikeAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, Prompt(ModeHints, "x"), req.Messages[1].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"use a constant"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", srv.URL, "test-model", nil, nil)
	data, err := c.Call(context.Background(), NewRequest(ModeHints, "x"), "ignored")
	require.NoError(t, err)
	assert.Equal(t, "use a constant", ResultText(data))
}

func TestOpenAIClient_APIErrorBecomesBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIClient("sk-bad", srv.URL, "m", nil, nil).Call(context.Background(), NewRequest(ModeHints, "x"), "")
	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusUnauthorized, be.StatusCode)
	assert.Equal(t, "bad key", be.Body)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Endpoint = "http://example.test/ask"

	caller, err := FromConfig(cfg, nil, nil)
	require.NoError(t, err)
	client, ok := caller.(*Client)
	require.True(t, ok)
	assert.Equal(t, "http://example.test/ask", client.Endpoint())

	cfg.Backend = config.BackendOpenAI
	_, err = FromConfig(cfg, nil, nil)
	assert.Error(t, err, "openai backend without an API key")
}

type stubCaller string

func (s stubCaller) Call(context.Context, AnalysisRequest, string) (any, error) {
	return map[string]any{"result": string(s)}, nil
}

func TestSwitch(t *testing.T) {
	sw := NewSwitch(stubCaller("first"))
	data, err := sw.Call(context.Background(), AnalysisRequest{}, "")
	require.NoError(t, err)
	assert.Equal(t, "first", ResultText(data))

	sw.Set(stubCaller("second"))
	data, err = sw.Call(context.Background(), AnalysisRequest{}, "")
	require.NoError(t, err)
	assert.Equal(t, "second", ResultText(data))
}
