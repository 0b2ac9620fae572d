package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Rorical/CodeAssist/internal/config"
)

const systemPrompt = "You are a code assistant embedded in an editor. Answer the request about the user's code. When asked for code only, reply with a single fenced code block."

// OpenAIClient answers analysis requests with an OpenAI-compatible chat
// model. Replies are shaped like the ask endpoint's: {"result": "..."}.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	logger  *zap.Logger
	metrics *Metrics
}

func NewOpenAIClient(apiKey, baseURL, model string, logger *zap.Logger, metrics *Metrics) *OpenAIClient {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		logger:  logger,
		metrics: metrics,
	}
}

// Call ignores endpoint; the profile's base URL decides where requests go.
func (c *OpenAIClient) Call(ctx context.Context, body AnalysisRequest, _ string) (any, error) {
	start := time.Now()
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: body.Question},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		err = toBackendError(err)
		c.metrics.observe(body.Mode, err, time.Since(start))
		c.logger.Warn("openai call failed", zap.String("model", c.model), zap.Error(err))
		return nil, err
	}
	c.metrics.observe(body.Mode, nil, time.Since(start))

	if len(resp.Choices) == 0 {
		return map[string]any{}, nil
	}
	return map[string]any{"result": resp.Choices[0].Message.Content}, nil
}

func toBackendError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &BackendError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &BackendError{StatusCode: reqErr.HTTPStatusCode, Body: string(reqErr.Body)}
	}
	return &BackendError{Cause: err}
}

// FromConfig builds the caller selected by cfg.Backend
func FromConfig(cfg *config.Config, logger *zap.Logger, metrics *Metrics) (Caller, error) {
	switch cfg.Backend {
	case config.BackendOpenAI:
		if !cfg.IsValid() {
			return nil, fmt.Errorf("profile %q has no API key", cfg.ActiveProfile)
		}
		return NewOpenAIClient(cfg.GetAPIKey(), cfg.GetBaseURL(), cfg.GetModel(), logger, metrics), nil
	default:
		return NewClient(
			WithEndpoint(cfg.Endpoint),
			WithLogger(logger),
			WithMetrics(metrics),
		), nil
	}
}
