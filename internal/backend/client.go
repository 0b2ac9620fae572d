package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const DefaultEndpoint = "https://api-sand-two-62.vercel.app/api/ask"

// Caller performs one analysis call. An empty endpoint means the caller's
// configured default.
type Caller interface {
	Call(ctx context.Context, body AnalysisRequest, endpoint string) (any, error)
}

// Client posts analysis requests to the ask endpoint. It never retries; the
// first failure is returned to the caller.
type Client struct {
	httpClient *http.Client
	endpoint   string
	logger     *zap.Logger
	metrics    *Metrics
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		endpoint:   DefaultEndpoint,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) Call(ctx context.Context, body AnalysisRequest, endpoint string) (any, error) {
	if endpoint == "" {
		endpoint = c.endpoint
	}
	start := time.Now()
	data, err := c.post(ctx, body, endpoint)
	c.metrics.observe(body.Mode, err, time.Since(start))
	if err != nil {
		c.logger.Warn("backend call failed",
			zap.String("endpoint", endpoint),
			zap.String("mode", string(body.Mode)),
			zap.Error(err))
		return nil, err
	}
	c.logger.Debug("backend call succeeded",
		zap.String("endpoint", endpoint),
		zap.String("mode", string(body.Mode)),
		zap.Duration("elapsed", time.Since(start)))
	return data, nil
}

func (c *Client) post(ctx context.Context, body AnalysisRequest, endpoint string) (any, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &BackendError{Cause: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &BackendError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &BackendError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, readErr := io.ReadAll(resp.Body)
		msg := string(text)
		if readErr != nil {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &BackendError{StatusCode: resp.StatusCode, Body: msg}
	}

	var data any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &BackendError{StatusCode: resp.StatusCode, Cause: fmt.Errorf("decode response: %w", err)}
	}
	if data == nil {
		return nil, &BackendError{StatusCode: resp.StatusCode, Cause: ErrEmptyReply}
	}
	return data, nil
}

// ResultText picks the displayable text out of a backend reply: result,
// then optimizedCode, then the reply itself as JSON.
func ResultText(data any) string {
	if m, ok := data.(map[string]any); ok {
		for _, key := range []string{"result", "optimizedCode"} {
			switch v := m[key].(type) {
			case string:
				if v != "" {
					return v
				}
			case nil:
			default:
				if b, err := json.Marshal(v); err == nil {
					return string(b)
				}
			}
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprint(data)
	}
	return string(b)
}
