// Package ollama implements insights.Generator against an Ollama server's
// /api/generate endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/listd/listd/pkg/api"
	"github.com/listd/listd/pkg/debug"
	"github.com/listd/listd/pkg/observability"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "llama3.2:3b"

// Config holds the Ollama backend connection settings.
type Config struct {
	// BaseURL is the backend root, e.g. "http://localhost:11434".
	BaseURL string

	// Model is the model name passed on every request.
	Model string

	// Timeout bounds each generation call. Defaults to 60s.
	Timeout time.Duration
}

// Client talks to a single Ollama backend.
type Client struct {
	cfg    Config
	client *http.Client
}

// New creates a Client with the given configuration.
// Returns an error if the configuration is invalid.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ollama: BaseURL is required")
	}

	// Normalize: remove trailing slash from base URL.
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends a non-streaming generation request and returns the
// model's text output with surrounding whitespace trimmed.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := c.generate(ctx, prompt)
	observability.InsightLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.InsightRequestsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	observability.InsightRequestsTotal.WithLabelValues("ok").Inc()
	return out, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", api.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	url := c.cfg.BaseURL + "/api/generate"
	debug.Log("insights", "generate request", "url", url, "model", c.cfg.Model, "prompt_len", len(prompt))
	debug.Trace("insights", "generate prompt", "prompt", prompt)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return "", mapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return "", api.NewModelError(fmt.Sprintf("AI service error: %s", strings.TrimSpace(string(msg))))
	}

	var genResp generateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&genResp); err != nil {
		return "", api.NewModelError(fmt.Sprintf("failed to parse backend response: %s", err.Error()))
	}

	out := strings.TrimSpace(genResp.Response)
	debug.Log("insights", "generate response", "response_len", len(out))
	debug.Trace("insights", "generate output", "response", debug.Truncate(out, 2048))
	return out, nil
}

func mapNetworkError(err error) *api.APIError {
	if errors.Is(err, context.DeadlineExceeded) {
		return api.NewModelError("AI backend timed out")
	}
	if errors.Is(err, context.Canceled) {
		return api.NewModelError("AI request canceled")
	}
	return api.NewModelError(fmt.Sprintf("AI backend unreachable: %s", err.Error()))
}
