package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"finvoapi/internal/config"
	"finvoapi/internal/document"
	"finvoapi/internal/llm"
	"finvoapi/internal/prompt"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client calls the OpenAI chat/completions endpoint with vision inputs.
type Client struct {
	cfg        config.ModelConfig
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient builds an OpenAI vision client. The HTTP transport is
// otel-instrumented so model calls show up as spans.
func NewClient(cfg config.ModelConfig, log *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Name == "" {
		cfg.Name = "gpt-4o"
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   120 * time.Second, // outer bound; per-call deadlines come from ctx
		},
		log: log,
	}, nil
}

// Invoke sends the page images plus instructions and schema, returning
// the raw model output text.
func (c *Client) Invoke(ctx context.Context, payload *document.Payload, instructions string, schema map[string]any) (string, error) {
	start := time.Now()

	content := []map[string]any{
		{"type": "text", "text": "Extract the financial data from the attached document pages.\n\nJSON Schema:\n" + prompt.SchemaJSON(schema)},
	}
	for _, page := range payload.Pages {
		content = append(content, map[string]any{
			"type": "image_url",
			"image_url": map[string]any{
				"url": "data:image/png;base64," + base64.StdEncoding.EncodeToString(page.PNG),
			},
		})
	}

	body := map[string]any{
		"model":           c.cfg.Name,
		"temperature":     c.cfg.Temperature,
		"max_tokens":      c.cfg.MaxOutputTokens,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": instructions},
			{"role": "user", "content": content},
		},
	}

	raw, err := c.post(ctx, strings.TrimRight(c.cfg.BaseURL, "/")+"/chat/completions", body)
	if err != nil {
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}

	c.log.Info("openai.invoke.ok",
		"model", c.cfg.Name,
		"pages", payload.PageCount(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &llm.StatusError{Code: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
