package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"finvoapi/internal/config"
	"finvoapi/internal/document"
	"finvoapi/internal/prompt"
)

// Client implements the Invoker interface using Google Gemini.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	log    *slog.Logger
}

// NewClient creates a Gemini vision client.
func NewClient(ctx context.Context, cfg config.ModelConfig, log *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	name := cfg.Name
	if name == "" {
		name = "gemini-2.0-flash"
	}
	if log == nil {
		log = slog.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	m := client.GenerativeModel(name)
	m.SetTemperature(float32(cfg.Temperature))
	m.SetMaxOutputTokens(int32(cfg.MaxOutputTokens))
	m.ResponseMIMEType = "application/json"

	return &Client{client: client, model: m, log: log}, nil
}

// Invoke sends the page images plus instructions and schema, returning
// the raw model output text.
func (c *Client) Invoke(ctx context.Context, payload *document.Payload, instructions string, schema map[string]any) (string, error) {
	start := time.Now()

	parts := []genai.Part{
		genai.Text(instructions + "\n\nJSON Schema:\n" + prompt.SchemaJSON(schema)),
	}
	for _, page := range payload.Pages {
		parts = append(parts, genai.ImageData("png", page.PNG))
	}

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	c.log.Info("gemini.invoke.ok",
		"pages", payload.PageCount(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return strings.TrimSpace(b.String()), nil
}

// Close releases the underlying client connection.
func (c *Client) Close() error {
	return c.client.Close()
}
