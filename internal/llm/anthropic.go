package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/Veraticus/trash-scanner/internal/model"
)

const anthropicBaseURL = "https://api.anthropic.com/v1"

// anthropicClient implements the Client interface for Anthropic API.
type anthropicClient struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	model      string
	cfg        Config
}

// newAnthropicClient creates a new Anthropic API client.
func newAnthropicClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	c := &anthropicClient{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		headers: map[string]string{
			"x-api-key":         cfg.APIKey,
			"anthropic-version": "2023-06-01",
		},
		httpClient: newHTTPClient(cfg.timeout()),
	}
	if c.baseURL == "" {
		c.baseURL = anthropicBaseURL
	}
	if c.model == "" {
		c.model = "claude-3-5-sonnet-20241022"
	}
	return c, nil
}

// anthropicResponse represents the Anthropic API response structure.
type anthropicResponse struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Role         string `json:"role"`
	Model        string `json:"model"`
	StopReason   string `json:"stop_reason"`
	StopSequence string `json:"stop_sequence"`
	Content      []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Generate sends a messages request.
func (c *anthropicClient) Generate(ctx context.Context, req Request) (string, error) {
	system := req.System
	if req.JSON {
		system = strings.TrimSpace(system + "\n\nRespond only with valid JSON, starting directly with [ or {.")
	}

	messages := make([]map[string]any, 0, len(req.Messages))
	for _, m := range req.Messages {
		// The conversation has to open with a user turn, so greetings the
		// app showed before the first question are dropped.
		if len(messages) == 0 && m.Role == model.RoleModel {
			continue
		}
		role := "user"
		if m.Role == model.RoleModel {
			role = "assistant"
		}
		var content []map[string]any
		if len(m.Image) > 0 {
			content = append(content, map[string]any{
				"type": "image",
				"source": map[string]string{
					"type":       "base64",
					"media_type": "image/jpeg",
					"data":       base64.StdEncoding.EncodeToString(m.Image),
				},
			})
		}
		content = append(content, map[string]any{"type": "text", "text": m.Text})
		messages = append(messages, map[string]any{"role": role, "content": content})
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("no user message to send")
	}

	requestBody := map[string]any{
		"model":       c.model,
		"max_tokens":  c.cfg.maxTokens(4096),
		"temperature": c.cfg.temperature(req.Temperature),
		"messages":    messages,
	}
	if system != "" {
		requestBody["system"] = system
	}

	var response anthropicResponse
	if err := postJSON(ctx, c.httpClient, "Anthropic", c.baseURL+"/messages", c.headers, requestBody, &response); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no content in response")
	}
	return sb.String(), nil
}

// GenerateImage is not offered by the Anthropic API.
func (c *anthropicClient) GenerateImage(context.Context, string) (string, error) {
	return "", ErrImageGenerationUnsupported
}
