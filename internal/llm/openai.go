package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/Veraticus/trash-scanner/internal/model"
)

const openAIBaseURL = "https://api.openai.com/v1"

// openAIClient implements the Client interface for OpenAI API.
type openAIClient struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	model      string
	imageModel string
	cfg        Config
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	c := &openAIClient{
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
		headers:    map[string]string{"Authorization": "Bearer " + cfg.APIKey},
		httpClient: newHTTPClient(cfg.timeout()),
	}
	if c.baseURL == "" {
		c.baseURL = openAIBaseURL
	}
	if c.model == "" {
		c.model = "gpt-4o-mini"
	}
	if c.imageModel == "" {
		c.imageModel = "gpt-image-1"
	}
	return c, nil
}

// openAIResponse represents the OpenAI API response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Created int64 `json:"created"`
}

// Generate sends a chat completion request.
func (c *openAIClient) Generate(ctx context.Context, req Request) (string, error) {
	system := req.System
	if req.JSON {
		system = strings.TrimSpace(system + "\n\nYou MUST respond with ONLY valid JSON. Do not include any explanatory text or markdown formatting.")
	}

	messages := make([]map[string]any, 0, len(req.Messages)+1)
	if system != "" {
		messages = append(messages, map[string]any{"role": "system", "content": system})
	}
	for _, m := range req.Messages {
		role := "user"
		if m.Role == model.RoleModel {
			role = "assistant"
		}
		if len(m.Image) == 0 {
			messages = append(messages, map[string]any{"role": role, "content": m.Text})
			continue
		}
		messages = append(messages, map[string]any{
			"role": role,
			"content": []map[string]any{
				{
					"type": "image_url",
					"image_url": map[string]string{
						"url": "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(m.Image),
					},
				},
				{"type": "text", "text": m.Text},
			},
		})
	}

	requestBody := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": c.cfg.temperature(req.Temperature),
		"max_tokens":  c.cfg.maxTokens(4096),
	}

	var response openAIResponse
	if err := postJSON(ctx, c.httpClient, "OpenAI", c.baseURL+"/chat/completions", c.headers, requestBody, &response); err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return response.Choices[0].Message.Content, nil
}

// GenerateImage calls the images endpoint for one square PNG.
func (c *openAIClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]any{
		"model":  c.imageModel,
		"prompt": prompt,
		"n":      1,
		"size":   "1024x1024",
	}

	var response struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
			URL     string `json:"url"`
		} `json:"data"`
	}
	if err := postJSON(ctx, c.httpClient, "OpenAI", c.baseURL+"/images/generations", c.headers, requestBody, &response); err != nil {
		return "", err
	}

	if len(response.Data) == 0 {
		return "", fmt.Errorf("no image returned")
	}
	if response.Data[0].B64JSON != "" {
		return "data:image/png;base64," + response.Data[0].B64JSON, nil
	}
	if response.Data[0].URL != "" {
		return response.Data[0].URL, nil
	}
	return "", fmt.Errorf("no image returned")
}
