package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// geminiClient implements the Client interface for the Gemini API.
type geminiClient struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	model      string
	imageModel string
	cfg        Config
}

// newGeminiClient creates a new Gemini API client.
func newGeminiClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	c := &geminiClient{
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
		headers:    map[string]string{"x-goog-api-key": cfg.APIKey},
		httpClient: newHTTPClient(cfg.timeout()),
	}
	if c.baseURL == "" {
		c.baseURL = geminiBaseURL
	}
	if c.model == "" {
		c.model = "gemini-2.5-flash"
	}
	if c.imageModel == "" {
		c.imageModel = "imagen-4.0-generate-001"
	}
	return c, nil
}

type geminiPart struct {
	InlineData *geminiBlob `json:"inlineData,omitempty"`
	Text       string      `json:"text,omitempty"`
}

type geminiBlob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate sends a generateContent request.
func (c *geminiClient) Generate(ctx context.Context, req Request) (string, error) {
	contents := make([]geminiContent, 0, len(req.Messages))
	for _, m := range req.Messages {
		var parts []geminiPart
		if len(m.Image) > 0 {
			parts = append(parts, geminiPart{InlineData: &geminiBlob{
				MimeType: "image/jpeg",
				Data:     base64.StdEncoding.EncodeToString(m.Image),
			}})
		}
		parts = append(parts, geminiPart{Text: m.Text})
		contents = append(contents, geminiContent{Role: string(m.Role), Parts: parts})
	}

	genConfig := map[string]any{
		"temperature":     c.cfg.temperature(req.Temperature),
		"maxOutputTokens": c.cfg.maxTokens(8192),
	}
	if req.JSON {
		genConfig["responseMimeType"] = "application/json"
		if req.Schema != nil {
			genConfig["responseSchema"] = req.Schema
		}
	}

	body := map[string]any{
		"contents":         contents,
		"generationConfig": genConfig,
	}
	if req.System != "" {
		body["systemInstruction"] = geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	var resp geminiResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	if err := postJSON(ctx, c.httpClient, "Gemini", url, c.headers, body, &resp); err != nil {
		return "", err
	}

	if resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("request blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

type imagenResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

// GenerateImage calls the Imagen predict endpoint for one square PNG.
func (c *geminiClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"instances": []map[string]any{{"prompt": prompt}},
		"parameters": map[string]any{
			"sampleCount":   1,
			"aspectRatio":   "1:1",
			"outputOptions": map[string]any{"mimeType": "image/png"},
		},
	}

	var resp imagenResponse
	url := fmt.Sprintf("%s/models/%s:predict", c.baseURL, c.imageModel)
	if err := postJSON(ctx, c.httpClient, "Gemini", url, c.headers, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		return "", fmt.Errorf("no image returned")
	}

	mime := resp.Predictions[0].MimeType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + resp.Predictions[0].BytesBase64Encoded, nil
}
