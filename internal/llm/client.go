package llm

import (
	"context"
	"errors"
	"time"

	"github.com/Veraticus/trash-scanner/internal/model"
)

// Client defines the interface for LLM providers.
type Client interface {
	// Generate returns the text of a single completion.
	Generate(ctx context.Context, req Request) (string, error)
	// GenerateImage returns a data: URL for a picture matching prompt.
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// ErrImageGenerationUnsupported is returned by providers without an image endpoint.
var ErrImageGenerationUnsupported = errors.New("provider does not support image generation")

// Request is a provider neutral completion request.
type Request struct {
	// Schema is an OpenAPI style response schema. Providers that cannot
	// enforce it fall back to prompt instructions.
	Schema      map[string]any
	System      string
	Messages    []Message
	Temperature float64
	JSON        bool
}

// Message is one conversation turn. Image, when set, is JPEG data sent
// before the text.
type Message struct {
	Role  model.ChatRole
	Text  string
	Image []byte
}

// Config configures a provider client and the service around it.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	ImageModel  string
	BaseURL     string
	CacheTTL    time.Duration
	Timeout     time.Duration
	RateLimit   int
	MaxTokens   int
	Temperature float64
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return c.Timeout
}

func (c Config) maxTokens(def int) int {
	if c.MaxTokens <= 0 {
		return def
	}
	return c.MaxTokens
}

// temperature returns the configured override, or the per call value.
func (c Config) temperature(perCall float64) float64 {
	if c.Temperature > 0 {
		return c.Temperature
	}
	return perCall
}
