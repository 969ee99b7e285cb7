package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/trash-scanner/internal/model"
)

//go:embed locales/*.json
var localeFS embed.FS

// Loader fetches the raw dictionary for one language.
type Loader interface {
	Load(ctx context.Context, lang model.Language) (map[string]any, error)
}

// EmbeddedLoader serves the locale files compiled into the binary.
type EmbeddedLoader struct{}

// Raw returns the locale file bytes for lang.
func (EmbeddedLoader) Raw(lang model.Language) ([]byte, error) {
	if !lang.Valid() {
		return nil, fmt.Errorf("unsupported language %q", lang)
	}
	return localeFS.ReadFile("locales/" + string(lang) + ".json")
}

// Load implements Loader.
func (e EmbeddedLoader) Load(_ context.Context, lang model.Language) (map[string]any, error) {
	data, err := e.Raw(lang)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// HTTPLoader fetches {BaseURL}/{lang}.json.
type HTTPLoader struct {
	Client  *http.Client
	BaseURL string
}

// NewHTTPLoader creates a loader for a remote locale directory.
func NewHTTPLoader(baseURL string) *HTTPLoader {
	return &HTTPLoader{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Load implements Loader.
func (h *HTTPLoader) Load(ctx context.Context, lang model.Language) (map[string]any, error) {
	url := fmt.Sprintf("%s/%s.json", h.BaseURL, lang)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("could not load %s.json: status %d", lang, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	return decode(data)
}

func decode(data []byte) (map[string]any, error) {
	var dict map[string]any
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("invalid translation file: %w", err)
	}
	return dict, nil
}
