package media

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"time"
)

// HTTPSource fetches a fresh snapshot from an IP camera URL on every grab.
type HTTPSource struct {
	client *http.Client
	url    string
}

// OpenHTTP checks the snapshot URL answers and returns a source for it.
func OpenHTTP(ctx context.Context, url string, client *http.Client) (*HTTPSource, error) {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	s := &HTTPSource{client: client, url: url}
	if _, err := s.Grab(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Grab implements Source.
func (s *HTTPSource) Grab(ctx context.Context) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot request returned status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return img, nil
}

// Close implements Source.
func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
