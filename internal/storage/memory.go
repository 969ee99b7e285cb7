package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/trash-scanner/internal/common"
	"github.com/Veraticus/trash-scanner/internal/model"
)

// MemoryStorage implements Store in process memory. Values are kept encoded
// so decoding behaves like the persistent backends.
type MemoryStorage struct {
	values   map[string][]byte
	feedback [][]byte
	mu       sync.Mutex
}

// NewMemoryStorage creates an empty store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

// Put stores raw bytes under key, bypassing encoding.
func (s *MemoryStorage) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = data
}

func (s *MemoryStorage) get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, common.ErrNotFound)
	}
	return data, nil
}

// LoadProfile returns the stored profile.
func (s *MemoryStorage) LoadProfile(_ context.Context) (*model.UserProfile, error) {
	data, err := s.get(KeyProfile)
	if err != nil {
		return nil, err
	}
	return decodeProfile(data)
}

// SaveProfile replaces the stored profile.
func (s *MemoryStorage) SaveProfile(_ context.Context, p model.UserProfile) error {
	data, err := encodeProfile(p)
	if err != nil {
		return err
	}
	s.Put(KeyProfile, data)
	return nil
}

// LoadSettings returns the stored settings.
func (s *MemoryStorage) LoadSettings(_ context.Context) (*model.AppSettings, error) {
	data, err := s.get(KeySettings)
	if err != nil {
		return nil, err
	}
	return decodeSettings(data)
}

// SaveSettings replaces the stored settings.
func (s *MemoryStorage) SaveSettings(_ context.Context, settings model.AppSettings) error {
	data, err := encodeSettings(settings)
	if err != nil {
		return err
	}
	s.Put(KeySettings, data)
	return nil
}

// AppendFeedback stores a report.
func (s *MemoryStorage) AppendFeedback(_ context.Context, f model.Feedback) error {
	data, err := encodeFeedback(f)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.feedback = append(s.feedback, data)
	s.mu.Unlock()
	return nil
}

// ListFeedback returns every report, oldest first.
func (s *MemoryStorage) ListFeedback(_ context.Context) ([]model.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Feedback, 0, len(s.feedback))
	for _, data := range s.feedback {
		f, err := decodeFeedback(data)
		if err != nil {
			slog.Warn("skipping unreadable feedback", "error", err)
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// Reset clears everything.
func (s *MemoryStorage) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string][]byte)
	s.feedback = nil
	return nil
}

// Close is a no-op.
func (s *MemoryStorage) Close() error { return nil }
