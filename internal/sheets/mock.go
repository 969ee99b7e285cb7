package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/trash-scanner/internal/model"
)

// MockWriter is a mock implementation of FeedbackWriter for testing.
type MockWriter struct {
	WriteFunc      func(ctx context.Context, feedback []model.Feedback) error
	LastFeedback   []model.Feedback
	WriteCalls     []WriteCall
	WriteCallCount int
	mu             sync.Mutex
}

// WriteCall represents a single call to Write.
type WriteCall struct {
	Error    error
	Feedback []model.Feedback
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{
		WriteCalls: make([]WriteCall, 0),
	}
}

// Write implements the FeedbackWriter interface.
func (m *MockWriter) Write(ctx context.Context, feedback []model.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount++
	m.LastFeedback = feedback

	var err error
	if m.WriteFunc != nil {
		err = m.WriteFunc(ctx, feedback)
	}

	m.WriteCalls = append(m.WriteCalls, WriteCall{
		Feedback: feedback,
		Error:    err,
	})

	return err
}

// Reset clears all recorded calls.
func (m *MockWriter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount = 0
	m.WriteCalls = make([]WriteCall, 0)
	m.LastFeedback = nil
}

// GetWriteCalls returns a copy of all write calls.
func (m *MockWriter) GetWriteCalls() []WriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]WriteCall, len(m.WriteCalls))
	copy(calls, m.WriteCalls)
	return calls
}

// SetWriteError configures the mock to return err from Write.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteFunc = func(_ context.Context, _ []model.Feedback) error {
		return err
	}
}

var (
	_ FeedbackWriter = (*MockWriter)(nil)
	_ FeedbackWriter = (*Writer)(nil)
)
