package common

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		err     error
		name    string
		wantMsg string
		wantKey string
	}{
		{
			name:    "user message with cause",
			err:     NewUserError("Could not analyze", base),
			wantMsg: "Could not analyze: boom",
			wantKey: "fallback",
		},
		{
			name:    "localized error",
			err:     NewLocalizedError("error.analysis", base),
			wantMsg: "error.analysis: boom",
			wantKey: "error.analysis",
		},
		{
			name:    "wrapped localized error",
			err:     fmt.Errorf("scan: %w", NewLocalizedError("error.search", nil)),
			wantMsg: "scan: error.search",
			wantKey: "error.search",
		},
		{
			name:    "plain error",
			err:     base,
			wantMsg: "boom",
			wantKey: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.Equal(t, tt.wantKey, UserErrorKey(tt.err, "fallback"))
		})
	}

	assert.ErrorIs(t, NewLocalizedError("error.analysis", base), base)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	_, err = ParseLevel("verbose")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	require.NoError(t, SetupLogger(slog.LevelInfo, "json"))
	require.NoError(t, SetupLogger(slog.LevelWarn, "console"))
	require.ErrorIs(t, SetupLogger(slog.LevelInfo, "xml"), ErrInvalidConfig)
}
