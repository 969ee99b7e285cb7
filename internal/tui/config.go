package tui

import (
	"log/slog"

	"github.com/Veraticus/trash-scanner/internal/media"
)

// Config holds TUI configuration.
type Config struct {
	Opener media.Opener
	Logger *slog.Logger
	// Bell is rung on auto capture when sound effects are on.
	Bell   func()
	Width  int
	Height int
	// Setup opens the wizard even when a profile exists.
	Setup bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Width:  80,
		Height: 24,
		Logger: slog.Default(),
	}
}

// WithOpener sets where camera frames come from. Without one the scanner
// reports the camera as unavailable.
func WithOpener(o media.Opener) Option {
	return func(c *Config) {
		c.Opener = o
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithBell sets the shutter sound.
func WithBell(fn func()) Option {
	return func(c *Config) {
		c.Bell = fn
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithSetup starts on the onboarding wizard.
func WithSetup() Option {
	return func(c *Config) {
		c.Setup = true
	}
}
