package model

import (
	"fmt"
	"time"
)

// Theme is a named colour scheme.
type Theme string

// Themes.
const (
	ThemeDefault Theme = "default"
	ThemeOcean   Theme = "ocean"
	ThemeSunset  Theme = "sunset"
	ThemeDark    Theme = "dark"
)

// Themes lists every theme in display order.
func Themes() []Theme {
	return []Theme{ThemeDefault, ThemeOcean, ThemeSunset, ThemeDark}
}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeDefault, ThemeOcean, ThemeSunset, ThemeDark:
		return true
	}
	return false
}

// Auto-scan interval bounds in milliseconds.
const (
	MinAutoScanInterval     = 1000
	MaxAutoScanInterval     = 5000
	DefaultAutoScanInterval = 2000
)

// AppSettings are user preferences. AutoScanInterval is in milliseconds.
type AppSettings struct {
	Theme            Theme    `json:"theme"`
	Language         Language `json:"language"`
	ReminderTime     string   `json:"reminderTime"`
	AutoScanInterval int      `json:"autoScanInterval"`
	ExpertMode       bool     `json:"expertMode"`
	EnableReminder   bool     `json:"enableReminder"`
	SoundEffects     bool     `json:"soundEffects"`
}

// DefaultSettings returns the settings used on first run.
func DefaultSettings() AppSettings {
	return AppSettings{
		Theme:            ThemeDefault,
		Language:         DefaultLanguage,
		AutoScanInterval: DefaultAutoScanInterval,
		ReminderTime:     "09:00",
		SoundEffects:     true,
	}
}

// ScanInterval returns the auto-scan interval as a duration.
func (s AppSettings) ScanInterval() time.Duration {
	return time.Duration(s.AutoScanInterval) * time.Millisecond
}

// ClampInterval forces ms into the supported auto-scan range.
func ClampInterval(ms int) int {
	if ms < MinAutoScanInterval {
		return MinAutoScanInterval
	}
	if ms > MaxAutoScanInterval {
		return MaxAutoScanInterval
	}
	return ms
}

// Validate checks every settings field.
func (s AppSettings) Validate() error {
	if !s.Theme.Valid() {
		return fmt.Errorf("unknown theme %q", s.Theme)
	}
	if !s.Language.Valid() {
		return fmt.Errorf("unsupported language %q", s.Language)
	}
	if s.AutoScanInterval < MinAutoScanInterval || s.AutoScanInterval > MaxAutoScanInterval {
		return fmt.Errorf("auto scan interval %dms outside %d-%dms", s.AutoScanInterval, MinAutoScanInterval, MaxAutoScanInterval)
	}
	if _, err := time.Parse("15:04", s.ReminderTime); err != nil || len(s.ReminderTime) != 5 {
		return fmt.Errorf("reminder time %q must be HH:MM", s.ReminderTime)
	}
	return nil
}
