// Package i18n loads per-language dictionaries and resolves dotted keys.
package i18n

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Veraticus/trash-scanner/internal/model"
)

// Vars are substituted into {{name}} placeholders.
type Vars map[string]any

// State is a snapshot of what the localizer currently holds.
type State struct {
	Language model.Language
	Loaded   bool
}

// Localizer resolves translation keys against one loaded dictionary.
// It is safe for concurrent use; a nil dictionary means nothing is loaded.
type Localizer struct {
	loader Loader
	logger *slog.Logger
	dict   map[string]any
	lang   model.Language
	mu     sync.RWMutex
	loaded bool
}

// Option configures a Localizer.
type Option func(*Localizer)

// WithLogger sets the logger used for load failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Localizer) {
		l.logger = logger
	}
}

// New creates a localizer with nothing loaded.
func New(loader Loader, opts ...Option) *Localizer {
	l := &Localizer{
		loader: loader,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the dictionary for lang. Loading the language that is already
// loaded is a no-op. While the fetch runs T echoes keys; on failure the
// localizer stays unloaded and the error is returned.
func (l *Localizer) Load(ctx context.Context, lang model.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("unsupported language %q", lang)
	}

	l.mu.Lock()
	if l.loaded && l.lang == lang {
		l.mu.Unlock()
		return nil
	}
	l.loaded = false
	l.lang = lang
	l.mu.Unlock()

	dict, err := l.loader.Load(ctx, lang)
	if err != nil {
		l.logger.Error("failed to load translations", "language", lang, "error", err)
		return fmt.Errorf("load %s translations: %w", lang, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// A newer Load for another language wins.
	if l.lang != lang {
		return nil
	}
	l.dict = dict
	l.loaded = true
	l.logger.Debug("translations loaded", "language", lang)
	return nil
}

// State reports the loaded language.
func (l *Localizer) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return State{Language: l.lang, Loaded: l.loaded}
}

// Language returns the language most recently requested.
func (l *Localizer) Language() model.Language {
	return l.State().Language
}

// T resolves key and substitutes vars. It returns key itself when nothing is
// loaded or the key does not resolve.
func (l *Localizer) T(key string, vars ...Vars) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.loaded {
		return key
	}

	var node any = l.dict
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return key
		}
		node, ok = m[part]
		if !ok {
			return key
		}
	}

	var out string
	switch v := node.(type) {
	case string:
		out = v
	case map[string]any, []any:
		return key
	default:
		out = fmt.Sprint(v)
	}

	for _, set := range vars {
		for name, value := range set {
			out = strings.ReplaceAll(out, "{{"+name+"}}", fmt.Sprint(value))
		}
	}
	return out
}

// List splits a comma separated translation such as search.suggestions.
func (l *Localizer) List(key string) []string {
	v := l.T(key)
	if v == key {
		return nil
	}
	parts := strings.Split(v, ", ")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
