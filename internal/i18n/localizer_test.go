package i18n

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/trash-scanner/internal/model"
)

type stubLoader struct {
	err   error
	dicts map[model.Language]map[string]any
	calls int
}

func (s *stubLoader) Load(_ context.Context, lang model.Language) (map[string]any, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.dicts[lang], nil
}

func newStub() *stubLoader {
	return &stubLoader{dicts: map[model.Language]map[string]any{
		model.LanguageEnglish: {
			"chat": map[string]any{
				"greeting": "Hi! Ask me about {{item}}.",
			},
			"game": map[string]any{
				"result": map[string]any{
					"score": "{{score}}/{{total}} ({{score}} correct)",
				},
			},
			"count": 3.0,
		},
		model.LanguageVietnamese: {
			"chat": map[string]any{
				"greeting": "Xin chào {{item}}",
			},
		},
	}}
}

func TestLocalizer_T(t *testing.T) {
	ctx := context.Background()
	loc := New(newStub())

	assert.Equal(t, "chat.greeting", loc.T("chat.greeting"), "unloaded localizer echoes keys")

	require.NoError(t, loc.Load(ctx, model.LanguageEnglish))

	tests := []struct {
		vars Vars
		name string
		key  string
		want string
	}{
		{name: "nested with var", key: "chat.greeting", vars: Vars{"item": "glass"}, want: "Hi! Ask me about glass."},
		{name: "repeated var", key: "game.result.score", vars: Vars{"score": 7, "total": 10}, want: "7/10 (7 correct)"},
		{name: "missing var left intact", key: "chat.greeting", want: "Hi! Ask me about {{item}}."},
		{name: "missing key", key: "chat.nope", want: "chat.nope"},
		{name: "path through leaf", key: "chat.greeting.deeper", want: "chat.greeting.deeper"},
		{name: "branch node", key: "game.result", want: "game.result"},
		{name: "non string leaf", key: "count", want: "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.vars == nil {
				assert.Equal(t, tt.want, loc.T(tt.key))
				return
			}
			assert.Equal(t, tt.want, loc.T(tt.key, tt.vars))
		})
	}
}

func TestLocalizer_LoadSwitchesLanguage(t *testing.T) {
	ctx := context.Background()
	stub := newStub()
	loc := New(stub)

	require.NoError(t, loc.Load(ctx, model.LanguageEnglish))
	require.NoError(t, loc.Load(ctx, model.LanguageEnglish))
	assert.Equal(t, 1, stub.calls, "reloading the same language is a no-op")

	require.NoError(t, loc.Load(ctx, model.LanguageVietnamese))
	assert.Equal(t, State{Language: model.LanguageVietnamese, Loaded: true}, loc.State())
	assert.Equal(t, "Xin chào kính", loc.T("chat.greeting", Vars{"item": "kính"}))
}

func TestLocalizer_LoadFailure(t *testing.T) {
	loc := New(&stubLoader{err: errors.New("offline")})

	err := loc.Load(context.Background(), model.LanguageEnglish)
	require.Error(t, err)
	assert.False(t, loc.State().Loaded)
	assert.Equal(t, "chat.greeting", loc.T("chat.greeting"))

	assert.Error(t, loc.Load(context.Background(), model.Language("fr")))
}

func TestEmbeddedLocales_HaveSameKeys(t *testing.T) {
	ctx := context.Background()
	en, err := EmbeddedLoader{}.Load(ctx, model.LanguageEnglish)
	require.NoError(t, err)
	vi, err := EmbeddedLoader{}.Load(ctx, model.LanguageVietnamese)
	require.NoError(t, err)

	assert.ElementsMatch(t, flatten("", en), flatten("", vi))
}

func TestEmbeddedLocales_RequiredKeys(t *testing.T) {
	loc := New(EmbeddedLoader{})
	require.NoError(t, loc.Load(context.Background(), model.LanguageEnglish))

	keys := []string{
		"setup.error.name", "setup.error.device", "setup.error.info",
		"setup.error.dobFormat", "setup.error.dobInvalid", "setup.error.dobPast", "setup.error.dobFuture",
		"camera.error.access", "error.analysis", "error.search", "error.quiz",
		"chat.error", "chat.greeting", "feedback.success",
		"game.result.feedback1", "game.result.feedback2", "game.result.feedback3",
		"game.result.timeUpMessage", "game.result.thanks",
	}
	for _, k := range keys {
		assert.NotEqual(t, k, loc.T(k), "missing %s", k)
	}
	assert.Len(t, loc.List("search.suggestions"), 5)
}

func TestHTTPLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/locales/en.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"common":{"next":"Onward"}}`))
	}))
	defer srv.Close()

	loc := New(NewHTTPLoader(srv.URL + "/locales/"))
	require.NoError(t, loc.Load(context.Background(), model.LanguageEnglish))
	assert.Equal(t, "Onward", loc.T("common.next"))

	err := New(NewHTTPLoader(srv.URL+"/locales")).Load(context.Background(), model.LanguageVietnamese)
	assert.Error(t, err)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		header string
		want   model.Language
	}{
		{"en-US,en;q=0.9", model.LanguageEnglish},
		{"vi-VN,vi;q=0.9,en;q=0.5", model.LanguageVietnamese},
		{"fr-FR", model.LanguageVietnamese},
		{"", model.LanguageVietnamese},
		{"de;q=0.9,en-GB;q=0.8", model.LanguageEnglish},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.header))
		})
	}
}

func flatten(prefix string, m map[string]any) []string {
	var keys []string
	for k, v := range m {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			keys = append(keys, flatten(full, child)...)
			continue
		}
		keys = append(keys, full)
	}
	return keys
}
