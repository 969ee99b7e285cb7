// Package model defines the core domain models used throughout the application.
package model

import "strings"

// Language is a supported UI language code.
type Language string

// Supported languages.
const (
	LanguageVietnamese Language = "vi"
	LanguageEnglish    Language = "en"
)

// DefaultLanguage is used until the user picks one.
const DefaultLanguage = LanguageVietnamese

// Languages lists every supported language in display order.
func Languages() []Language {
	return []Language{LanguageVietnamese, LanguageEnglish}
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == LanguageVietnamese || l == LanguageEnglish
}

// ParseLanguage normalizes a language code such as "EN" or "vi-VN".
func ParseLanguage(s string) (Language, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	l := Language(s)
	return l, l.Valid()
}

// DisplayName is the language's name written in that language.
func (l Language) DisplayName() string {
	switch l {
	case LanguageVietnamese:
		return "Tiếng Việt"
	case LanguageEnglish:
		return "English"
	default:
		return string(l)
	}
}
