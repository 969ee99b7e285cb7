package i18n

import (
	"golang.org/x/text/language"

	"github.com/Veraticus/trash-scanner/internal/model"
)

var matcher = language.NewMatcher([]language.Tag{
	language.Vietnamese,
	language.English,
})

// Match picks the supported language that best fits an Accept-Language
// header, falling back to the default language.
func Match(acceptLanguage string) model.Language {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return model.DefaultLanguage
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return model.DefaultLanguage
	}
	return model.Languages()[idx]
}
