package fetcher

import (
	"strings"
	"unicode"

	"github.com/salvage-search/salvage-tools/internal/catalog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeKey strips every non-word rune from name and lower-cases the
// rest. Word runes are letters, numbers and underscore.
//
//	NormalizeKey("Ford F-150") == "fordf150"
func NormalizeKey(name string) string {
	stripped := strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return -1
	}, name)
	return cases.Lower(language.Und).String(stripped)
}

// BuildModels keys records by normalized name. Later records overwrite
// earlier ones that normalize to the same key.
func BuildModels(records []ModelRecord) map[string]catalog.Model {
	models := make(map[string]catalog.Model, len(records))
	for _, rec := range records {
		var name string
		if rec.Name != nil {
			name = *rec.Name
		}
		models[NormalizeKey(name)] = catalog.Model{
			DisplayName: strings.TrimSpace(name),
			ID:          rec.ID,
		}
	}
	return models
}
