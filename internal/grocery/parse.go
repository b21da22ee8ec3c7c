package grocery

import (
	"strings"

	"github.com/google/uuid"

	"github.com/dukerupert/sharearecipe/internal/model"
)

func isDelimiter(r rune) bool {
	return r == '\n' || r == ',' || r == ';'
}

// Parse splits a free-text ingredient block on newlines, commas and
// semicolons. Fragments are trimmed and empty ones dropped; order and
// duplicates are kept.
func Parse(text string) []string {
	fields := strings.FieldsFunc(text, isDelimiter)
	items := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		items = append(items, f)
	}
	return items
}

// BuildItems parses text and categorizes every fragment into a fresh,
// unchecked grocery item.
func BuildItems(text string) []model.GroceryItem {
	names := Parse(text)
	items := make([]model.GroceryItem, 0, len(names))
	for _, name := range names {
		items = append(items, model.GroceryItem{
			ID:       uuid.NewString(),
			Name:     name,
			Category: Categorize(name),
		})
	}
	return items
}
