// Package category assigns derived, non-exclusive category tags to rule
// text by case-insensitive keyword matching. Tags are computed on demand
// and never persisted; the keyword table is fixed.
package category

import (
	"sort"
	"strings"
)

// keywordTable maps each category to the keywords that trigger it.
// Matching is case-insensitive substring matching against the rule text.
var keywordTable = map[string][]string{
	"financial":      {"payment", "budget", "expenditure", "fund", "account"},
	"procurement":    {"purchase", "tender", "bid", "contract", "vendor"},
	"administrative": {"approval", "authority", "delegation", "procedure"},
	"compliance":     {"compliance", "violation", "penalty", "audit"},
}

// Names returns the known category names in sorted order.
func Names() []string {
	names := make([]string, 0, len(keywordTable))
	for name := range keywordTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known reports whether name is a recognized category.
func Known(name string) bool {
	_, ok := keywordTable[name]
	return ok
}

// Categorize returns every category whose keyword set matches the text.
// Categories are not exclusive: text mentioning both "payment" and "audit"
// belongs to both financial and compliance. The result is sorted for
// stable output.
func Categorize(text string) []string {
	lower := strings.ToLower(text)
	var categories []string
	for name, words := range keywordTable {
		for _, word := range words {
			if strings.Contains(lower, word) {
				categories = append(categories, name)
				break
			}
		}
	}
	sort.Strings(categories)
	return categories
}

// Matches reports whether the text belongs to the named category.
func Matches(text, name string) bool {
	words, ok := keywordTable[name]
	if !ok {
		return false
	}
	lower := strings.ToLower(text)
	for _, word := range words {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
