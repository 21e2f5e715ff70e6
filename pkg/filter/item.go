package filter

import (
	"slices"
	"strings"
	"unicode"
)

// Built-in filter keys.
const (
	All        = "all"
	Highlights = "highlights"
)

// Item is one filterable portfolio entry.
type Item struct {
	ID        string
	Title     string
	Tags      []string
	Highlight bool
}

func isTagSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// ParseTags splits a data-tags attribute on commas and Unicode whitespace,
// lowercasing every tag and dropping empties.
func ParseTags(attr string) []string {
	fields := strings.FieldsFunc(strings.ToLower(attr), isTagSeparator)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ParseHighlight reports whether a data-highlight attribute is "true",
// ignoring case.
func ParseHighlight(attr string) bool {
	return strings.EqualFold(attr, "true")
}

// HasTag reports whether the item carries tag, ignoring case.
func (it Item) HasTag(tag string) bool {
	return slices.ContainsFunc(it.Tags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
}

// Selects reports whether filter shows it: "all" shows everything,
// "highlights" shows highlighted items, any other key matches a tag.
func Selects(filter string, it Item) bool {
	switch strings.ToLower(filter) {
	case All:
		return true
	case Highlights:
		return it.Highlight
	default:
		return it.HasTag(filter)
	}
}

// Normalize maps an empty control key to "all".
func Normalize(filter string) string {
	if strings.TrimSpace(filter) == "" {
		return All
	}
	return strings.TrimSpace(filter)
}
