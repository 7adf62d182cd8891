package taxonomy

import (
	"strings"
	"unicode/utf8"
)

// DescriptionFilter rejects cells that read like free-text descriptions rather
// than short subcategory labels. A zero threshold disables that rule.
type DescriptionFilter struct {
	MaxChars      int // reject at or above this many characters
	MaxWords      int // reject at or above this many words
	SentenceWords int // reject sentence punctuation with at least this many words
	CommaWords    int // reject a comma with at least this many words
}

// DefaultDescriptionFilter returns the thresholds tuned on real merchant files.
func DefaultDescriptionFilter() DescriptionFilter {
	return DescriptionFilter{
		MaxChars:      80,
		MaxWords:      12,
		SentenceWords: 6,
		CommaWords:    8,
	}
}

// IsDescription reports whether value looks like a description.
func (f DescriptionFilter) IsDescription(value string) bool {
	normalized := NormalizeWhitespace(value)
	if normalized == "" {
		return false
	}
	words := len(strings.Fields(normalized))

	if f.MaxChars > 0 && utf8.RuneCountInString(normalized) >= f.MaxChars {
		return true
	}
	if f.MaxWords > 0 && words >= f.MaxWords {
		return true
	}
	if f.SentenceWords > 0 && strings.ContainsAny(normalized, ".!?") && words >= f.SentenceWords {
		return true
	}
	if f.CommaWords > 0 && strings.Contains(normalized, ",") && words >= f.CommaWords {
		return true
	}
	return false
}

// Accepts reports whether value can become a subcategory label.
func (f DescriptionFilter) Accepts(value string) bool {
	return value != "" && !f.IsDescription(value)
}
