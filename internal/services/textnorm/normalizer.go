package textnorm

import (
	"strings"
	"unicode"
)

// Normalize converts free text into the token sequence used for indexing.
// The same transform is applied to corpus documents and queries, so a query
// term can only match if both sides normalize identically.
//
// Steps: lowercase, strip every character outside the Latin alphabet and
// whitespace, split on whitespace, drop English stop words. Empty input
// yields an empty slice, never an error.
func Normalize(text string) []string {
	if text == "" {
		return nil
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			// Numbers, punctuation and symbols are removed entirely
			return -1
		}
	}, text)

	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return nil
	}

	tokens := fields[:0]
	for _, tok := range fields {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
