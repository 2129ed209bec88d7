// Package fulltext provides the tokenizer and the in-memory inverted word
// index used by the storage engine to answer search queries.
package fulltext

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTermLength is the shortest term kept by Tokenize, in runes.
const MinTermLength = 2

// MinPrefixLength is the shortest term that triggers a prefix scan.
const MinPrefixLength = 3

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "in": {}, "of": {}, "to": {},
	"and": {}, "or": {}, "for": {}, "with": {}, "at": {}, "by": {}, "it": {},
	"be": {}, "as": {}, "on": {}, "if": {}, "no": {}, "so": {},
}

// IsStopWord reports whether term is ignored by the tokenizer.
func IsStopWord(term string) bool {
	_, ok := stopWords[term]
	return ok
}

// Tokenize lower-cases text, replaces everything except letters, digits,
// hyphens and whitespace with spaces and splits on whitespace. Terms shorter
// than MinTermLength and stop words are dropped. Duplicates are kept.
func Tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, text)

	fields := strings.Fields(cleaned)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < MinTermLength || IsStopWord(f) {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// Unique returns the distinct terms of text in first-seen order.
func Unique(text string) []string {
	terms := Tokenize(text)
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
