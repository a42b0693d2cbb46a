// Package textnorm normalises free text and requirement lists before they
// reach the vector model or the exact-match counters. It lower-cases input,
// drops every rune that is not a letter, digit, underscore or whitespace, and
// trims the result. Every function is total: empty input yields empty output.
package textnorm

import (
	"sort"
	"strings"
	"unicode"
)

// Clean returns the normalised form of text.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokens splits the cleaned text on whitespace. Order and duplicates are kept.
func Tokens(text string) []string {
	return strings.Fields(Clean(text))
}

// Set is a normalised token set, used for requirement and skill matching.
type Set map[string]struct{}

// NewSet cleans every item and keeps the non-empty ones. Multi-word items
// such as "machine learning" stay a single entry.
func NewSet(items []string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		if c := Clean(item); c != "" {
			s[c] = struct{}{}
		}
	}
	return s
}

// TokenSet returns the set of whitespace tokens of the cleaned text.
func TokenSet(text string) Set {
	tokens := Tokens(text)
	s := make(Set, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

func (s Set) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// IntersectCount returns |s ∩ other|.
func (s Set) IntersectCount(other Set) int {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for token := range small {
		if large.Contains(token) {
			n++
		}
	}
	return n
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for token := range s {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// Join returns the sorted members separated by single spaces.
func (s Set) Join() string {
	return strings.Join(s.Sorted(), " ")
}
