// Package token implements text normalisation, tokenisation, and trigram
// extraction — the shared vocabulary the index and ranker build candidate
// sets from.
package token

import (
	"strings"
	"unicode"
)

// Normalise lower-cases text and strips everything that is not a Unicode
// letter, digit, or whitespace rune. Internal whitespace runs are kept
// intact so a later Split on whitespace recovers word boundaries; only
// leading/trailing whitespace is trimmed.
func Normalise(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokenise normalises text and splits it on whitespace. Empty tokens are
// discarded; order is preserved but carries no ranking meaning.
func Tokenise(text string) []string {
	normalised := Normalise(text)
	if normalised == "" {
		return nil
	}
	return strings.Fields(normalised)
}

// UniqueTokens tokenises text and deduplicates, preserving first-seen order.
func UniqueTokens(text string) []string {
	fields := Tokenise(text)
	if len(fields) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Trigrams returns the set of 3-rune windows over token, padded with a
// "$$" prefix and a "$" suffix so edge characters carry positional
// context. The empty token yields an empty set. Duplicate windows within
// a token collapse, since the result is a set.
func Trigrams(tok string) map[string]struct{} {
	if tok == "" {
		return map[string]struct{}{}
	}
	runes := []rune("$$" + tok + "$")
	out := make(map[string]struct{}, len(runes))
	for i := 0; i+3 <= len(runes); i++ {
		out[string(runes[i:i+3])] = struct{}{}
	}
	return out
}

// TrigramCount reports |trigrams(tok)| before de-duplication: the padded
// string "$$"+tok+"$" has len(tok)+3 runes and yields len(tok)+1
// overlapping windows of 3; 0 for the empty token.
func TrigramCount(tok string) int {
	if tok == "" {
		return 0
	}
	return len([]rune(tok)) + 1
}
