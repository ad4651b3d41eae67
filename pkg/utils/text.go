// Package utils provides shared utilities for text normalization and logging.
package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var turkishLower = cases.Lower(language.Turkish)

// combiningDot is left behind when "İ" is lowered without Turkish rules.
const combiningDot = "̇"

// Normalize lowercases s with Turkish casing rules (İ→i, I→ı), collapses
// runs of whitespace to a single space, and trims the result.
func Normalize(s string) string {
	lowered := turkishLower.String(s)
	lowered = strings.ReplaceAll(lowered, combiningDot, "")
	return strings.Join(strings.Fields(lowered), " ")
}

// Tokens splits a normalized message into whitespace-delimited tokens with
// leading and trailing punctuation removed. Apostrophe suffixes are kept
// ("izmir'deki" stays one token).
func Tokens(s string) []string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// HasToken reports whether any token of s equals one of words.
func HasToken(s string, words ...string) bool {
	for _, tok := range Tokens(s) {
		for _, w := range words {
			if tok == w {
				return true
			}
		}
	}
	return false
}

// HasTokenPrefix reports whether any token of s starts with one of prefixes.
// Turkish attaches case and plural suffixes to the stem ("teklifleri", "kliniğin").
func HasTokenPrefix(s string, prefixes ...string) bool {
	for _, tok := range Tokens(s) {
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(tok, p) {
				return true
			}
		}
	}
	return false
}

// Truncate returns s truncated to maxLen runes, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
