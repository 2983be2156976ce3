package livetest

import (
	"strings"
	"unicode"
)

// synonyms lists the spoken forms accepted for a Section A answer,
// keyed by the normalized correct answer.
var synonyms = map[string][]string{
	"cow":      {"cow", "cattle", "bull"},
	"east":     {"east", "eastern"},
	"b. cow":   {"b", "cow", "option b", "b. cow"},
	"1 with a": {"1 with a", "1a", "one with a"},
}

// Normalize lowercases and trims an answer.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func letters(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Match reports whether answer is acceptable for correct. Spelling answers
// compare letters only, so "C-A-T" matches "cat". Q&A answers accept known
// synonyms and partial matches either way. An empty answer never matches.
func Match(section Section, answer, correct string) bool {
	a, c := Normalize(answer), Normalize(correct)
	if section == SectionB {
		a, c = letters(a), letters(c)
		return a != "" && a == c
	}
	if a == "" {
		return false
	}
	accepted, ok := synonyms[c]
	if !ok {
		accepted = []string{c}
	}
	for _, s := range accepted {
		if a == s || strings.Contains(a, s) || strings.Contains(s, a) {
			return true
		}
	}
	return false
}

// SpellOut renders a word as spoken letters, "cat" becoming "C-A-T".
func SpellOut(word string) string {
	rs := []rune(strings.ToUpper(word))
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = string(r)
	}
	return strings.Join(parts, "-")
}
