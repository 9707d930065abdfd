package example

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeTitle composes to NFC, trims, and collapses internal whitespace.
func NormalizeTitle(s string) string {
	s = norm.NFC.String(s)
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NormalizeText composes to NFC, converts CRLF line endings, and trims.
// Internal whitespace is kept so paragraph breaks survive.
func NormalizeText(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}

// NormalizeTag lowercases a single tag after NFC composition.
func NormalizeTag(s string) string {
	return strings.ToLower(NormalizeTitle(s))
}

// NormalizeTags normalizes each tag, drops empties, and removes duplicates
// keeping first occurrence. Returns nil when nothing is left.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		t = NormalizeTag(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// CountWords returns the number of whitespace-delimited words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
