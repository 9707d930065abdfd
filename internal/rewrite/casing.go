package rewrite

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// lowercasePronoun matches a standalone "i". It is blunt: "i.e." becomes
// "I.e." as well.
var lowercasePronoun = regexp.MustCompile(`\bi\b`)

// normalizeCasing uppercases the first letter, fixes the "i" pronoun,
// guarantees terminal punctuation and re-applies spacing normalization.
// A first letter inside a protected span is left as written.
func normalizeCasing(sentence string) string {
	chunks := Protect(sentence)
	capitalized := false
	for i := range chunks {
		if chunks[i].Kind == ChunkProtected {
			if !capitalized && strings.IndexFunc(chunks[i].Text, unicode.IsLetter) >= 0 {
				capitalized = true
			}
			continue
		}
		text := chunks[i].Text
		if !capitalized {
			if idx := strings.IndexFunc(text, unicode.IsLetter); idx >= 0 {
				r, size := utf8.DecodeRuneInString(text[idx:])
				text = text[:idx] + string(unicode.ToUpper(r)) + text[idx+size:]
				capitalized = true
			}
		}
		chunks[i].Text = lowercasePronoun.ReplaceAllString(text, "I")
	}

	out := strings.TrimSpace(chunks.Join())
	if out == "" {
		return out
	}
	if last, _ := utf8.DecodeLastRuneInString(out); !isTerminator(last) {
		out += "."
	}
	return NormalizeSpacing(out)
}
