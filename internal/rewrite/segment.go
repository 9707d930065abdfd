package rewrite

import (
	"regexp"
	"strings"
)

var (
	// paragraphBreak matches a run of one or more blank lines.
	paragraphBreak = regexp.MustCompile(`\n[ \t]*(?:\n[ \t]*)+`)

	horizontalSpace   = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	spaceBeforePunct  = regexp.MustCompile(` +([,.;:!?])`)
	missingSpaceAfter = regexp.MustCompile(`([,.;:!?])([\p{L}])`)
)

// normalizeLineEndings converts CRLF and lone CR to LF.
func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// SplitParagraphs splits text on runs of blank lines.
func SplitParagraphs(text string) []string {
	text = normalizeLineEndings(text)
	if text == "" {
		return nil
	}
	return paragraphBreak.Split(text, -1)
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// SplitSentences splits a paragraph into sentences. A sentence is a run of
// non-terminators followed by one or more of ".!?", or the end of the text.
// Terminators inside protected spans do not end a sentence. Abbreviations
// such as "Dr." are not recognised and will split.
func SplitSentences(paragraph string) []string {
	var (
		sentences []string
		current   strings.Builder
	)

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, chunk := range Protect(paragraph) {
		if chunk.Kind == ChunkProtected {
			current.WriteString(chunk.Text)
			continue
		}
		runes := []rune(chunk.Text)
		for i := 0; i < len(runes); i++ {
			current.WriteRune(runes[i])
			if !isTerminator(runes[i]) {
				continue
			}
			for i+1 < len(runes) && isTerminator(runes[i+1]) {
				i++
				current.WriteRune(runes[i])
			}
			flush()
		}
	}
	flush()

	return sentences
}

// NormalizeSpacing collapses horizontal whitespace, removes spaces before
// punctuation, ensures a space after punctuation that is directly followed by
// a letter, and trims. Protected spans are left as they are.
func NormalizeSpacing(s string) string {
	s = MapText(s, func(t string) string {
		t = horizontalSpace.ReplaceAllString(t, " ")
		t = spaceBeforePunct.ReplaceAllString(t, "$1")
		return missingSpaceAfter.ReplaceAllString(t, "$1 $2")
	})
	return strings.TrimSpace(s)
}

// wordCount counts whitespace-separated words.
func wordCount(s string) int {
	return len(strings.Fields(s))
}
