package rewrite

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxStyleExamples caps how many active examples calibrate the heuristic.
	MaxStyleExamples = 3
	// longSentenceRatio is how far above the example average a sentence must be.
	longSentenceRatio = 1.5
	// longSentenceFloor is the absolute word count a sentence must exceed.
	longSentenceFloor = 22
)

// styleProfile summarises the active style examples.
type styleProfile struct {
	avgSentenceWords float64
}

// newStyleProfile averages the mean sentence length of the first three
// active examples. Examples without sentences are ignored.
func newStyleProfile(examples []StyleExample) styleProfile {
	var (
		total float64
		n     int
		used  int
	)
	for _, ex := range examples {
		if !ex.IsActive {
			continue
		}
		if used == MaxStyleExamples {
			break
		}
		used++
		if mean, ok := meanSentenceWords(ex.Text); ok {
			total += mean
			n++
		}
	}
	if n == 0 {
		return styleProfile{}
	}
	return styleProfile{avgSentenceWords: total / float64(n)}
}

// meanSentenceWords returns the mean word count per sentence of text.
func meanSentenceWords(text string) (float64, bool) {
	var words, sentences int
	for _, p := range SplitParagraphs(text) {
		for _, s := range SplitSentences(p) {
			words += wordCount(s)
			sentences++
		}
	}
	if sentences == 0 {
		return 0, false
	}
	return float64(words) / float64(sentences), true
}

// isLong reports whether sentence should be split under this profile.
func (p styleProfile) isLong(sentence string) bool {
	if p.avgSentenceWords <= 0 {
		return false
	}
	wc := float64(wordCount(sentence))
	return wc > longSentenceRatio*p.avgSentenceWords && wc > longSentenceFloor
}

// splitPoints are tried in order; the first one present is used once.
// A split that starts a new sentence capitalizes the word after it.
var splitPoints = []struct {
	find       string
	replace    string
	capitalize bool
}{
	{", and ", ". ", true},
	{", which ", ". This ", false},
}

// splitLongSentence replaces the first split point found in the free text
// of sentence. ok is false when no split point exists.
func splitLongSentence(sentence string) (string, bool) {
	for _, sp := range splitPoints {
		chunks := Protect(sentence)
		for i, c := range chunks {
			if c.Kind != ChunkText {
				continue
			}
			idx := strings.Index(c.Text, sp.find)
			if idx < 0 {
				continue
			}
			after := c.Text[idx+len(sp.find):]
			if sp.capitalize {
				after = capitalizeLeadingLetter(after)
			}
			chunks[i].Text = c.Text[:idx] + sp.replace + after
			return chunks.Join(), true
		}
	}
	return sentence, false
}

// capitalizeLeadingLetter uppercases s when it starts with a lowercase letter.
func capitalizeLeadingLetter(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if unicode.IsLower(r) {
		return capitalizeFirst(s)
	}
	return s
}
