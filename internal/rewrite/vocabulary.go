package rewrite

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// phraseRule replaces a multi-word phrase wherever it appears.
type phraseRule struct {
	phrase      string
	replacement string
	pattern     *regexp.Regexp
}

func newPhraseRules(pairs [][2]string) []phraseRule {
	rules := make([]phraseRule, 0, len(pairs))
	for _, p := range pairs {
		rules = append(rules, phraseRule{
			phrase:      p[0],
			replacement: p[1],
			pattern:     regexp.MustCompile(`(?i)` + regexp.QuoteMeta(p[0])),
		})
	}
	return rules
}

// vocabularyRules are wordy phrases with a plainer equivalent. None of the
// phrases overlap, so table order does not matter.
var vocabularyRules = newPhraseRules([][2]string{
	{"due to the fact that", "because"},
	{"in light of the fact that", "because"},
	{"in order to", "to"},
	{"at this point in time", "now"},
	{"in the event that", "if"},
	{"with regard to", "about"},
	{"with respect to", "about"},
	{"a number of", "several"},
	{"prior to", "before"},
	{"subsequent to", "after"},
	{"for the purpose of", "for"},
	{"has the ability to", "can"},
	{"is in a position to", "can"},
	{"in the absence of", "without"},
	{"on a monthly basis", "monthly"},
	{"on an annual basis", "annually"},
	{"in a timely manner", "promptly"},
	{"make a decision", "decide"},
})

// calmToneRules drop intensifiers that overstate a finding.
var calmToneRules = newPhraseRules([][2]string{
	{"extremely concerning", "concerning"},
	{"very serious", "serious"},
	{"grossly inadequate", "inadequate"},
	{"completely unacceptable", "unacceptable"},
	{"blatant disregard for", "disregard for"},
	{"alarmingly high", "high"},
	{"totally ineffective", "ineffective"},
})

// substitutePhrases applies rules to the text chunks of sentence. It returns
// the rewritten sentence and one change per distinct phrase replaced.
func substitutePhrases(sentence string, rules []phraseRule, changeType ChangeType) (string, []Change) {
	var changes []Change
	for _, rule := range rules {
		replaced := false
		sentence = MapText(sentence, func(t string) string {
			return rule.pattern.ReplaceAllStringFunc(t, func(match string) string {
				replaced = true
				return matchInitialCase(match, rule.replacement)
			})
		})
		if replaced {
			changes = append(changes, Change{
				Type:        changeType,
				Description: fmt.Sprintf("Replaced %q with %q.", rule.phrase, rule.replacement),
			})
		}
	}
	return sentence, changes
}

// matchInitialCase capitalises replacement when match starts with an
// uppercase letter.
func matchInitialCase(match, replacement string) string {
	first, _ := utf8.DecodeRuneInString(match)
	if unicode.IsUpper(first) {
		return capitalizeFirst(replacement)
	}
	return replacement
}

// capitalizeFirst uppercases the first rune of s.
func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// fillerOpeners are sentence openers that add nothing. Longer forms come
// before their prefixes so the first match strips the most.
var fillerOpeners = []string{
	"It should be noted that",
	"It should be noted",
	"It is important to note that",
	"It is worth noting that",
	"We note that",
	"We would like to point out that",
	"Please note that",
	"As a matter of fact",
	"Needless to say",
}

var fillerOpenerPatterns = func() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(fillerOpeners))
	for i, opener := range fillerOpeners {
		patterns[i] = regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(opener) + `\b,?\s*`)
	}
	return patterns
}()

// stripFillerOpener removes the first matching filler opener from the start
// of sentence. At most one opener is removed.
func stripFillerOpener(sentence string) (string, *Change) {
	for i, pattern := range fillerOpenerPatterns {
		loc := pattern.FindStringIndex(sentence)
		if loc == nil {
			continue
		}
		if overlapsProtected(loc[0], loc[1], protectedRanges(sentence)) {
			return sentence, nil
		}
		return sentence[loc[1]:], &Change{
			Type:        ChangeConcision,
			Description: fmt.Sprintf("Removed filler opener %q.", fillerOpeners[i]),
		}
	}
	return sentence, nil
}
