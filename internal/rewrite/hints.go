package rewrite

import (
	"fmt"
	"strings"
)

// qualifierTerms are hedges that signal uncertainty. They are reported, never
// removed.
var qualifierTerms = []string{
	"may",
	"could",
	"might",
	"potentially",
	"appears to",
	"seems to",
	"generally",
	"possibly",
}

// impactCues are words that show a finding already states its consequence.
var impactCues = []string{"risk", "impact", "result", "consequence"}

// detectQualifiers returns the qualifier terms present in sentence, in table
// order. Substring matching is intentional: "may" also hits "mayor".
func detectQualifiers(sentence string) []string {
	lower := strings.ToLower(sentence)
	var found []string
	for _, term := range qualifierTerms {
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}
	return found
}

func qualifierSuggestion(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return fmt.Sprintf(
		"Qualifiers retained (%s): audit-safe default keeps hedging language unless supporting evidence is documented.",
		strings.Join(quoted, ", "),
	)
}

// hasImpactCue reports whether sentence mentions any impact cue word.
func hasImpactCue(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, cue := range impactCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

const impactSuggestion = "State the credible consequence of this finding, without overstating it."
