package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

// participleBase maps the recognised past participles to their base verb.
// Only these participles can trigger a conversion.
var participleBase = map[string]string{
	"completed":   "complete",
	"implemented": "implement",
	"performed":   "perform",
	"reviewed":    "review",
	"approved":    "approve",
	"identified":  "identify",
	"documented":  "document",
}

// baseVerb returns the base form of a participle. Unknown participles fall
// back to stripping "-ed"; this never makes a participle eligible to match.
func baseVerb(participle string) string {
	p := strings.ToLower(participle)
	if base, ok := participleBase[p]; ok {
		return base
	}
	return strings.TrimSuffix(p, "ed")
}

const participleAlternation = `completed|implemented|performed|reviewed|approved|identified|documented`

// voiceRuleKind enumerates the passive patterns the converter accepts.
type voiceRuleKind int

const (
	voiceNegatedPassive voiceRuleKind = iota
	voicePassive
)

// voiceRule pairs a strict surface pattern with the builder for its active
// form. Submatches: 1 subject, 2 auxiliary verb phrase, 3 participle, 4 tail.
type voiceRule struct {
	kind    voiceRuleKind
	pattern *regexp.Regexp
	build   func(owner, subject, participle, tail string) string
}

// voiceRules are evaluated in order; the first match wins.
var voiceRules = []voiceRule{
	{
		kind:    voiceNegatedPassive,
		pattern: regexp.MustCompile(`(?is)^(.+?)\s+((?:was|were)\s+not)\s+(` + participleAlternation + `)\b(.*)$`),
		build: func(owner, subject, participle, tail string) string {
			return joinWords(owner, "did not", baseVerb(participle), subject, tail)
		},
	},
	{
		kind:    voicePassive,
		pattern: regexp.MustCompile(`(?is)^(.+?)\s+(was|were)\s+(` + participleAlternation + `)\b(.*)$`),
		build: func(owner, subject, participle, tail string) string {
			return joinWords(owner, strings.ToLower(participle), subject, tail)
		},
	},
}

// auxiliaryVerb finds a passive auxiliary anywhere in a fragment.
var auxiliaryVerb = regexp.MustCompile(`(?i)\b(?:was|were)\b`)

// agentPhrase matches a leading "by <agent>" in the tail. The agent stops at
// punctuation or at a preposition that starts a new phrase, so "by the team
// on 3 March" keeps "on 3 March". Submatch 1 is what follows the agent.
var agentPhrase = regexp.MustCompile(`(?is)^by\s+.+?((?:\s+(?:on|in|during|at|for|within|before|after|as|because|when|while|since|until)\b|[,;:.!?]).*)?$`)

// stripAgent removes a leading "by ..." phrase from tail and returns the
// remaining tail together with the removed agent phrase. The agent boundary
// is found on a masked copy, so punctuation inside a URL or email never ends
// the agent early.
func stripAgent(tail string) (string, string) {
	tail = strings.TrimSpace(tail)
	m := agentPhrase.FindStringSubmatchIndex(maskProtected(tail))
	if m == nil {
		return tail, ""
	}
	if m[2] < 0 {
		return "", tail
	}
	return strings.TrimSpace(tail[m[2]:m[3]]), tail[:m[2]]
}

// subjectDeterminers are words that lose their capital when the subject
// moves behind the actor.
var subjectDeterminers = map[string]bool{
	"the": true, "a": true, "an": true, "this": true, "that": true,
	"these": true, "those": true, "our": true, "its": true, "their": true,
	"all": true, "some": true, "each": true, "every": true, "several": true,
	"no": true, "any": true, "both": true,
}

// subjectPronouns stand alone as a subject and are lowercased the same way.
var subjectPronouns = map[string]bool{
	"nothing": true, "none": true, "nobody": true, "neither": true,
	"everything": true, "something": true, "anything": true,
	"everyone": true, "someone": true, "anyone": true,
}

// moveSubject lowercases a leading determiner or pronoun so "The report"
// reads as "the report" mid-sentence. Proper nouns are left alone.
func moveSubject(subject string) string {
	subject = strings.TrimSpace(subject)
	first, rest, _ := strings.Cut(subject, " ")
	allCaps := len(first) > 1 && first == strings.ToUpper(first)
	lower := strings.ToLower(first)
	if (subjectDeterminers[lower] || subjectPronouns[lower]) && !allCaps {
		return strings.Join(append([]string{strings.ToLower(first)}, nonEmpty(rest)...), " ")
	}
	return subject
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// joinWords joins non-empty parts with single spaces and tidies punctuation.
func joinWords(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return NormalizeSpacing(strings.Join(kept, " "))
}

// convertPassive applies the first matching voice rule to sentence with
// owner as the actor. ok is false when no rule matched.
func convertPassive(sentence, owner string) (string, *Change, bool) {
	ranges := protectedRanges(sentence)
	for _, rule := range voiceRules {
		m := rule.pattern.FindStringSubmatchIndex(sentence)
		if m == nil {
			continue
		}
		// The verb phrase itself must sit in free text.
		if overlapsProtected(m[4], m[7], ranges) {
			continue
		}
		subject := sentence[m[2]:m[3]]
		participle := sentence[m[6]:m[7]]
		// A second auxiliary means the match spans clauses.
		if auxiliaryVerb.MatchString(subject) || auxiliaryVerb.MatchString(sentence[m[8]:m[9]]) {
			continue
		}
		tail, agent := stripAgent(sentence[m[8]:m[9]])
		// Dropping the agent must not drop a qualifier or a protected span
		// with it.
		if len(detectQualifiers(agent)) > 0 || len(protectedRanges(agent)) > 0 {
			continue
		}

		out := rule.build(owner, moveSubject(subject), participle, tail)

		desc := fmt.Sprintf("Converted passive voice to active voice with %q as the actor.", owner)
		if rule.kind == voiceNegatedPassive {
			desc = fmt.Sprintf("Converted explicit negative passive (%q) to active voice with %q as the actor.",
				strings.ToLower(sentence[m[4]:m[7]]), owner)
		}
		return out, &Change{Type: ChangeVoice, Description: desc}, true
	}
	return sentence, nil, false
}

const voiceWithheldSuggestion = "Active-voice conversion was withheld to preserve meaning (audit-safe mode); name the responsible party explicitly if it is known."
