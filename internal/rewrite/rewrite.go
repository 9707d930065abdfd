// Package rewrite implements the rule-based rewrite pipeline: segmentation,
// protected-span masking, vocabulary and spelling rules, audit-safe
// passive-to-active conversion, suggestion detectors and final normalization.
//
// The pipeline is pure. Rewrite performs no I/O, keeps no state between
// calls and is safe for concurrent use.
package rewrite

import (
	"strings"
	"unicode"
)

// MaxSuggestions caps the suggestion list of a Result.
const MaxSuggestions = 12

// sentenceState is the mutable state threaded through the stages for one
// sentence.
type sentenceState struct {
	text    string
	opts    Options
	profile styleProfile
	out     *collector
	dropped bool
}

// stage is one rule in the per-sentence pipeline.
type stage struct {
	name    string
	enabled func(Options) bool
	apply   func(*sentenceState)
}

func always(Options) bool { return true }

// stages run left to right on every sentence.
var stages = []stage{
	{
		name:    "filler-opener",
		enabled: func(o Options) bool { return o.Concise },
		apply: func(s *sentenceState) {
			text, change := stripFillerOpener(s.text)
			if change == nil {
				return
			}
			s.out.change(*change)
			if strings.IndexFunc(text, isWordRune) < 0 {
				s.dropped = true
			}
			s.text = text
		},
	},
	{
		name:    "vocabulary",
		enabled: always,
		apply: func(s *sentenceState) {
			var changes []Change
			s.text, changes = substitutePhrases(s.text, vocabularyRules, ChangeConcision)
			s.out.change(changes...)
		},
	},
	{
		name:    "calm-tone",
		enabled: func(o Options) bool { return o.CalmTone },
		apply: func(s *sentenceState) {
			var changes []Change
			s.text, changes = substitutePhrases(s.text, calmToneRules, ChangeClarity)
			s.out.change(changes...)
		},
	},
	{
		name:    "spelling",
		enabled: func(o Options) bool { return o.StandardiseSpelling },
		apply: func(s *sentenceState) {
			var changes []Change
			s.text, changes = StandardizeSpelling(s.text, s.opts.EnglishVariant)
			s.out.change(changes...)
		},
	},
	{
		name:    "qualifiers",
		enabled: always,
		apply: func(s *sentenceState) {
			if terms := detectQualifiers(s.text); len(terms) > 0 {
				s.out.suggest(qualifierSuggestion(terms))
			}
		},
	},
	{
		name: "voice",
		enabled: func(o Options) bool {
			return o.ActiveVoice && o.ClearOwnership && strings.TrimSpace(o.Owner) != ""
		},
		apply: func(s *sentenceState) {
			text, change, ok := convertPassive(s.text, strings.TrimSpace(s.opts.Owner))
			if ok {
				s.text = text
				s.out.change(*change)
				return
			}
			if s.opts.AuditSafeMode {
				s.out.suggest(voiceWithheldSuggestion)
			}
		},
	},
	{
		name: "impact",
		enabled: func(o Options) bool {
			return o.SharperImpact && o.DocumentType == DocAuditFinding
		},
		apply: func(s *sentenceState) {
			if !hasImpactCue(s.text) {
				s.out.suggest(impactSuggestion)
			}
		},
	},
	{
		name:    "style",
		enabled: always,
		apply: func(s *sentenceState) {
			if !s.profile.isLong(s.text) {
				return
			}
			if text, ok := splitLongSentence(s.text); ok {
				s.text = text
				s.out.change(Change{
					Type:        ChangeClarity,
					Description: "Split a long sentence to match the length of the active style examples.",
				})
			}
		},
	},
	{
		name:    "casing",
		enabled: always,
		apply: func(s *sentenceState) {
			s.text = normalizeCasing(s.text)
		},
	},
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// collector accumulates the change log and the ordered, deduplicated
// suggestion list for one call.
type collector struct {
	changes     []Change
	suggestions []string
	seen        map[string]bool
}

func newCollector() *collector {
	return &collector{
		changes:     make([]Change, 0),
		suggestions: make([]string, 0),
		seen:        make(map[string]bool),
	}
}

func (c *collector) change(changes ...Change) {
	c.changes = append(c.changes, changes...)
}

func (c *collector) suggest(s string) {
	s = strings.TrimSpace(s)
	if s == "" || c.seen[s] {
		return
	}
	c.seen[s] = true
	c.suggestions = append(c.suggestions, s)
}

// capped returns at most MaxSuggestions suggestions in first-seen order.
func (c *collector) capped() []string {
	if len(c.suggestions) > MaxSuggestions {
		return c.suggestions[:MaxSuggestions]
	}
	return c.suggestions
}

// Rewrite runs the pipeline over text. It never fails: empty input yields an
// empty result with no changes or suggestions.
func Rewrite(text string, opts Options, examples []StyleExample) Result {
	out := newCollector()

	if s := DetectMixedVariants(text); s != "" {
		out.suggest(s)
	}

	profile := newStyleProfile(examples)
	paragraphs := SplitParagraphs(text)
	rewritten := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			rewritten = append(rewritten, p)
			continue
		}
		var sentences []string
		for _, s := range SplitSentences(p) {
			if r, ok := rewriteSentence(s, opts, profile, out); ok {
				sentences = append(sentences, r)
			}
		}
		rewritten = append(rewritten, strings.Join(sentences, " "))
	}

	return Result{
		RewrittenText: strings.TrimSpace(strings.Join(rewritten, "\n\n")),
		ChangeLog:     out.changes,
		Suggestions:   out.capped(),
	}
}

// rewriteSentence runs every enabled stage on one sentence. ok is false when
// the sentence was reduced to nothing and should be dropped.
func rewriteSentence(sentence string, opts Options, profile styleProfile, out *collector) (string, bool) {
	state := &sentenceState{
		text:    NormalizeSpacing(sentence),
		opts:    opts,
		profile: profile,
		out:     out,
	}
	for _, st := range stages {
		if !st.enabled(opts) {
			continue
		}
		st.apply(state)
		if state.dropped {
			return "", false
		}
	}
	return state.text, state.text != ""
}
