package rewrite

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// spellingPairs is the curated UK/US dictionary. Every entry is a whole
// word and each side appears exactly once, so lookups are symmetric.
var spellingPairs = [][2]string{
	{"unauthorised", "unauthorized"},
	{"authorised", "authorized"},
	{"authorise", "authorize"},
	{"authorisation", "authorization"},
	{"authorisations", "authorizations"},
	{"organisation", "organization"},
	{"organisations", "organizations"},
	{"organisational", "organizational"},
	{"analyse", "analyze"},
	{"analysed", "analyzed"},
	{"analysing", "analyzing"},
	{"recognise", "recognize"},
	{"recognised", "recognized"},
	{"prioritise", "prioritize"},
	{"prioritised", "prioritized"},
	{"minimise", "minimize"},
	{"utilise", "utilize"},
	{"standardise", "standardize"},
	{"standardised", "standardized"},
	{"summarise", "summarize"},
	{"summarised", "summarized"},
	{"realise", "realize"},
	{"realised", "realized"},
	{"behaviour", "behavior"},
	{"favour", "favor"},
	{"honour", "honor"},
	{"labour", "labor"},
	{"colour", "color"},
	{"centre", "center"},
	{"catalogue", "catalog"},
	{"judgement", "judgment"},
	{"defence", "defense"},
	{"offence", "offense"},
	{"travelled", "traveled"},
	{"cancelled", "canceled"},
	{"modelling", "modeling"},
	{"fulfil", "fulfill"},
	{"enrol", "enroll"},
	{"artefact", "artifact"},
	{"ageing", "aging"},
	{"acknowledgement", "acknowledgment"},
}

// spellingTable holds one direction of the dictionary.
type spellingTable struct {
	lookup  map[string]string
	pattern *regexp.Regexp
}

func newSpellingTable(from, to int) spellingTable {
	lookup := make(map[string]string, len(spellingPairs))
	words := make([]string, 0, len(spellingPairs))
	for _, p := range spellingPairs {
		lookup[p[from]] = p[to]
		words = append(words, regexp.QuoteMeta(p[from]))
	}
	sort.Slice(words, func(i, j int) bool { return len(words[i]) > len(words[j]) })
	return spellingTable{
		lookup:  lookup,
		pattern: regexp.MustCompile(`(?i)\b(?:` + strings.Join(words, "|") + `)\b`),
	}
}

var (
	// ukToUS rewrites UK forms when targeting en-US.
	ukToUS = newSpellingTable(0, 1)
	// usToUK rewrites US forms when targeting en-GB.
	usToUK = newSpellingTable(1, 0)
)

// tableFor returns the table that rewrites toward variant.
func tableFor(variant EnglishVariant) (spellingTable, bool) {
	switch variant {
	case VariantUS:
		return ukToUS, true
	case VariantUK:
		return usToUK, true
	default:
		return spellingTable{}, false
	}
}

// StandardizeSpelling rewrites every whole-word variant spelling in sentence
// to its counterpart in variant, skipping protected spans and keeping the
// case pattern of each match. It returns one change per distinct term.
func StandardizeSpelling(sentence string, variant EnglishVariant) (string, []Change) {
	table, ok := tableFor(variant)
	if !ok {
		return sentence, nil
	}

	var (
		changes []Change
		seen    = make(map[string]bool)
	)
	out := MapText(sentence, func(t string) string {
		return table.pattern.ReplaceAllStringFunc(t, func(match string) string {
			key := strings.ToLower(match)
			target, ok := table.lookup[key]
			if !ok {
				return match
			}
			if !seen[key] {
				seen[key] = true
				changes = append(changes, Change{
					Type:        ChangeSpelling,
					Description: fmt.Sprintf("Standardised spelling to %s: %q → %q.", variant, key, target),
				})
			}
			return applyCasePattern(match, target)
		})
	})
	return out, changes
}

// applyCasePattern gives target the case shape of source: all caps, initial
// capital, or lowercase.
func applyCasePattern(source, target string) string {
	if utf8.RuneCountInString(source) > 1 && source == strings.ToUpper(source) {
		return strings.ToUpper(target)
	}
	first, _ := utf8.DecodeRuneInString(source)
	if unicode.IsUpper(first) {
		return capitalizeFirst(target)
	}
	return target
}

// DetectMixedVariants scans raw text for both UK and US dictionary forms. It
// returns a suggestion when both are present, or "" otherwise.
func DetectMixedVariants(text string) string {
	ukWord := ukToUS.pattern.FindString(text)
	usWord := usToUK.pattern.FindString(text)
	if ukWord == "" || usWord == "" {
		return ""
	}
	return fmt.Sprintf(
		"Mixed UK/US spelling detected (for example %q and %q); choose one English variant and standardise spelling for consistency.",
		strings.ToLower(ukWord), strings.ToLower(usWord),
	)
}
