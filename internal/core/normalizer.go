package core

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultCommonWords are frequent, low-information words of skill names.
var DefaultCommonWords = []string{"skill", "fallback", "mycroft"}

// DefaultHomophones maps speech-to-text mistakes onto the domain word.
var DefaultHomophones = map[string]string{
	"scale": "skill",
	"steel": "skill",
}

// Query is a normalized piece of free text.
type Query struct {
	Text   string
	Words  []string
	Common []string
}

type Normalizer struct {
	commonWords []string
	homophones  []homophoneRule
}

type homophoneRule struct {
	pattern     *regexp.Regexp
	replacement string
}

func NewNormalizer(commonWords []string, homophones map[string]string) Normalizer {
	if len(commonWords) == 0 {
		commonWords = DefaultCommonWords
	}
	if homophones == nil {
		homophones = DefaultHomophones
	}
	words := make([]string, 0, len(commonWords))
	for _, word := range commonWords {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" {
			words = append(words, word)
		}
	}
	heard := make([]string, 0, len(homophones))
	for word := range homophones {
		heard = append(heard, word)
	}
	sort.Strings(heard)
	var rules []homophoneRule
	for _, word := range heard {
		trimmed := strings.TrimSpace(word)
		if trimmed == "" {
			continue
		}
		rules = append(rules, homophoneRule{
			pattern:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(trimmed) + `\b`),
			replacement: strings.ToLower(homophones[word]),
		})
	}
	return Normalizer{commonWords: words, homophones: rules}
}

// Normalize applies the homophone fixes, extracts the common words, and
// collapses whitespace.
func (n Normalizer) Normalize(text string) Query {
	for _, rule := range n.homophones {
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}
	text = strings.ToLower(text)
	var common []string
	for _, word := range n.commonWords {
		count := strings.Count(text, word)
		for i := 0; i < count; i++ {
			common = append(common, word)
		}
		text = strings.ReplaceAll(text, word, "")
	}
	words := strings.Fields(text)
	return Query{
		Text:   strings.Join(words, " "),
		Words:  words,
		Common: common,
	}
}

// NormalizeName normalizes a catalog name under the same rules as a query.
func (n Normalizer) NormalizeName(name string) Query {
	return n.Normalize(strings.ReplaceAll(name, "-", " "))
}
