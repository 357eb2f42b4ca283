package taxonomy

import (
	"regexp"
	"sort"

	"fdescout/internal/model"
)

// Matcher performs whole-word, case-insensitive phrase matching against
// raw text. Phrases are matched literally: "Postgres" in the text hits
// "postgres" but never "postgresql". Alias collapsing happens only on
// the LLM path.
type Matcher struct {
	category map[string]string // phrase -> category
	patterns map[string]*regexp.Regexp
}

// NewMatcher compiles one pattern per dictionary phrase.
func NewMatcher() *Matcher {
	m := &Matcher{
		category: make(map[string]string),
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, reg := range registrationOrder {
		for _, phrase := range reg.phrases {
			m.category[phrase] = reg.category
		}
	}
	for phrase := range m.category {
		m.patterns[phrase] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)
	}
	return m
}

// Extract returns the skills present in text, grouped by canonical
// category. Every canonical category is present in the result; lists
// are sorted for reproducibility. Empty input yields all-empty lists.
func (m *Matcher) Extract(text string) model.SkillSet {
	out := model.EmptySkillSet()
	if text == "" {
		return out
	}

	for phrase, pattern := range m.patterns {
		if pattern.MatchString(text) {
			cat := m.category[phrase]
			out[cat] = append(out[cat], phrase)
		}
	}

	for cat := range out {
		sort.Strings(out[cat])
	}
	return out
}

// Frequencies counts, per category, how many of the given descriptions
// mention each skill. Used for the post-run skill frequency rollup.
func (m *Matcher) Frequencies(descriptions []string) map[string]map[string]int {
	counts := make(map[string]map[string]int)
	for _, cat := range model.Categories() {
		counts[cat] = make(map[string]int)
	}

	for _, text := range descriptions {
		skills := m.Extract(text)
		for cat, list := range skills {
			for _, skill := range list {
				counts[cat][skill]++
			}
		}
	}
	return counts
}
