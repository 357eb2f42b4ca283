// Package section splits free-form job description text into labeled
// sections using heading-phrase boundaries.
package section

import (
	"regexp"
	"sort"
	"strings"

	"fdescout/internal/model"
)

// Section labels. Keys of the map Segment returns.
const (
	Responsibilities = "responsibilities"
	Qualifications   = "qualifications"
	NiceToHave       = "nice_to_have"
	AboutRole        = "about_role"
	AboutCompany     = "about_company"
)

// headingPatterns maps each section label to the heading phrases that
// open it. Matching is case-insensitive; the trailing [:\s]* swallows
// the colon and whitespace after the heading so content starts clean.
var headingPatterns = map[string][]string{
	Responsibilities: {
		`(?:what you'll do|responsibilities|your role|the role|you will|your day|key responsibilities|job duties|duties and responsibilities)[:\s]*`,
		`(?:in this role|as a .+?, you will)[:\s]*`,
	},
	Qualifications: {
		`(?:requirements|qualifications|what we're looking for|who you are|you have|you bring|must have|required skills|minimum qualifications|basic qualifications)[:\s]*`,
		`(?:we're looking for|ideal candidate|you should have)[:\s]*`,
	},
	NiceToHave: {
		`(?:nice to have|bonus|preferred|plus|ideally|it's a plus|extra credit|preferred qualifications|desired skills)[:\s]*`,
		`(?:you might also have|additional skills|not required but)[:\s]*`,
	},
	AboutRole: {
		`(?:about the role|the opportunity|overview|about this position|position summary)[:\s]*`,
	},
	AboutCompany: {
		`(?:about us|about the company|who we are|our company|company description|about .+? company)[:\s]*`,
	},
}

var (
	multiNewline = regexp.MustCompile(`\n{3,}`)
	multiSpace   = regexp.MustCompile(` {2,}`)
	leadBullet   = regexp.MustCompile(`(?m)^\s*[-•*]\s*`)
)

// Segmenter recognizes section headings in raw description text.
type Segmenter struct {
	patterns map[string][]*regexp.Regexp
}

// NewSegmenter compiles the heading pattern table once.
func NewSegmenter() *Segmenter {
	compiled := make(map[string][]*regexp.Regexp, len(headingPatterns))
	for label, pats := range headingPatterns {
		for _, p := range pats {
			compiled[label] = append(compiled[label], regexp.MustCompile(`(?i)`+p))
		}
	}
	return &Segmenter{patterns: compiled}
}

// boundary is one heading match: where it starts and ends in the text,
// and which section it opens.
type boundary struct {
	start, end int
	label      string
}

// Segment splits text into labeled sections. A section's content is the
// text between its heading match and the next heading in document
// order. When a label matches more than once, the longest extracted
// content wins. Heading-free or empty input yields an empty map;
// Segment never fails.
func (s *Segmenter) Segment(text string) map[string]string {
	if text == "" {
		return map[string]string{}
	}

	var bounds []boundary
	for label, pats := range s.patterns {
		for _, p := range pats {
			for _, loc := range p.FindAllStringIndex(text, -1) {
				bounds = append(bounds, boundary{start: loc[0], end: loc[1], label: label})
			}
		}
	}

	sort.Slice(bounds, func(i, j int) bool { return bounds[i].start < bounds[j].start })

	sections := make(map[string]string)
	for i, b := range bounds {
		next := len(text)
		if i+1 < len(bounds) {
			next = bounds[i+1].start
		}
		// Overlapping headings (e.g. "the role" inside "about the role")
		// can put the next boundary before this match ends.
		if next < b.end {
			continue
		}

		content := clean(text[b.end:next])
		if content == "" {
			continue
		}
		if prev, ok := sections[b.label]; !ok || len(content) > len(prev) {
			sections[b.label] = content
		}
	}

	return sections
}

// SegmentRecord returns the sections in the record field shape.
func (s *Segmenter) SegmentRecord(text string) model.Sections {
	m := s.Segment(text)
	return model.Sections{
		Responsibilities: m[Responsibilities],
		Qualifications:   m[Qualifications],
		NiceToHave:       m[NiceToHave],
		AboutRole:        m[AboutRole],
		AboutCompany:     m[AboutCompany],
	}
}

// clean normalizes extracted section content: collapse runs of blank
// lines and spaces, strip leading bullet markers, trim.
func clean(text string) string {
	text = multiNewline.ReplaceAllString(text, "\n\n")
	text = multiSpace.ReplaceAllString(text, " ")
	text = leadBullet.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
