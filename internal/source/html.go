package source

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockEnd marks tag positions that should become line breaks so the
// section segmenter still sees headings and paragraphs on their own
// lines after tags are gone.
var blockEnd = regexp.MustCompile(`(?i)</(p|div|li|ul|ol|h[1-6]|section|article|tr|table)>|<br\s*/?>`)

var anyTag = regexp.MustCompile(`<[^>]*>`)

// htmlToText converts an HTML job description to plain text with
// paragraph structure preserved as newlines. Greenhouse double-encodes
// its content field, so entities are unescaped before parsing; that is
// a no-op on already-real HTML.
func htmlToText(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	unescaped := html.UnescapeString(content)
	withBreaks := blockEnd.ReplaceAllString(unescaped, "$0\n")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(withBreaks))
	if err != nil {
		// Malformed enough that the parser gave up; strip tags raw.
		return normalizeLines(anyTag.ReplaceAllString(withBreaks, " "))
	}

	doc.Find("script, style").Remove()
	return normalizeLines(doc.Text())
}

// normalizeLines trims each line, collapses internal runs of spaces,
// and drops runs of more than one blank line.
func normalizeLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := true // swallow leading blank lines
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	// Drop a trailing blank line left by the loop.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
