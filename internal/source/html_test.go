package source

import (
	"strings"
	"testing"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "double-encoded content",
			input: "&lt;p&gt;This is the job description.&lt;/p&gt;",
			want:  "This is the job description.",
		},
		{
			name:  "plain text passes through",
			input: "No tags here.",
			want:  "No tags here.",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: "   \n  ",
			want:  "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := htmlToText(tc.input); got != tc.want {
				t.Errorf("htmlToText(%q)\n got  %q\n want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestHTMLToText_PreservesParagraphBoundaries(t *testing.T) {
	input := "<p>Responsibilities:</p><ul><li>Write code</li><li>Ship it</li></ul>"
	got := htmlToText(input)

	lines := strings.Split(got, "\n")
	var nonEmpty []string
	for _, l := range lines {
		if l != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}
	if len(nonEmpty) != 3 {
		t.Fatalf("expected 3 text lines, got %d: %q", len(nonEmpty), got)
	}
	if nonEmpty[0] != "Responsibilities:" {
		t.Errorf("first line = %q", nonEmpty[0])
	}
	if nonEmpty[1] != "Write code" || nonEmpty[2] != "Ship it" {
		t.Errorf("list items = %q, %q", nonEmpty[1], nonEmpty[2])
	}
}

func TestHTMLToText_DropsScriptAndStyle(t *testing.T) {
	input := "<style>.x{color:red}</style><p>Visible.</p><script>alert(1)</script>"
	got := htmlToText(input)

	if got != "Visible." {
		t.Errorf("got %q, want only the visible text", got)
	}
}

func TestHTMLToText_CollapsesBlankRuns(t *testing.T) {
	input := "<p>One.</p><p></p><p></p><p>Two.</p>"
	got := htmlToText(input)

	if strings.Contains(got, "\n\n\n") {
		t.Errorf("got %q, blank runs not collapsed", got)
	}
	if !strings.Contains(got, "One.") || !strings.Contains(got, "Two.") {
		t.Errorf("got %q, missing content", got)
	}
}
