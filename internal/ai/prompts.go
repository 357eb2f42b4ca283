package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/skill_extraction.md
var skillExtractionPromptRaw string

// SkillExtractionTemplate is the parsed prompt template for categorized
// skill extraction. Parsed once at package init; reused on every call.
var SkillExtractionTemplate = template.Must(template.New("skill_extraction").Parse(skillExtractionPromptRaw))
