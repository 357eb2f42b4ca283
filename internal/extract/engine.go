// Package extract selects between the two skill extraction paths and
// reconciles their output onto the canonical category set.
package extract

import (
	"context"
	"log/slog"

	"fdescout/internal/model"
	"fdescout/internal/taxonomy"
)

// LLMExtractor is the AI-backed extraction path. Implemented by
// ai.Extractor; an interface here so tests can stub the LLM side.
type LLMExtractor interface {
	Available() bool
	Extract(ctx context.Context, text string) (map[string][]string, string)
}

// Engine extracts categorized skills from a job description. It uses
// the LLM path when one is configured and the dictionary matcher
// otherwise. Results always carry every canonical category.
type Engine struct {
	llm     LLMExtractor
	matcher *taxonomy.Matcher
	logger  *slog.Logger
}

// NewEngine creates an engine. llm may be nil; the engine then always
// uses the dictionary matcher.
func NewEngine(llm LLMExtractor, matcher *taxonomy.Matcher, logger *slog.Logger) *Engine {
	return &Engine{llm: llm, matcher: matcher, logger: logger}
}

// Extract returns the skill set for text and the name of what served
// the call: "taxonomy" for the dictionary path, otherwise the LLM
// side's answer ("cache", a provider name, or "" when every provider
// failed). An unavailable or failed LLM path does not fall through to
// the dictionary; the two paths have different recall and mixing them
// within one run would skew frequency rollups.
func (e *Engine) Extract(ctx context.Context, text string) (model.SkillSet, string) {
	if e.llm == nil || !e.llm.Available() {
		return e.matcher.Extract(text), "taxonomy"
	}

	raw, servedBy := e.llm.Extract(ctx, text)
	return canonicalize(raw), servedBy
}

// llmToCanonical maps the prompt-side category names onto the record
// categories. "ai" and "ml" merge into ai_ml; soft_skills has no
// prompt-side counterpart and stays empty on the LLM path.
var llmToCanonical = map[string]string{
	"ai":       model.CategoryAIML,
	"ml":       model.CategoryAIML,
	"backend":  model.CategoryProgram,
	"frontend": model.CategoryFrontend,
	"cloud":    model.CategoryCloud,
	"data":     model.CategoryData,
	"fde":      model.CategoryFDE,
	"industry": model.CategoryIndustry,
}

func canonicalize(raw map[string][]string) model.SkillSet {
	out := model.EmptySkillSet()
	seen := make(map[string]map[string]bool, len(out))
	for cat := range out {
		seen[cat] = make(map[string]bool)
	}

	// Iterate the fixed mapping rather than the raw map so merged
	// categories (ai before ml) keep a deterministic order.
	for _, llmCat := range []string{"ai", "ml", "backend", "frontend", "cloud", "data", "fde", "industry"} {
		canon := llmToCanonical[llmCat]
		for _, skill := range raw[llmCat] {
			if skill == "" || seen[canon][skill] {
				continue
			}
			seen[canon][skill] = true
			out[canon] = append(out[canon], skill)
		}
	}
	return out
}
