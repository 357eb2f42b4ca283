// Package ai implements the LLM-backed skill extraction path: a prompt
// template, a provider fallback chain, tolerant response parsing, and a
// fingerprint cache over extraction results.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"text/template"
	"time"
)

// maxPromptChars bounds how much description text goes into the prompt.
const maxPromptChars = 6000

// maxSkillsPerCategory matches the cap stated in the prompt rules.
const maxSkillsPerCategory = 15

// llmCategories is the category enumeration the prompt asks for. The
// extraction engine maps these onto the canonical record categories.
var llmCategories = []string{"ai", "ml", "backend", "frontend", "cloud", "data", "fde", "industry"}

// EmptyResult returns an all-empty category mapping in the LLM shape.
func EmptyResult() map[string][]string {
	out := make(map[string][]string, len(llmCategories))
	for _, c := range llmCategories {
		out[c] = []string{}
	}
	return out
}

// Extractor runs categorized skill extraction through a chain of LLM
// providers with a shared cache. Extract never returns an error: any
// failure in the LLM path yields an all-empty mapping.
type Extractor struct {
	providers []Provider
	cache     *Cache
	tmpl      *template.Template
	timeout   time.Duration
	logger    *slog.Logger
}

// NewExtractor creates an extractor trying providers in order. The
// first provider is the primary; the rest are fallbacks.
func NewExtractor(providers []Provider, cache *Cache, timeout time.Duration, logger *slog.Logger) *Extractor {
	return &Extractor{
		providers: providers,
		cache:     cache,
		tmpl:      SkillExtractionTemplate,
		timeout:   timeout,
		logger:    logger,
	}
}

// Available reports whether at least one provider is configured.
func (e *Extractor) Available() bool {
	return e != nil && len(e.providers) > 0
}

// Extract returns categorized skills for text along with the name of
// whatever served the call ("cache", a provider name, or "" when no
// provider produced a response). Identical leading text hits the cache
// and issues no provider call.
func (e *Extractor) Extract(ctx context.Context, text string) (map[string][]string, string) {
	if text == "" || !e.Available() {
		return EmptyResult(), ""
	}

	if len(text) > maxPromptChars {
		text = text[:maxPromptChars]
	}

	key := Fingerprint(text)
	if cached, ok := e.cache.Get(key); ok {
		return cached, "cache"
	}

	var promptBuf bytes.Buffer
	if err := e.tmpl.Execute(&promptBuf, struct{ Description string }{Description: text}); err != nil {
		e.logger.Error("render extraction prompt", "error", err)
		return EmptyResult(), ""
	}
	prompt := promptBuf.String()

	for _, p := range e.providers {
		raw, err := e.complete(ctx, p, prompt)
		if err != nil {
			e.logger.Warn("llm provider failed, trying next", "provider", p.Name(), "error", err)
			continue
		}

		skills, err := parseSkills(raw)
		if err != nil {
			// A provider answered but with garbage: this call yields an
			// all-empty result rather than escalating down the chain.
			e.logger.Warn("unparseable llm response", "provider", p.Name(), "error", err)
			return EmptyResult(), p.Name()
		}

		normalized := normalize(skills)
		e.cache.Put(key, normalized)
		return normalized, p.Name()
	}

	return EmptyResult(), ""
}

func (e *Extractor) complete(ctx context.Context, p Provider, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return p.Complete(callCtx, prompt)
}

// parseSkills deserializes the model response, tolerating code-fence
// wrappers and leading/trailing prose by slicing from the first "{" to
// the last "}".
func parseSkills(raw string) (map[string][]string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return nil, errors.New("no JSON object in response")
	}

	var skills map[string][]string
	if err := json.Unmarshal([]byte(raw[start:end+1]), &skills); err != nil {
		return nil, err
	}
	return skills, nil
}

// normalize lowercases, trims, and deduplicates skills, keeps only the
// known categories, and fills missing ones with empty lists.
func normalize(skills map[string][]string) map[string][]string {
	out := make(map[string][]string, len(llmCategories))
	for _, cat := range llmCategories {
		seen := make(map[string]bool)
		cleaned := []string{}
		for _, s := range skills[cat] {
			s = strings.ToLower(strings.TrimSpace(s))
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			cleaned = append(cleaned, s)
			if len(cleaned) == maxSkillsPerCategory {
				break
			}
		}
		out[cat] = cleaned
	}
	return out
}
