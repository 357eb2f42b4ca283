// Package score computes how relevant a posting is to a Forward
// Deployed Engineer search.
package score

import (
	"strings"

	"fdescout/internal/model"
)

// titleLadder is checked in order; the first matching rung sets the
// base score.
var titleLadder = []struct {
	phrases []string
	points  float64
}{
	{[]string{"forward deploy", "fde"}, 0.5},
	{[]string{"solutions engineer"}, 0.4},
	{[]string{"field engineer", "implementation"}, 0.3},
	{[]string{"customer engineer"}, 0.25},
}

// Relevance scores a posting from its title and extracted skills.
// The result is clamped to [0, 1]; all terms are non-negative so no
// floor is needed.
func Relevance(title string, skills model.SkillSet) float64 {
	score := titleScore(title)

	score += bonus(skills.Count(model.CategoryAIML), 0.05, 0.25)
	score += bonus(skills.Count(model.CategoryProgram), 0.02, 0.15)
	score += bonus(skills.Count(model.CategoryCloud), 0.02, 0.10)

	if score > 1.0 {
		return 1.0
	}
	return score
}

func titleScore(title string) float64 {
	lower := strings.ToLower(title)
	for _, rung := range titleLadder {
		for _, p := range rung.phrases {
			if strings.Contains(lower, p) {
				return rung.points
			}
		}
	}
	return 0.0
}

// bonus awards per-skill points up to a cap.
func bonus(count int, perSkill, limit float64) float64 {
	b := float64(count) * perSkill
	if b > limit {
		return limit
	}
	return b
}
