package score

import (
	"math"
	"testing"

	"fdescout/internal/model"
)

func skillsWith(counts map[string]int) model.SkillSet {
	s := model.EmptySkillSet()
	for cat, n := range counts {
		for i := 0; i < n; i++ {
			s[cat] = append(s[cat], string(rune('a'+i)))
		}
	}
	return s
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRelevance_FDETitleBase(t *testing.T) {
	got := Relevance("Forward Deployed Engineer", model.EmptySkillSet())
	if !almostEqual(got, 0.5) {
		t.Errorf("Relevance = %v, want exactly 0.5", got)
	}
}

func TestRelevance_NoMatchScoresZero(t *testing.T) {
	got := Relevance("Staff Accountant", model.EmptySkillSet())
	if got != 0.0 {
		t.Errorf("Relevance = %v, want 0.0", got)
	}
}

func TestRelevance_LadderOrder(t *testing.T) {
	cases := []struct {
		title string
		want  float64
	}{
		{"Forward Deployed Engineer", 0.5},
		{"FDE - AI Platform", 0.5},
		{"Solutions Engineer", 0.4},
		{"Field Engineer", 0.3},
		{"Implementation Specialist", 0.3},
		{"Customer Engineer", 0.25},
	}
	for _, tc := range cases {
		if got := Relevance(tc.title, model.EmptySkillSet()); !almostEqual(got, tc.want) {
			t.Errorf("Relevance(%q) = %v, want %v", tc.title, got, tc.want)
		}
	}
}

func TestRelevance_HighestRungWins(t *testing.T) {
	// Title matching both "forward deploy" and "solutions engineer"
	// takes the higher rung only.
	got := Relevance("Forward Deployed Solutions Engineer", model.EmptySkillSet())
	if !almostEqual(got, 0.5) {
		t.Errorf("Relevance = %v, want 0.5", got)
	}
}

func TestRelevance_SkillBonusesAreCapped(t *testing.T) {
	skills := skillsWith(map[string]int{
		model.CategoryAIML:    10, // 0.5 uncapped -> 0.25
		model.CategoryProgram: 20, // 0.4 uncapped -> 0.15
		model.CategoryCloud:   20, // 0.4 uncapped -> 0.10
	})
	got := Relevance("Staff Accountant", skills)
	if !almostEqual(got, 0.5) {
		t.Errorf("Relevance = %v, want 0.5 (0.25+0.15+0.10)", got)
	}
}

func TestRelevance_NeverExceedsOne(t *testing.T) {
	skills := skillsWith(map[string]int{
		model.CategoryAIML:    26,
		model.CategoryProgram: 26,
		model.CategoryCloud:   26,
	})
	got := Relevance("Forward Deployed Engineer", skills)
	if got > 1.0 {
		t.Errorf("Relevance = %v, want <= 1.0", got)
	}
	if !almostEqual(got, 1.0) {
		t.Errorf("Relevance = %v, want clamped to 1.0", got)
	}
}

func TestRelevance_PartialBonus(t *testing.T) {
	skills := skillsWith(map[string]int{model.CategoryAIML: 2})
	got := Relevance("Solutions Engineer", skills)
	if !almostEqual(got, 0.5) { // 0.4 + 2*0.05
		t.Errorf("Relevance = %v, want 0.5", got)
	}
}
