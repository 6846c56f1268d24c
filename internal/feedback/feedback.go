// Package feedback aggregates a finished session into the final assessment
// report. Scoring is pure local arithmetic; only the narrative prose involves
// the gateway, with a template fallback.
package feedback

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skillforge/excel-interview/internal/domain"
	"github.com/skillforge/excel-interview/internal/llm"
)

//go:embed prompt_summary.md
var summaryPromptTemplate string

// midpoint separates per-skill strengths from gaps in the narrative.
const midpoint = 0.6

// Generator builds assessment reports.
type Generator struct {
	gateway llm.Gateway
	logger  *zap.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(gateway llm.Gateway, logger *zap.Logger) *Generator {
	return &Generator{gateway: gateway, logger: logger}
}

// Summarize produces the final report for a session. It never fails; when
// the gateway is unavailable the narrative comes from local templates.
func (g *Generator) Summarize(ctx context.Context, s *domain.Session) *domain.AssessmentResult {
	overall := OverallScore(s)

	result := &domain.AssessmentResult{
		OverallScore: overall,
		OverallLevel: domain.LevelForScore(overall),
		Skills:       skillAssessments(s),
		GeneratedAt:  time.Now(),
	}

	prose, degraded := g.narrative(ctx, s, result)
	if degraded {
		g.logger.Warn("assessment narrative degraded to templates",
			zap.String("session_id", s.ID),
		)
	}
	result.KeyStrengths = prose.KeyStrengths
	result.Recommendations = prose.Recommendations
	result.NextSteps = prose.NextSteps
	result.InterviewSummary = prose.Summary

	return result
}

// OverallScore is the weighted average across skill areas, with weights
// renormalized over the areas actually asked. An area with no questions
// contributes to neither numerator nor denominator, so short coverage is not
// silently penalized as a zero score.
func OverallScore(s *domain.Session) float64 {
	num, den := 0.0, 0.0
	for _, area := range domain.SkillAreas {
		score, asked := s.AreaScore(area)
		if !asked {
			continue
		}
		num += score * area.Weight()
		den += area.Weight()
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func skillAssessments(s *domain.Session) []domain.SkillAssessment {
	var out []domain.SkillAssessment
	for _, area := range domain.SkillAreas {
		score, asked := s.AreaScore(area)
		if !asked {
			continue
		}
		sa := domain.SkillAssessment{
			Area:  area,
			Score: score,
			Level: domain.LevelForScore(score),
		}
		if score >= midpoint {
			sa.Strengths = []string{
				fmt.Sprintf("Solid command of %s", area.Label()),
				fmt.Sprintf("Scored %.0f%% across %s questions", score*100, area.Label()),
			}
			sa.Gaps = []string{
				fmt.Sprintf("Explore advanced %s scenarios", area.Label()),
			}
		} else {
			sa.Strengths = []string{
				fmt.Sprintf("Engaged with the %s questions", area.Label()),
			}
			sa.Gaps = []string{
				fmt.Sprintf("Review %s fundamentals", area.Label()),
				fmt.Sprintf("Practice hands-on %s exercises", area.Label()),
			}
		}
		out = append(out, sa)
	}
	return out
}

type narrativeProse struct {
	KeyStrengths    []string
	Recommendations []string
	NextSteps       []string
	Summary         string
}

type narrativePayload struct {
	KeyStrengths    []string `json:"key_strengths"`
	Recommendations []string `json:"improvement_recommendations"`
	NextSteps       []string `json:"next_steps"`
	Summary         string   `json:"interview_summary"`
}

// narrative asks the gateway once for prose; degraded=true means templates
// were used instead.
func (g *Generator) narrative(ctx context.Context, s *domain.Session, result *domain.AssessmentResult) (narrativeProse, bool) {
	prompt := g.buildPrompt(s, result)

	raw, err := g.gateway.GenerateText(ctx, prompt)
	if err != nil {
		return fallbackNarrative(s, result), true
	}

	var payload narrativePayload
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &payload); err != nil {
		return fallbackNarrative(s, result), true
	}
	if len(payload.KeyStrengths) == 0 || len(payload.Recommendations) == 0 ||
		len(payload.NextSteps) == 0 || strings.TrimSpace(payload.Summary) == "" {
		return fallbackNarrative(s, result), true
	}

	return narrativeProse{
		KeyStrengths:    payload.KeyStrengths,
		Recommendations: payload.Recommendations,
		NextSteps:       payload.NextSteps,
		Summary:         strings.TrimSpace(payload.Summary),
	}, false
}

func (g *Generator) buildPrompt(s *domain.Session, result *domain.AssessmentResult) string {
	strongest, weakest := extremeAreas(result.Skills)

	var scores strings.Builder
	for _, sa := range result.Skills {
		fmt.Fprintf(&scores, "- %s: %.0f%% (%s)\n", sa.Area.Label(), sa.Score*100, sa.Level)
	}

	prompt := strings.ReplaceAll(summaryPromptTemplate, "{{CANDIDATE}}", s.CandidateName)
	prompt = strings.ReplaceAll(prompt, "{{LEVEL}}", string(s.DeclaredLevel))
	prompt = strings.ReplaceAll(prompt, "{{OVERALL}}", fmt.Sprintf("%.0f%%", result.OverallScore*100))
	prompt = strings.ReplaceAll(prompt, "{{OVERALL_LEVEL}}", string(result.OverallLevel))
	prompt = strings.ReplaceAll(prompt, "{{STRONGEST}}", strongest)
	prompt = strings.ReplaceAll(prompt, "{{WEAKEST}}", weakest)
	prompt = strings.ReplaceAll(prompt, "{{SCORES}}", strings.TrimRight(scores.String(), "\n"))
	return prompt
}

func extremeAreas(skills []domain.SkillAssessment) (strongest, weakest string) {
	strongest, weakest = "general", "general"
	if len(skills) == 0 {
		return
	}
	hi, lo := skills[0], skills[0]
	for _, sa := range skills[1:] {
		if sa.Score > hi.Score {
			hi = sa
		}
		if sa.Score < lo.Score {
			lo = sa
		}
	}
	return hi.Area.Label(), lo.Area.Label()
}

// fallbackNarrative fills fixed sentence templates with the candidate's
// actual numbers so even the degraded path stays performance-specific.
func fallbackNarrative(s *domain.Session, result *domain.AssessmentResult) narrativeProse {
	strongest, weakest := extremeAreas(result.Skills)
	pct := result.OverallScore * 100

	switch {
	case result.OverallScore >= 0.8:
		return narrativeProse{
			KeyStrengths: []string{
				fmt.Sprintf("Demonstrated expert-level spreadsheet knowledge with a %.0f%% overall score", pct),
				fmt.Sprintf("Excelled in %s with strong technical answers", strongest),
				"Provided detailed, accurate explanations showing deep understanding",
			},
			Recommendations: []string{
				"Continue exploring advanced features and automation",
				fmt.Sprintf("Round out %s, the relatively weakest area", weakest),
				"Consider mentoring others to consolidate this expertise",
			},
			NextSteps: []string{
				"Pursue an advanced spreadsheet or data analysis certification",
				"Take on complex analysis projects that exercise these skills",
			},
			Summary: fmt.Sprintf("%s demonstrated exceptional proficiency with a %.0f%% overall score (%s level), performing strongest in %s.",
				s.CandidateName, pct, result.OverallLevel, strongest),
		}
	case result.OverallScore >= 0.5:
		return narrativeProse{
			KeyStrengths: []string{
				fmt.Sprintf("Solid working knowledge with a %.0f%% overall score", pct),
				fmt.Sprintf("Strongest performance in %s", strongest),
			},
			Recommendations: []string{
				fmt.Sprintf("Focus practice on %s, the weakest area this session", weakest),
				"Work through multi-step scenarios to build depth",
			},
			NextSteps: []string{
				"Take an intermediate-to-advanced structured course",
				fmt.Sprintf("Practice %s tasks on real datasets", weakest),
			},
			Summary: fmt.Sprintf("%s showed solid proficiency with a %.0f%% overall score (%s level); %s stood out while %s needs attention.",
				s.CandidateName, pct, result.OverallLevel, strongest, weakest),
		}
	default:
		return narrativeProse{
			KeyStrengths: []string{
				"Engaged with every question in the assessment",
				fmt.Sprintf("Best results came in %s", strongest),
			},
			Recommendations: []string{
				"Start with fundamentals: formulas, references and basic analysis",
				fmt.Sprintf("Give extra attention to %s", weakest),
				"Practice daily with small, concrete exercises",
			},
			NextSteps: []string{
				"Complete a beginner spreadsheet tutorial series",
				"Rebuild common reports by hand to cement the basics",
			},
			Summary: fmt.Sprintf("%s scored %.0f%% overall (%s level); the results point to fundamental gaps, with %s as the best starting point to build on.",
				s.CandidateName, pct, result.OverallLevel, strongest),
		}
	}
}
