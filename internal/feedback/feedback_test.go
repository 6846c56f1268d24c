package feedback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skillforge/excel-interview/internal/domain"
	"github.com/skillforge/excel-interview/internal/llm"
)

func recordScore(sess *domain.Session, area domain.SkillArea, score float64) {
	sess.RecordQuestion(domain.Question{Area: area, Format: domain.FormatOpenEnded, Prompt: "q"})
	sess.RecordAnswer(domain.ScoredAnswer{Answer: "a", Weighted: score})
}

func TestOverallScoreRenormalizesWeights(t *testing.T) {
	sess := domain.NewSession("s", "Asha", domain.LevelIntermediate)
	recordScore(sess, domain.SkillFormulaBasic, 1.0)
	recordScore(sess, domain.SkillFormulaAdvanced, 0.5)
	// charts_visualization never asked: its 0.15 weight must drop out.

	// (1.0*0.25 + 0.5*0.25) / (0.25 + 0.25)
	assert.InDelta(t, 0.75, OverallScore(sess), 1e-9)
}

func TestOverallScoreEmptySession(t *testing.T) {
	sess := domain.NewSession("s", "Asha", domain.LevelIntermediate)
	assert.Zero(t, OverallScore(sess))
}

func TestOverallScoreAveragesWithinArea(t *testing.T) {
	sess := domain.NewSession("s", "Asha", domain.LevelIntermediate)
	recordScore(sess, domain.SkillPivotTables, 1.0)
	recordScore(sess, domain.SkillPivotTables, 0.0)

	assert.InDelta(t, 0.5, OverallScore(sess), 1e-9)
}

func fullSession() *domain.Session {
	sess := domain.NewSession("s", "Asha", domain.LevelIntermediate)
	scores := map[domain.SkillArea]float64{
		domain.SkillFormulaBasic:    0.9,
		domain.SkillFormulaAdvanced: 0.7,
		domain.SkillDataAnalysis:    0.8,
		domain.SkillPivotTables:     0.4,
		domain.SkillCharts:          0.6,
	}
	for _, area := range domain.SkillAreas {
		recordScore(sess, area, scores[area])
	}
	return sess
}

func TestSummarizeWithScriptedNarrative(t *testing.T) {
	gateway := llm.NewMockGateway(`{
		"key_strengths": ["Excellent formula knowledge"],
		"improvement_recommendations": ["Practice pivot tables"],
		"next_steps": ["Take an advanced course"],
		"interview_summary": "Asha performed well overall."
	}`)
	g := NewGenerator(gateway, zap.NewNop())

	result := g.Summarize(context.Background(), fullSession())
	require.NotNil(t, result)

	assert.Equal(t, []string{"Excellent formula knowledge"}, result.KeyStrengths)
	assert.Equal(t, "Asha performed well overall.", result.InterviewSummary)
	assert.Len(t, result.Skills, len(domain.SkillAreas))
	assert.Equal(t, domain.LevelForScore(result.OverallScore), result.OverallLevel)
	assert.False(t, result.GeneratedAt.IsZero())
}

func TestSummarizeFallsBackOnGatewayFailure(t *testing.T) {
	g := NewGenerator(llm.NewFailingGateway(llm.ErrUnavailable), zap.NewNop())

	result := g.Summarize(context.Background(), fullSession())
	require.NotNil(t, result)

	assert.NotEmpty(t, result.KeyStrengths)
	assert.NotEmpty(t, result.Recommendations)
	assert.NotEmpty(t, result.NextSteps)
	assert.Contains(t, result.InterviewSummary, "Asha")
}

func TestSummarizeFallsBackOnIncompletePayload(t *testing.T) {
	gateway := llm.NewMockGateway(`{"key_strengths": ["only strengths, nothing else"]}`)
	g := NewGenerator(gateway, zap.NewNop())

	result := g.Summarize(context.Background(), fullSession())
	assert.NotEmpty(t, result.NextSteps, "incomplete payload must fall back to templates")
	assert.NotEmpty(t, result.InterviewSummary)
}

func TestSkillAssessmentsSplitStrengthsAndGaps(t *testing.T) {
	sess := domain.NewSession("s", "Asha", domain.LevelIntermediate)
	recordScore(sess, domain.SkillFormulaBasic, 0.9)
	recordScore(sess, domain.SkillPivotTables, 0.3)

	skills := skillAssessments(sess)
	require.Len(t, skills, 2)

	strong := skills[0]
	assert.Equal(t, domain.SkillFormulaBasic, strong.Area)
	assert.Equal(t, domain.ProficiencyExpert, strong.Level)
	assert.Len(t, strong.Strengths, 2)

	weak := skills[1]
	assert.Equal(t, domain.SkillPivotTables, weak.Area)
	assert.Equal(t, domain.ProficiencyBeginner, weak.Level)
	assert.Len(t, weak.Gaps, 2)
}

func TestExtremeAreas(t *testing.T) {
	strongest, weakest := extremeAreas(nil)
	assert.Equal(t, "general", strongest)
	assert.Equal(t, "general", weakest)

	skills := []domain.SkillAssessment{
		{Area: domain.SkillFormulaBasic, Score: 0.4},
		{Area: domain.SkillCharts, Score: 0.9},
		{Area: domain.SkillPivotTables, Score: 0.2},
	}
	strongest, weakest = extremeAreas(skills)
	assert.Equal(t, "charts visualization", strongest)
	assert.Equal(t, "pivot tables", weakest)
}
