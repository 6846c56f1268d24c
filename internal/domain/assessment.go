package domain

import "time"

// ProficiencyLevel is a coarse rating derived from a 0-1 score. The same
// thresholds apply to the overall score and to each skill area.
type ProficiencyLevel string

const (
	ProficiencyBeginner     ProficiencyLevel = "Beginner"
	ProficiencyIntermediate ProficiencyLevel = "Intermediate"
	ProficiencyAdvanced     ProficiencyLevel = "Advanced"
	ProficiencyExpert       ProficiencyLevel = "Expert"
)

// LevelForScore maps a 0-1 score to its proficiency level.
func LevelForScore(score float64) ProficiencyLevel {
	switch {
	case score < 0.40:
		return ProficiencyBeginner
	case score < 0.70:
		return ProficiencyIntermediate
	case score < 0.85:
		return ProficiencyAdvanced
	default:
		return ProficiencyExpert
	}
}

// SkillAssessment is the per-area portion of the final report.
type SkillAssessment struct {
	Area      SkillArea        `json:"skill_area"`
	Score     float64          `json:"score"`
	Level     ProficiencyLevel `json:"level"`
	Strengths []string         `json:"strengths"`
	Gaps      []string         `json:"areas_for_improvement"`
}

// AssessmentResult is the final report produced at session completion.
// Created once, never mutated afterward.
type AssessmentResult struct {
	OverallScore     float64           `json:"overall_score"`
	OverallLevel     ProficiencyLevel  `json:"overall_level"`
	Skills           []SkillAssessment `json:"skill_assessments"`
	KeyStrengths     []string          `json:"key_strengths"`
	Recommendations  []string          `json:"improvement_recommendations"`
	NextSteps        []string          `json:"next_steps"`
	InterviewSummary string            `json:"interview_summary"`
	GeneratedAt      time.Time         `json:"generated_at"`
}
