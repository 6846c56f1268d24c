// Package domain defines the core domain model for the interview service.
package domain

import "strings"

// SkillArea identifies one of the spreadsheet proficiency areas under assessment.
type SkillArea string

const (
	SkillFormulaBasic    SkillArea = "formula_basic"
	SkillFormulaAdvanced SkillArea = "formula_advanced"
	SkillDataAnalysis    SkillArea = "data_analysis"
	SkillPivotTables     SkillArea = "pivot_tables"
	SkillCharts          SkillArea = "charts_visualization"
)

// SkillAreas is the fixed rotation order used when selecting the next area.
var SkillAreas = []SkillArea{
	SkillFormulaBasic,
	SkillFormulaAdvanced,
	SkillDataAnalysis,
	SkillPivotTables,
	SkillCharts,
}

// skillWeights are the fixed domain weights used for the overall score.
var skillWeights = map[SkillArea]float64{
	SkillFormulaBasic:    0.25,
	SkillFormulaAdvanced: 0.25,
	SkillDataAnalysis:    0.20,
	SkillPivotTables:     0.15,
	SkillCharts:          0.15,
}

// Weight returns the domain weight of the skill area, or 0 for unknown areas.
func (s SkillArea) Weight() float64 {
	return skillWeights[s]
}

// Label returns a human readable name, e.g. "formula basic".
func (s SkillArea) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// QuestionFormat is the presentation format of a question.
type QuestionFormat string

const (
	FormatOpenEnded      QuestionFormat = "open_ended"
	FormatMultipleChoice QuestionFormat = "multiple_choice"
)

// SessionState represents the lifecycle state of an interview session.
type SessionState string

const (
	SessionActive   SessionState = "ACTIVE"
	SessionComplete SessionState = "COMPLETE"
)

// PositionLevel is the level the candidate declared when starting.
type PositionLevel string

const (
	LevelBeginner     PositionLevel = "beginner"
	LevelIntermediate PositionLevel = "intermediate"
	LevelAdvanced     PositionLevel = "advanced"
)

// ParsePositionLevel validates a declared level coming from the transport.
func ParsePositionLevel(s string) (PositionLevel, bool) {
	switch PositionLevel(s) {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return PositionLevel(s), true
	}
	return "", false
}

// BaselineDifficulty maps the declared level to the starting difficulty
// applied to every skill area.
func (l PositionLevel) BaselineDifficulty() float64 {
	switch l {
	case LevelBeginner:
		return 0.2
	case LevelAdvanced:
		return 0.8
	default:
		return 0.5
	}
}

// DifficultyBand buckets a continuous difficulty into beginner/intermediate/advanced.
type DifficultyBand string

const (
	BandBeginner     DifficultyBand = "beginner"
	BandIntermediate DifficultyBand = "intermediate"
	BandAdvanced     DifficultyBand = "advanced"
)

// BandForDifficulty maps a 0-1 difficulty to its coarse band.
func BandForDifficulty(d float64) DifficultyBand {
	switch {
	case d < 0.4:
		return BandBeginner
	case d <= 0.7:
		return BandIntermediate
	default:
		return BandAdvanced
	}
}
