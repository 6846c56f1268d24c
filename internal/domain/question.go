package domain

import "time"

// Question is a single interview question. Immutable once created.
type Question struct {
	Area       SkillArea      `json:"skill_area"`
	Difficulty float64        `json:"difficulty"`
	Format     QuestionFormat `json:"format"`
	Prompt     string         `json:"prompt"`

	// Options holds the labeled choices ("A) ...") for multiple choice
	// questions and is empty otherwise.
	Options []string `json:"options,omitempty"`

	// CorrectLabel is the correct choice label for multiple choice questions.
	CorrectLabel string `json:"-"`

	// ExpectedConcepts lists the keywords the evaluator looks for in
	// open-ended answers.
	ExpectedConcepts []string `json:"-"`

	AskedAt time.Time `json:"asked_at"`
}

// SubScores are the four evaluation dimensions, each on a 0-10 scale.
type SubScores struct {
	TechnicalAccuracy      float64 `json:"technical_accuracy"`
	Completeness           float64 `json:"completeness"`
	PracticalUnderstanding float64 `json:"practical_understanding"`
	Clarity                float64 `json:"communication_clarity"`
}

// ScoredAnswer is the evaluated response to one question. Immutable once
// appended to the session history.
type ScoredAnswer struct {
	Answer   string    `json:"answer"`
	Scores   SubScores `json:"scores"`
	Weighted float64   `json:"weighted_score"` // 0.0 - 1.0
	Feedback string    `json:"feedback"`

	// Degraded marks answers scored by the local fallback instead of the
	// gateway. Internal observability only, never shown to the candidate.
	Degraded bool `json:"-"`
}

// Exchange pairs a question with its scored answer. Answer is nil while the
// question is still outstanding.
type Exchange struct {
	Question Question      `json:"question"`
	Answer   *ScoredAnswer `json:"answer,omitempty"`
}
