// Package evaluator scores candidate answers. Multiple choice answers are
// scored locally and never sent to the gateway; open-ended answers go through
// the gateway with a keyword heuristic as fallback.
package evaluator

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/skillforge/excel-interview/internal/domain"
	"github.com/skillforge/excel-interview/internal/llm"
	"github.com/skillforge/excel-interview/internal/question"
)

//go:embed prompt_eval.md
var evalPromptTemplate string

// Rubric weights for the four sub-scores.
const (
	weightTechnical    = 0.40
	weightCompleteness = 0.25
	weightPractical    = 0.25
	weightClarity      = 0.10
	neutralSubScore    = 5.0 // conservative default, not a quality judgement
	maxSubScore        = 10.0
)

// Evaluator scores answers against the question that prompted them.
type Evaluator struct {
	gateway llm.Gateway
	logger  *zap.Logger
}

// New creates an Evaluator.
func New(gateway llm.Gateway, logger *zap.Logger) *Evaluator {
	return &Evaluator{gateway: gateway, logger: logger}
}

// Evaluate scores the answer. It never fails: gateway problems degrade to the
// local heuristic and are flagged on the returned answer.
func (e *Evaluator) Evaluate(ctx context.Context, q *domain.Question, answer string) domain.ScoredAnswer {
	if q.Format == domain.FormatMultipleChoice {
		return e.evaluateMCQ(q, answer)
	}
	return e.evaluateOpenEnded(ctx, q, answer)
}

// evaluateMCQ is deterministic and binary: the submitted label either matches
// the correct one or it does not.
func (e *Evaluator) evaluateMCQ(q *domain.Question, answer string) domain.ScoredAnswer {
	label := extractLabel(answer, q.Options)
	correct := label != "" && label == q.CorrectLabel

	score := 0.0
	feedback := fmt.Sprintf("Incorrect. The correct answer was %s. This %s question tests fundamental knowledge.", q.CorrectLabel, q.Area.Label())
	if correct {
		score = 1.0
		feedback = fmt.Sprintf("Correct! You selected the right answer for this %s question.", q.Area.Label())
	} else if label == "" {
		feedback = fmt.Sprintf("No answer choice could be identified in your response. The correct answer was %s.", q.CorrectLabel)
	}

	sub := score * maxSubScore
	return domain.ScoredAnswer{
		Answer: answer,
		Scores: domain.SubScores{
			TechnicalAccuracy:      sub,
			Completeness:           sub,
			PracticalUnderstanding: sub,
			Clarity:                sub,
		},
		Weighted: score,
		Feedback: feedback,
	}
}

func (e *Evaluator) evaluateOpenEnded(ctx context.Context, q *domain.Question, answer string) domain.ScoredAnswer {
	prompt := strings.ReplaceAll(evalPromptTemplate, "{{QUESTION}}", q.Prompt)
	prompt = strings.ReplaceAll(prompt, "{{CONCEPTS}}", strings.Join(q.ExpectedConcepts, ", "))
	prompt = strings.ReplaceAll(prompt, "{{ANSWER}}", answer)

	raw, err := e.gateway.EvaluateText(ctx, prompt)
	if err != nil {
		e.logger.Warn("evaluation degraded to heuristic",
			zap.String("skill_area", string(q.Area)),
			zap.Error(err),
		)
		return e.heuristic(q, answer)
	}

	scored, err := parseEvaluation(raw, answer)
	if err != nil {
		e.logger.Warn("evaluation payload rejected, using heuristic",
			zap.String("skill_area", string(q.Area)),
			zap.Error(err),
		)
		return e.heuristic(q, answer)
	}
	return scored
}

type evaluationPayload struct {
	TechnicalAccuracy      float64 `json:"technical_accuracy"`
	Completeness           float64 `json:"completeness"`
	PracticalUnderstanding float64 `json:"practical_understanding"`
	Clarity                float64 `json:"communication_clarity"`
	Feedback               string  `json:"feedback"`
}

func parseEvaluation(raw, answer string) (domain.ScoredAnswer, error) {
	var payload evaluationPayload
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &payload); err != nil {
		return domain.ScoredAnswer{}, fmt.Errorf("decode evaluation payload: %w", err)
	}

	scores := domain.SubScores{
		TechnicalAccuracy:      clampSub(payload.TechnicalAccuracy),
		Completeness:           clampSub(payload.Completeness),
		PracticalUnderstanding: clampSub(payload.PracticalUnderstanding),
		Clarity:                clampSub(payload.Clarity),
	}

	feedback := strings.TrimSpace(payload.Feedback)
	if feedback == "" {
		feedback = "Thank you for your answer."
	}

	return domain.ScoredAnswer{
		Answer:   answer,
		Scores:   scores,
		Weighted: WeightedScore(scores),
		Feedback: feedback,
	}, nil
}

// heuristic is the local fallback scorer: technical accuracy reflects how
// many expected concepts the answer mentions, the remaining dimensions stay
// neutral. A conservative approximation, not a quality evaluation.
func (e *Evaluator) heuristic(q *domain.Question, answer string) domain.ScoredAnswer {
	technical := neutralSubScore
	if len(q.ExpectedConcepts) > 0 {
		lower := strings.ToLower(answer)
		matched := 0
		for _, concept := range q.ExpectedConcepts {
			if strings.Contains(lower, strings.ToLower(concept)) {
				matched++
			}
		}
		technical = float64(matched) / float64(len(q.ExpectedConcepts)) * maxSubScore
	}

	scores := domain.SubScores{
		TechnicalAccuracy:      technical,
		Completeness:           neutralSubScore,
		PracticalUnderstanding: neutralSubScore,
		Clarity:                neutralSubScore,
	}

	return domain.ScoredAnswer{
		Answer:   answer,
		Scores:   scores,
		Weighted: WeightedScore(scores),
		Feedback: fmt.Sprintf("Thank you for your answer on %s. A reviewer will weigh the details of your explanation.", q.Area.Label()),
		Degraded: true,
	}
}

// WeightedScore combines the four sub-scores into the 0-1 rubric score.
func WeightedScore(s domain.SubScores) float64 {
	w := s.TechnicalAccuracy/maxSubScore*weightTechnical +
		s.Completeness/maxSubScore*weightCompleteness +
		s.PracticalUnderstanding/maxSubScore*weightPractical +
		s.Clarity/maxSubScore*weightClarity
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

func clampSub(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > maxSubScore {
		return maxSubScore
	}
	return v
}

var labelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^([A-F])[).:\s]`),
	regexp.MustCompile(`^([A-F])$`),
	regexp.MustCompile(`OPTION\s+([A-F])\b`),
	regexp.MustCompile(`ANSWER\s+(?:IS\s+)?([A-F])\b`),
}

// extractLabel pulls the selected choice label out of a free-text answer.
// Only labels actually present in the question's options count; when nothing
// matches, "" is returned and the answer scores as incorrect.
func extractLabel(answer string, options []string) string {
	valid := make(map[string]bool, len(options))
	for _, opt := range options {
		if l := question.OptionLabel(opt); l != "" {
			valid[l] = true
		}
	}

	upper := strings.ToUpper(strings.TrimSpace(answer))
	for _, pattern := range labelPatterns {
		if m := pattern.FindStringSubmatch(upper); m != nil && valid[m[1]] {
			return m[1]
		}
	}

	// Last resort: a single standalone valid letter anywhere in the answer.
	fields := strings.FieldsFunc(upper, func(r rune) bool {
		return r < 'A' || r > 'Z'
	})
	for _, f := range fields {
		if len(f) == 1 && valid[f] {
			return f
		}
	}
	return ""
}
