// Package question builds interview questions, delegating wording to the LLM
// gateway and falling back to an embedded canned bank when the gateway fails
// or returns an invalid payload.
package question

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/skillforge/excel-interview/internal/domain"
	"github.com/skillforge/excel-interview/internal/llm"
)

//go:embed prompt_open.md
var openPromptTemplate string

//go:embed prompt_mcq.md
var mcqPromptTemplate string

// topics feed the generation prompt and double as default expected concepts
// when the model omits them.
var topics = map[domain.SkillArea]map[domain.DifficultyBand][]string{
	domain.SkillFormulaBasic: {
		domain.BandBeginner:     {"SUM and AVERAGE", "COUNT functions", "cell references"},
		domain.BandIntermediate: {"IF statements", "CONCATENATE", "AND and OR"},
		domain.BandAdvanced:     {"nested IF statements", "text manipulation functions", "complex logical combinations"},
	},
	domain.SkillFormulaAdvanced: {
		domain.BandBeginner:     {"simple VLOOKUP", "basic INDEX and MATCH"},
		domain.BandIntermediate: {"VLOOKUP with approximate match", "nested lookup functions"},
		domain.BandAdvanced:     {"array formulas", "dynamic arrays", "complex nested functions"},
	},
	domain.SkillDataAnalysis: {
		domain.BandBeginner:     {"sorting data", "basic filtering", "simple formatting"},
		domain.BandIntermediate: {"advanced filters", "conditional formatting", "data validation"},
		domain.BandAdvanced:     {"complex conditional formatting", "data analysis tools", "repeatable data cleanup"},
	},
	domain.SkillPivotTables: {
		domain.BandBeginner:     {"creating basic pivot tables", "field arrangements"},
		domain.BandIntermediate: {"pivot table calculations", "grouping data", "pivot charts"},
		domain.BandAdvanced:     {"calculated fields", "slicers and timelines", "data model"},
	},
	domain.SkillCharts: {
		domain.BandBeginner:     {"basic chart creation", "chart type selection"},
		domain.BandIntermediate: {"chart formatting", "multiple data series", "secondary axes"},
		domain.BandAdvanced:     {"dashboard creation", "interactive visualizations", "advanced chart types"},
	},
}

const (
	minOptions    = 2
	maxOptions    = 6
	historyWindow = 3
)

// Generator produces questions for the orchestrator.
type Generator struct {
	gateway llm.Gateway
	logger  *zap.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(gateway llm.Gateway, logger *zap.Logger) *Generator {
	return &Generator{gateway: gateway, logger: logger}
}

// Generate builds a question for the given slot. It never fails: when the
// gateway errors out or the payload does not validate, the canned bank is
// used and degraded=true is returned.
func (g *Generator) Generate(ctx context.Context, area domain.SkillArea, difficulty float64, format domain.QuestionFormat, history []domain.Exchange) (domain.Question, bool) {
	prompt := g.buildPrompt(area, difficulty, format, history)

	raw, err := g.gateway.GenerateText(ctx, prompt)
	if err != nil {
		g.logger.Warn("question generation degraded to bank",
			zap.String("skill_area", string(area)),
			zap.String("format", string(format)),
			zap.Error(err),
		)
		return fromBank(area, difficulty, format), true
	}

	q, err := g.parse(raw, area, difficulty, format)
	if err != nil {
		g.logger.Warn("question payload rejected, using bank",
			zap.String("skill_area", string(area)),
			zap.String("format", string(format)),
			zap.Error(err),
		)
		return fromBank(area, difficulty, format), true
	}
	return q, false
}

func (g *Generator) buildPrompt(area domain.SkillArea, difficulty float64, format domain.QuestionFormat, history []domain.Exchange) string {
	band := domain.BandForDifficulty(difficulty)

	template := openPromptTemplate
	if format == domain.FormatMultipleChoice {
		template = mcqPromptTemplate
	}

	prompt := strings.ReplaceAll(template, "{{SKILL_AREA}}", area.Label())
	prompt = strings.ReplaceAll(prompt, "{{BAND}}", string(band))
	prompt = strings.ReplaceAll(prompt, "{{TOPICS}}", strings.Join(topics[area][band], ", "))
	prompt = strings.ReplaceAll(prompt, "{{HISTORY}}", historyDigest(history))
	return prompt
}

// historyDigest summarizes the last few prompts so the model avoids repeats.
func historyDigest(history []domain.Exchange) string {
	if len(history) == 0 {
		return "(none)"
	}
	start := len(history) - historyWindow
	if start < 0 {
		start = 0
	}
	var b strings.Builder
	for _, ex := range history[start:] {
		b.WriteString("- ")
		b.WriteString(truncate(ex.Question.Prompt, 120))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}

type generatedQuestion struct {
	Question         string   `json:"question"`
	Options          []string `json:"options"`
	CorrectAnswer    string   `json:"correct_answer"`
	ExpectedConcepts []string `json:"expected_concepts"`
}

func (g *Generator) parse(raw string, area domain.SkillArea, difficulty float64, format domain.QuestionFormat) (domain.Question, error) {
	var payload generatedQuestion
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &payload); err != nil {
		return domain.Question{}, fmt.Errorf("decode question payload: %w", err)
	}
	if strings.TrimSpace(payload.Question) == "" {
		return domain.Question{}, fmt.Errorf("empty question text")
	}

	q := domain.Question{
		Area:       area,
		Difficulty: difficulty,
		Format:     format,
		Prompt:     strings.TrimSpace(payload.Question),
	}

	if format == domain.FormatMultipleChoice {
		correct := strings.ToUpper(strings.TrimSpace(payload.CorrectAnswer))
		if err := validateOptions(payload.Options, correct); err != nil {
			return domain.Question{}, err
		}
		q.Options = payload.Options
		q.CorrectLabel = correct
		return q, nil
	}

	q.ExpectedConcepts = payload.ExpectedConcepts
	if len(q.ExpectedConcepts) == 0 {
		q.ExpectedConcepts = topics[area][domain.BandForDifficulty(difficulty)]
	}
	return q, nil
}

// validateOptions enforces the MCQ contract: 2-6 options, each with a
// distinct leading label, and the correct label present among them.
func validateOptions(options []string, correct string) error {
	if len(options) < minOptions || len(options) > maxOptions {
		return fmt.Errorf("expected %d-%d options, got %d", minOptions, maxOptions, len(options))
	}
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		label := OptionLabel(opt)
		if label == "" {
			return fmt.Errorf("option %q has no leading label", opt)
		}
		if seen[label] {
			return fmt.Errorf("duplicate option label %q", label)
		}
		seen[label] = true
	}
	if correct == "" || !seen[correct] {
		return fmt.Errorf("correct answer %q not among option labels", correct)
	}
	return nil
}

// OptionLabel extracts the leading choice label from an option such as
// "B) =SUM(A1:A10)". Returns "" when the option carries no label.
func OptionLabel(option string) string {
	s := strings.TrimSpace(option)
	if len(s) < 2 {
		return ""
	}
	c := s[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c > 'Z' {
		return ""
	}
	switch s[1] {
	case ')', '.', ':':
		return string(c)
	}
	return ""
}
