package question

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/skillforge/excel-interview/internal/domain"
)

//go:embed bank.yaml
var bankYAML []byte

type bankOpenEntry struct {
	Prompt   string   `yaml:"prompt"`
	Concepts []string `yaml:"concepts"`
}

type bankMCQEntry struct {
	Prompt  string   `yaml:"prompt"`
	Options []string `yaml:"options"`
	Correct string   `yaml:"correct"`
}

type bankSlot struct {
	Open bankOpenEntry `yaml:"open"`
	MCQ  bankMCQEntry  `yaml:"mcq"`
}

// bank maps area -> band -> slot. Parsed once at startup; a malformed
// embedded bank is a build defect, hence the panic.
var bank = mustLoadBank()

func mustLoadBank() map[domain.SkillArea]map[domain.DifficultyBand]bankSlot {
	var raw map[domain.SkillArea]map[domain.DifficultyBand]bankSlot
	if err := yaml.Unmarshal(bankYAML, &raw); err != nil {
		panic(fmt.Sprintf("question: invalid embedded bank: %v", err))
	}
	for _, area := range domain.SkillAreas {
		bands, ok := raw[area]
		if !ok {
			panic(fmt.Sprintf("question: embedded bank missing area %s", area))
		}
		for _, band := range []domain.DifficultyBand{domain.BandBeginner, domain.BandIntermediate, domain.BandAdvanced} {
			slot, ok := bands[band]
			if !ok || slot.Open.Prompt == "" || slot.MCQ.Prompt == "" {
				panic(fmt.Sprintf("question: embedded bank missing slot %s/%s", area, band))
			}
		}
	}
	return raw
}

// fromBank returns the canned question for the (area, band, format) slot.
// Selection is deterministic, so repeated fallbacks for the same slot are
// idempotent within a session.
func fromBank(area domain.SkillArea, difficulty float64, format domain.QuestionFormat) domain.Question {
	slot := bank[area][domain.BandForDifficulty(difficulty)]

	q := domain.Question{
		Area:       area,
		Difficulty: difficulty,
		Format:     format,
	}
	if format == domain.FormatMultipleChoice {
		q.Prompt = slot.MCQ.Prompt
		q.Options = append([]string(nil), slot.MCQ.Options...)
		q.CorrectLabel = slot.MCQ.Correct
		return q
	}
	q.Prompt = slot.Open.Prompt
	q.ExpectedConcepts = append([]string(nil), slot.Open.Concepts...)
	return q
}
