package interview

import "github.com/skillforge/excel-interview/internal/domain"

// Policy constants. The termination floor requires minQuestions answers with
// minMCQ multiple choice among the first mcqWindow questions and full area
// coverage; the ceiling forces termination unconditionally.
const (
	minQuestions = 8
	maxQuestions = 12
	minMCQ       = 5
	mcqWindow    = 8

	difficultyStep  = 0.1
	difficultyFloor = 0.1
	difficultyCeil  = 1.0
	raiseThreshold  = 0.8
	lowerThreshold  = 0.4
)

// NextDifficulty applies the bounded per-answer walk for one skill area.
// The walk reacts to the single most recent score; there is no streak
// requirement.
func NextDifficulty(current, score float64) float64 {
	switch {
	case score > raiseThreshold:
		if d := current + difficultyStep; d < difficultyCeil {
			return d
		}
		return difficultyCeil
	case score < lowerThreshold:
		if d := current - difficultyStep; d > difficultyFloor {
			return d
		}
		return difficultyFloor
	default:
		return current
	}
}

// ShouldTerminate evaluates the termination policy after an answer has been
// recorded.
func ShouldTerminate(s *domain.Session) bool {
	answered := s.AnsweredCount()
	if answered >= maxQuestions {
		return true
	}
	if answered < minQuestions {
		return false
	}
	if s.FormatCounts[domain.FormatMultipleChoice] < minMCQ {
		return false
	}
	for _, count := range s.AreaAskedCounts() {
		if count == 0 {
			return false
		}
	}
	return true
}

// NextArea selects the skill area with the fewest questions asked so far,
// breaking ties by domain weight descending and then by rotation order.
func NextArea(s *domain.Session) domain.SkillArea {
	counts := s.AreaAskedCounts()

	best := domain.SkillAreas[0]
	for _, area := range domain.SkillAreas[1:] {
		if counts[area] < counts[best] {
			best = area
			continue
		}
		if counts[area] == counts[best] && area.Weight() > best.Weight() {
			best = area
		}
	}
	return best
}

// NextFormat picks the next question's format. Multiple choice is forced
// whenever the remaining slots in the first mcqWindow questions are needed to
// reach the minMCQ quota; otherwise formats are balanced, with open-ended
// winning ties.
func NextFormat(s *domain.Session) domain.QuestionFormat {
	asked := s.AskedCount()
	mcq := s.FormatCounts[domain.FormatMultipleChoice]

	if need := minMCQ - mcq; need > 0 && mcqWindow-asked <= need {
		return domain.FormatMultipleChoice
	}
	if mcq < asked-mcq {
		return domain.FormatMultipleChoice
	}
	return domain.FormatOpenEnded
}
