package domain

import "time"

// Session is the complete mutable state of one candidate's interview. It is
// owned by the session store; the orchestrator mutates it under the store's
// per-session lock and must leave it internally consistent.
type Session struct {
	ID            string        `json:"session_id"`
	CandidateName string        `json:"candidate_name"`
	DeclaredLevel PositionLevel `json:"position_level"`
	State         SessionState  `json:"state"`
	CreatedAt     time.Time     `json:"created_at"`

	// History is append-only; insertion order is interview order.
	History []Exchange `json:"history"`

	// AreaScores accumulates normalized 0-1 scores per skill area.
	AreaScores map[SkillArea][]float64 `json:"area_scores"`

	// Difficulty is the current per-area difficulty, kept inside [0.1, 1.0].
	Difficulty map[SkillArea]float64 `json:"difficulty"`

	// FormatCounts tracks how many questions were asked per format.
	FormatCounts map[QuestionFormat]int `json:"format_counts"`

	// Result is set once, when the session transitions to COMPLETE.
	Result *AssessmentResult `json:"assessment_result,omitempty"`
}

// NewSession creates an ACTIVE session with baseline difficulty for every
// skill area and zeroed accumulators.
func NewSession(id, candidateName string, level PositionLevel) *Session {
	difficulty := make(map[SkillArea]float64, len(SkillAreas))
	for _, area := range SkillAreas {
		difficulty[area] = level.BaselineDifficulty()
	}
	return &Session{
		ID:            id,
		CandidateName: candidateName,
		DeclaredLevel: level,
		State:         SessionActive,
		CreatedAt:     time.Now(),
		AreaScores:    make(map[SkillArea][]float64, len(SkillAreas)),
		Difficulty:    difficulty,
		FormatCounts:  make(map[QuestionFormat]int, 2),
	}
}

// CurrentQuestion returns the most recently issued question, or nil when the
// history is empty or the last question is already answered.
func (s *Session) CurrentQuestion() *Question {
	if len(s.History) == 0 {
		return nil
	}
	last := &s.History[len(s.History)-1]
	if last.Answer != nil {
		return nil
	}
	return &last.Question
}

// RecordQuestion appends a new outstanding question and bumps the format counter.
func (s *Session) RecordQuestion(q Question) {
	s.History = append(s.History, Exchange{Question: q})
	s.FormatCounts[q.Format]++
}

// RecordAnswer attaches the scored answer to the outstanding question and
// updates the area accumulator.
func (s *Session) RecordAnswer(a ScoredAnswer) {
	last := &s.History[len(s.History)-1]
	last.Answer = &a
	area := last.Question.Area
	s.AreaScores[area] = append(s.AreaScores[area], a.Weighted)
}

// AnsweredCount returns how many questions have been answered.
func (s *Session) AnsweredCount() int {
	n := 0
	for _, ex := range s.History {
		if ex.Answer != nil {
			n++
		}
	}
	return n
}

// AskedCount returns how many questions have been issued.
func (s *Session) AskedCount() int {
	return len(s.History)
}

// AreaAskedCounts returns the number of questions issued per skill area,
// including areas never asked (count zero).
func (s *Session) AreaAskedCounts() map[SkillArea]int {
	counts := make(map[SkillArea]int, len(SkillAreas))
	for _, area := range SkillAreas {
		counts[area] = 0
	}
	for _, ex := range s.History {
		counts[ex.Question.Area]++
	}
	return counts
}

// AreaScore returns the mean of the accumulated scores for the area and
// whether the area was assessed at all.
func (s *Session) AreaScore(area SkillArea) (float64, bool) {
	scores := s.AreaScores[area]
	if len(scores) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range scores {
		sum += v
	}
	return sum / float64(len(scores)), true
}
