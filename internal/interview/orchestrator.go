// Package interview contains the orchestrator: the state machine that
// sequences questions, adapts difficulty, decides termination and assembles
// the final assessment.
package interview

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skillforge/excel-interview/internal/domain"
	"github.com/skillforge/excel-interview/internal/evaluator"
	"github.com/skillforge/excel-interview/internal/feedback"
	"github.com/skillforge/excel-interview/internal/llm"
	"github.com/skillforge/excel-interview/internal/question"
	"github.com/skillforge/excel-interview/internal/session"
)

//go:embed prompt_welcome.md
var welcomePromptTemplate string

// Orchestrator drives interview sessions. All session mutation happens under
// the store's per-session lock, held for the full submit including gateway
// calls, so every session a caller can observe is internally consistent.
type Orchestrator struct {
	store     *session.Store
	questions *question.Generator
	answers   *evaluator.Evaluator
	reports   *feedback.Generator
	gateway   llm.Gateway
	logger    *zap.Logger
}

// New creates an Orchestrator.
func New(store *session.Store, questions *question.Generator, answers *evaluator.Evaluator, reports *feedback.Generator, gateway llm.Gateway, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		questions: questions,
		answers:   answers,
		reports:   reports,
		gateway:   gateway,
		logger:    logger,
	}
}

// StartResult is returned by Start.
type StartResult struct {
	SessionID string
	Welcome   string
	Question  domain.Question
}

// SubmitResult is returned by Submit. Question is nil and Result non-nil
// exactly when Complete is true.
type SubmitResult struct {
	Feedback string
	Question *domain.Question
	Complete bool
	Result   *domain.AssessmentResult
}

// Start creates a session and issues the first question.
func (o *Orchestrator) Start(ctx context.Context, candidateName, positionLevel string) (*StartResult, error) {
	candidateName = strings.TrimSpace(candidateName)
	if candidateName == "" {
		return nil, fmt.Errorf("%w: candidate name must not be empty", domain.ErrInvalidInput)
	}
	level, ok := domain.ParsePositionLevel(positionLevel)
	if !ok {
		return nil, fmt.Errorf("%w: unknown position level %q", domain.ErrInvalidInput, positionLevel)
	}

	sess := domain.NewSession(uuid.NewString(), candidateName, level)

	// The session is not yet registered, so no lock is needed here.
	gwCtx := context.WithoutCancel(ctx)
	welcome := o.welcomeMessage(gwCtx, sess)

	area := NextArea(sess)
	format := NextFormat(sess)
	q, degraded := o.questions.Generate(gwCtx, area, sess.Difficulty[area], format, sess.History)
	q.AskedAt = time.Now()
	sess.RecordQuestion(q)

	o.store.Create(sess)

	o.logger.Info("interview started",
		zap.String("session_id", sess.ID),
		zap.String("position_level", string(level)),
		zap.String("first_area", string(area)),
		zap.Bool("degraded", degraded),
	)

	return &StartResult{SessionID: sess.ID, Welcome: welcome, Question: q}, nil
}

// Submit evaluates an answer and either issues the next question or
// completes the interview with a final assessment.
func (o *Orchestrator) Submit(ctx context.Context, sessionID, answer string) (*SubmitResult, error) {
	sess, release, err := o.store.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	if sess.State == domain.SessionComplete {
		return nil, domain.ErrSessionComplete
	}

	q := sess.CurrentQuestion()
	if q == nil {
		// Construction rules guarantee an outstanding question on every
		// active session; reaching this is a programming error.
		return nil, fmt.Errorf("session %s has no outstanding question", sessionID)
	}

	// Detached from the caller: a dropped client must not cancel the
	// evaluation mid-mutation. The gateway client enforces its own timeout.
	gwCtx := context.WithoutCancel(ctx)

	scored := o.answers.Evaluate(gwCtx, q, answer)
	sess.RecordAnswer(scored)
	sess.Difficulty[q.Area] = NextDifficulty(sess.Difficulty[q.Area], scored.Weighted)

	if scored.Degraded {
		o.logger.Warn("degraded exchange recorded",
			zap.String("session_id", sess.ID),
			zap.String("skill_area", string(q.Area)),
		)
	}

	if ShouldTerminate(sess) {
		sess.State = domain.SessionComplete
		sess.Result = o.reports.Summarize(gwCtx, sess)

		o.logger.Info("interview complete",
			zap.String("session_id", sess.ID),
			zap.Int("questions", sess.AnsweredCount()),
			zap.Float64("overall_score", sess.Result.OverallScore),
		)

		return &SubmitResult{
			Feedback: scored.Feedback,
			Complete: true,
			Result:   sess.Result,
		}, nil
	}

	area := NextArea(sess)
	format := NextFormat(sess)
	next, degraded := o.questions.Generate(gwCtx, area, sess.Difficulty[area], format, sess.History)
	next.AskedAt = time.Now()
	sess.RecordQuestion(next)

	o.logger.Info("question issued",
		zap.String("session_id", sess.ID),
		zap.String("skill_area", string(area)),
		zap.String("format", string(format)),
		zap.Float64("difficulty", next.Difficulty),
		zap.Bool("degraded", degraded),
	)

	return &SubmitResult{Feedback: scored.Feedback, Question: &next}, nil
}

// Status describes a session's progress.
type Status struct {
	SessionID      string                   `json:"session_id"`
	CandidateName  string                   `json:"candidate_name"`
	PositionLevel  domain.PositionLevel     `json:"position_level"`
	State          domain.SessionState      `json:"state"`
	Asked          int                      `json:"questions_asked"`
	Answered       int                      `json:"questions_answered"`
	MultipleChoice int                      `json:"mcq_asked"`
	AreasCovered   []domain.SkillArea       `json:"areas_covered"`
	Result         *domain.AssessmentResult `json:"assessment_result,omitempty"`
}

// Status returns a snapshot of the session's progress, including the final
// result once complete.
func (o *Orchestrator) Status(sessionID string) (*Status, error) {
	sess, release, err := o.store.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	covered := make([]domain.SkillArea, 0, len(domain.SkillAreas))
	counts := sess.AreaAskedCounts()
	for _, area := range domain.SkillAreas {
		if counts[area] > 0 {
			covered = append(covered, area)
		}
	}

	return &Status{
		SessionID:      sess.ID,
		CandidateName:  sess.CandidateName,
		PositionLevel:  sess.DeclaredLevel,
		State:          sess.State,
		Asked:          sess.AskedCount(),
		Answered:       sess.AnsweredCount(),
		MultipleChoice: sess.FormatCounts[domain.FormatMultipleChoice],
		AreasCovered:   covered,
		Result:         sess.Result,
	}, nil
}

func (o *Orchestrator) welcomeMessage(ctx context.Context, sess *domain.Session) string {
	prompt := strings.ReplaceAll(welcomePromptTemplate, "{{CANDIDATE}}", sess.CandidateName)
	prompt = strings.ReplaceAll(prompt, "{{LEVEL}}", string(sess.DeclaredLevel))

	raw, err := o.gateway.GenerateText(ctx, prompt)
	if err != nil {
		o.logger.Warn("welcome message degraded to template",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		return fmt.Sprintf("Welcome, %s! This assessment asks 8-12 spreadsheet questions that adapt to your answers. Take your time and explain your reasoning as you go.", sess.CandidateName)
	}

	msg := strings.TrimSpace(raw)
	if strings.HasPrefix(msg, `"`) && strings.HasSuffix(msg, `"`) && len(msg) > 1 {
		msg = msg[1 : len(msg)-1]
	}
	return msg
}
