// Package v1 provides the HTTP handlers for the interview API.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skillforge/excel-interview/internal/domain"
	"github.com/skillforge/excel-interview/internal/interview"
)

// Handler handles HTTP requests.
type Handler struct {
	orchestrator *interview.Orchestrator
}

// NewHandler creates a new handler.
func NewHandler(orchestrator *interview.Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

// RegisterRoutes registers the interview routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/interviews", h.StartInterview)
	e.POST("/v1/interviews/:session_id/answers", h.SubmitAnswer)
	e.GET("/v1/interviews/:session_id", h.GetStatus)
	e.GET("/healthz", h.Health)
}

type startRequest struct {
	CandidateName string `json:"candidate_name"`
	PositionLevel string `json:"position_level"`
}

type questionPayload struct {
	Text    string   `json:"text"`
	Format  string   `json:"format"`
	Options []string `json:"options,omitempty"`
}

type startResponse struct {
	SessionID      string          `json:"session_id"`
	WelcomeMessage string          `json:"welcome_message"`
	Question       questionPayload `json:"question"`
}

// StartInterview starts a new interview session.
// POST /v1/interviews
func (h *Handler) StartInterview(c echo.Context) error {
	var req startRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid_input", "malformed request body")
	}
	if req.PositionLevel == "" {
		req.PositionLevel = string(domain.LevelIntermediate)
	}

	result, err := h.orchestrator.Start(c.Request().Context(), req.CandidateName, req.PositionLevel)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, startResponse{
		SessionID:      result.SessionID,
		WelcomeMessage: result.Welcome,
		Question:       toQuestionPayload(&result.Question),
	})
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type answerResponse struct {
	FeedbackMessage  string                   `json:"feedback_message"`
	Question         *questionPayload         `json:"question,omitempty"`
	IsComplete       bool                     `json:"is_complete"`
	AssessmentResult *domain.AssessmentResult `json:"assessment_result,omitempty"`
}

// SubmitAnswer submits an answer for the session's outstanding question.
// POST /v1/interviews/:session_id/answers
func (h *Handler) SubmitAnswer(c echo.Context) error {
	var req answerRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid_input", "malformed request body")
	}

	result, err := h.orchestrator.Submit(c.Request().Context(), c.Param("session_id"), req.Answer)
	if err != nil {
		return mapDomainError(c, err)
	}

	resp := answerResponse{
		FeedbackMessage:  result.Feedback,
		IsComplete:       result.Complete,
		AssessmentResult: result.Result,
	}
	if result.Question != nil {
		q := toQuestionPayload(result.Question)
		resp.Question = &q
	}
	return c.JSON(http.StatusOK, resp)
}

// GetStatus returns session progress, including the final assessment once
// the interview is complete.
// GET /v1/interviews/:session_id
func (h *Handler) GetStatus(c echo.Context) error {
	status, err := h.orchestrator.Status(c.Param("session_id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(http.StatusOK, status)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func toQuestionPayload(q *domain.Question) questionPayload {
	return questionPayload{
		Text:    q.Prompt,
		Format:  string(q.Format),
		Options: q.Options,
	}
}

// mapDomainError translates core error kinds to status codes. The candidate
// never sees raw gateway errors; anything unrecognized is a 500.
func mapDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return errorJSON(c, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		return errorJSON(c, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, domain.ErrSessionComplete):
		return errorJSON(c, http.StatusConflict, "session_already_complete", err.Error())
	case errors.Is(err, domain.ErrSessionBusy):
		return errorJSON(c, http.StatusConflict, "session_busy", err.Error())
	default:
		return errorJSON(c, http.StatusInternalServerError, "internal", "internal error")
	}
}

func errorJSON(c echo.Context, status int, kind, message string) error {
	return c.JSON(status, map[string]string{
		"error":   kind,
		"message": message,
	})
}
