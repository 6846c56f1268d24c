package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skillforge/excel-interview/internal/evaluator"
	"github.com/skillforge/excel-interview/internal/feedback"
	"github.com/skillforge/excel-interview/internal/interview"
	"github.com/skillforge/excel-interview/internal/llm"
	"github.com/skillforge/excel-interview/internal/question"
	"github.com/skillforge/excel-interview/internal/session"
)

func newTestServer(t *testing.T) *echo.Echo {
	return newTestServerWith(t, llm.NewFailingGateway(llm.ErrUnavailable))
}

func newTestServerWith(t *testing.T, gateway llm.Gateway) *echo.Echo {
	t.Helper()
	logger := zap.NewNop()

	store := session.NewStore(time.Hour, logger)
	t.Cleanup(store.Close)

	orchestrator := interview.New(
		store,
		question.NewGenerator(gateway, logger),
		evaluator.New(gateway, logger),
		feedback.NewGenerator(gateway, logger),
		gateway,
		logger,
	)

	e := echo.New()
	NewHandler(orchestrator).RegisterRoutes(e)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestStartInterview(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/interviews",
		`{"candidate_name": "Asha", "position_level": "beginner"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		SessionID      string `json:"session_id"`
		WelcomeMessage string `json:"welcome_message"`
		Question       struct {
			Text   string `json:"text"`
			Format string `json:"format"`
		} `json:"question"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.SessionID)
	assert.Contains(t, resp.WelcomeMessage, "Asha")
	assert.NotEmpty(t, resp.Question.Text)
	assert.Equal(t, "open_ended", resp.Question.Format)
}

func TestStartInterviewDefaultsLevel(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/interviews", `{"candidate_name": "Asha"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestStartInterviewValidation(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty name", `{"candidate_name": "", "position_level": "beginner"}`},
		{"blank name", `{"candidate_name": "   "}`},
		{"unknown level", `{"candidate_name": "Asha", "position_level": "wizard"}`},
		{"malformed body", `{"candidate_name": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/v1/interviews", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid_input")
		})
	}
}

func TestSubmitAnswerUnknownSession(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/interviews/nope/answers", `{"answer": "A"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "session_not_found")
}

func TestStatusUnknownSession(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/v1/interviews/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInterviewFlow(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/interviews",
		`{"candidate_name": "Asha", "position_level": "intermediate"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var start struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &start))

	answersPath := fmt.Sprintf("/v1/interviews/%s/answers", start.SessionID)

	var last struct {
		FeedbackMessage  string           `json:"feedback_message"`
		IsComplete       bool             `json:"is_complete"`
		AssessmentResult *json.RawMessage `json:"assessment_result"`
	}
	for i := 0; i < 12; i++ {
		rec := doJSON(e, http.MethodPost, answersPath, `{"answer": "B"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &last))

		assert.NotEmpty(t, last.FeedbackMessage)
		if last.IsComplete {
			break
		}
	}

	require.True(t, last.IsComplete, "interview never completed")
	require.NotNil(t, last.AssessmentResult)
	assert.Contains(t, string(*last.AssessmentResult), "overall_score")

	// Further answers are rejected without mutating the session.
	rec = doJSON(e, http.MethodPost, answersPath, `{"answer": "B"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "session_already_complete")

	// The final report stays available through status.
	rec = doJSON(e, http.MethodGet, "/v1/interviews/"+start.SessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		State            string           `json:"state"`
		Answered         int              `json:"questions_answered"`
		AssessmentResult *json.RawMessage `json:"assessment_result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "COMPLETE", status.State)
	assert.GreaterOrEqual(t, status.Answered, 8)
	assert.NotNil(t, status.AssessmentResult)
}

// blockingGateway fails generation so questions come from the bank, and
// holds every evaluation until released, keeping the session lock occupied.
type blockingGateway struct {
	evaluating chan struct{}
	release    chan struct{}
}

var _ llm.Gateway = (*blockingGateway)(nil)

func (g *blockingGateway) GenerateText(ctx context.Context, prompt string) (string, error) {
	return "", llm.ErrUnavailable
}

func (g *blockingGateway) EvaluateText(ctx context.Context, prompt string) (string, error) {
	g.evaluating <- struct{}{}
	<-g.release
	return "", llm.ErrUnavailable
}

func TestConcurrentSubmitRejectedAsBusy(t *testing.T) {
	gateway := &blockingGateway{
		evaluating: make(chan struct{}),
		release:    make(chan struct{}),
	}
	e := newTestServerWith(t, gateway)

	rec := doJSON(e, http.MethodPost, "/v1/interviews",
		`{"candidate_name": "Asha", "position_level": "intermediate"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var start struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &start))
	answersPath := fmt.Sprintf("/v1/interviews/%s/answers", start.SessionID)

	// The first question is open-ended, so this submit parks inside the
	// gateway with the session lock held.
	first := make(chan *httptest.ResponseRecorder)
	go func() {
		first <- doJSON(e, http.MethodPost, answersPath, `{"answer": "I would use SUM."}`)
	}()
	<-gateway.evaluating

	rec = doJSON(e, http.MethodPost, answersPath, `{"answer": "second attempt"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "session_busy")

	close(gateway.release)
	rec = <-first
	assert.Equal(t, http.StatusOK, rec.Code, "held submit must still complete normally")
}

func TestAnswersNeverLeakCorrectLabel(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/interviews",
		`{"candidate_name": "Asha", "position_level": "intermediate"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var start struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &start))

	answersPath := fmt.Sprintf("/v1/interviews/%s/answers", start.SessionID)
	for i := 0; i < 12; i++ {
		rec := doJSON(e, http.MethodPost, answersPath, `{"answer": "A"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "correct_label")
		assert.NotContains(t, rec.Body.String(), "expected_concepts")

		var resp struct {
			IsComplete bool `json:"is_complete"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		if resp.IsComplete {
			break
		}
	}
}
