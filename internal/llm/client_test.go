package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skillforge/excel-interview/internal/config"
)

func completionBody(content string) string {
	resp := map[string]any{
		"id": "chatcmpl-test",
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestGenerateText(t *testing.T) {
	var gotAuth string
	var gotReq chatCompletionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(completionBody("  hello there  ")))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", "gpt-4o-mini", time.Second, zap.NewNop())

	out, err := c.GenerateText(context.Background(), "say hello")
	require.NoError(t, err)
	assert.Equal(t, "hello there", out, "completion content is trimmed")
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	assert.InDelta(t, 0.7, gotReq.Temperature, 1e-9)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "say hello", gotReq.Messages[0].Content)
}

func TestGenerateTextWithVersionedBaseURL(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(completionBody("ok")))
	}))
	defer srv.Close()

	// Base URLs configured with the /v1 suffix must not double it.
	c := NewClient(srv.URL+"/v1", "", "gpt-4o-mini", time.Second, zap.NewNop())

	_, err := c.GenerateText(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "/v1/chat/completions", gotPath)
}

func TestNewClientNormalizesDefaultBaseURL(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	c := NewClient(v.GetString("llm.base_url"), "", "gpt-4o-mini", time.Second, zap.NewNop())
	assert.False(t, strings.HasSuffix(c.baseURL, "/v1"),
		"default base URL must not duplicate the versioned request path")
	assert.False(t, strings.HasSuffix(c.baseURL, "/"))
}

func TestEvaluateTextUsesLowTemperature(t *testing.T) {
	var gotReq chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(completionBody(`{"score": 5}`)))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "gpt-4o-mini", time.Second, zap.NewNop())

	_, err := c.EvaluateText(context.Background(), "score this")
	require.NoError(t, err)
	assert.InDelta(t, 0.2, gotReq.Temperature, 1e-9)
}

func TestCompleteErrorClasses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"api error payload", http.StatusTooManyRequests, `{"error": {"message": "rate limited", "type": "rate_limit"}}`, ErrUnavailable},
		{"plain 500", http.StatusInternalServerError, "boom", ErrUnavailable},
		{"undecodable body", http.StatusOK, "not json", ErrMalformed},
		{"no choices", http.StatusOK, `{"id": "x", "choices": []}`, ErrMalformed},
		{"empty content", http.StatusOK, completionBody("   "), ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "", "gpt-4o-mini", time.Second, zap.NewNop())

			_, err := c.GenerateText(context.Background(), "prompt")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCompleteConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, "", "gpt-4o-mini", time.Second, zap.NewNop())

	_, err := c.GenerateText(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"padded", "  {\"a\": 1}\n", `{"a": 1}`},
		{"unterminated fence", "```json\n{\"a\": 1}", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestMockGatewayScript(t *testing.T) {
	m := NewMockGateway("one", "two")

	out, err := m.GenerateText(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "one", out)

	out, _ = m.EvaluateText(context.Background(), "p")
	assert.Equal(t, "two", out)

	// Last response repeats once the script is exhausted.
	out, _ = m.GenerateText(context.Background(), "p")
	assert.Equal(t, "two", out)
	assert.Equal(t, 3, m.Calls)
}
