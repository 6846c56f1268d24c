// Package llm provides the gateway abstraction over the external LLM service.
//
// The gateway is the only component allowed to talk to the model provider.
// Callers treat it as two opaque capabilities, text generation and answer
// evaluation, and must be prepared for either to fail: every call site keeps
// a deterministic local fallback.
package llm

import (
	"context"
	"errors"
	"strings"
)

// Error classes the gateway reports. Callers treat both the same way (take
// the fallback path); the split exists for logging.
var (
	// ErrUnavailable covers transport failures, timeouts and non-2xx replies.
	ErrUnavailable = errors.New("llm gateway unavailable")

	// ErrMalformed covers replies that cannot be decoded or fail validation.
	ErrMalformed = errors.New("llm gateway returned malformed response")
)

// Gateway is the capability boundary to the external LLM.
type Gateway interface {
	// GenerateText produces free-form text for the given prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// EvaluateText produces a structured (JSON) evaluation for the given
	// prompt. Implementations use a low temperature for stable scoring.
	EvaluateText(ctx context.Context, prompt string) (string, error)
}

// ExtractJSON strips the markdown code fences models sometimes wrap around
// JSON payloads.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
