// Package llm abstracts the hosted generative text providers used for lead
// search and sales coaching.
package llm

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
)

// Provider names.
const (
	ProviderGemini     = "gemini"
	ProviderAnthropic  = "anthropic"
	ProviderPerplexity = "perplexity"
)

// ErrUnauthorized means the provider rejected the configured credential.
// Retrying cannot succeed.
var ErrUnauthorized = eris.New("llm: credential rejected")

// Provider generates text from a prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Request is one generation call.
type Request struct {
	// System is an optional system instruction.
	System string
	// Prompt is the user message. Ignored when Messages is set.
	Prompt string
	// Messages is an optional multi-turn conversation, oldest first.
	Messages []Message
	// WebSearch asks the provider to ground the answer on live web results.
	WebSearch bool
	// Temperature overrides the provider default when non-nil.
	Temperature *float64
	// JSON asks for a JSON-only reply where the provider supports it.
	JSON bool
	// MaxTokens caps the reply length; 0 uses the provider default.
	MaxTokens int
	// Operation labels the call in logs and metrics.
	Operation string
}

// Message is one turn of a conversation.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Turns returns the conversation to send, falling back to a single user turn
// built from Prompt.
func (r Request) Turns() []Message {
	if len(r.Messages) > 0 {
		return r.Messages
	}
	return []Message{{Role: "user", Content: r.Prompt}}
}

// Response is the provider reply.
type Response struct {
	Text    string
	Sources []model.GroundingSource
	Usage   Usage
}

// Usage reports token consumption.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Temperature returns a pointer to t for Request.Temperature.
func Temperature(t float64) *float64 { return &t }

// Unauthorized wraps cause as a permanent ErrUnauthorized error.
func Unauthorized(provider string, status int, cause error) error {
	err := eris.Wrapf(ErrUnauthorized, "%s: %v", provider, cause)
	return resilience.NewPermanentError(err, status)
}

// IsUnauthorized reports whether err is a rejected-credential error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
