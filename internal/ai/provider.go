package ai

import (
	"context"

	"github.com/justicebuddy/justicebuddy/internal/models"
)

// Provider is the interface both AI vendors implement. Adding a vendor
// means one implementation plus one registry entry in the dispatcher.
type Provider interface {
	// Name returns the provider key, "chatgpt" or "gemini".
	Name() string

	// GenerateLetter builds the letter prompt and performs one bounded
	// call to the vendor API. Failures are captured in the result,
	// never returned as an error.
	GenerateLetter(ctx context.Context, template *models.LetterTemplate, clientMatters map[string]any) LetterResult

	// GenerateChatResponse sends a conversation and returns the
	// assistant's reply. Unlike GenerateLetter, failures propagate to
	// the caller.
	GenerateChatResponse(ctx context.Context, conversation []Message) (string, error)
}

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// LetterResult is the outcome of one letter generation attempt.
type LetterResult struct {
	Success bool
	Content string
	Err     string
	Model   string
}

// TestResult reports the outcome of a provider liveness probe.
type TestResult struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Err      string `json:"error,omitempty"`
	Model    string `json:"model"`
}
