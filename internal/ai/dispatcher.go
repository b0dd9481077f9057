package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/justicebuddy/justicebuddy/internal/models"
)

// ErrUnsupportedProvider signals that the active_ai_model setting names
// a provider that is not registered. This is a configuration fault, not
// something to silently default away.
var ErrUnsupportedProvider = errors.New("unsupported AI model")

// ActiveModelKey is the setting that selects the provider for every call.
const ActiveModelKey = "active_ai_model"

// DefaultModel is assumed when the setting has never been written.
const DefaultModel = "chatgpt"

// SettingsStore is the slice of the settings layer the dispatcher needs.
type SettingsStore interface {
	GetString(key, def string) string
	GetBool(key string, def bool) bool
	SetValue(key string, value any, typ, group, description string) error
}

// RequestStore covers the letter request transitions and the template
// lookup used while processing.
type RequestStore interface {
	GetActiveTemplate(id int64) (*models.LetterTemplate, error)
	MarkRequestProcessing(id int64) error
	MarkRequestCompleted(id int64, letter, documentPath string) error
	MarkRequestFailed(id int64, message string) error
}

// ArtifactWriter persists a completed letter as a document artifact and
// returns its relative path.
type ArtifactWriter interface {
	WriteLetter(requestID, provider, content string) (string, error)
}

// Dispatcher routes generation, chat, and processing calls to the
// provider named by the active_ai_model setting. It keeps no state of
// its own: the setting is re-read on every call so an admin switch
// takes effect immediately for subsequent requests.
type Dispatcher struct {
	providers map[string]Provider
	names     map[string]string // provider key -> display name
	settings  SettingsStore
	requests  RequestStore
	artifacts ArtifactWriter
}

func NewDispatcher(settings SettingsStore, requests RequestStore, artifacts ArtifactWriter, chatgpt, gemini Provider) *Dispatcher {
	return &Dispatcher{
		providers: map[string]Provider{
			chatgpt.Name(): chatgpt,
			gemini.Name():  gemini,
		},
		names: map[string]string{
			"chatgpt": "ChatGPT (OpenAI)",
			"gemini":  "Gemini (Google)",
		},
		settings:  settings,
		requests:  requests,
		artifacts: artifacts,
	}
}

// ActiveModel returns the provider key currently selected in settings.
func (d *Dispatcher) ActiveModel() string {
	return d.settings.GetString(ActiveModelKey, DefaultModel)
}

// resolve re-reads the active model setting and returns its provider.
func (d *Dispatcher) resolve() (Provider, error) {
	key := d.ActiveModel()
	p, ok := d.providers[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, key)
	}
	return p, nil
}

// GenerateLetter routes a one-off letter generation to the active provider.
func (d *Dispatcher) GenerateLetter(ctx context.Context, template *models.LetterTemplate, clientMatters map[string]any) (LetterResult, error) {
	p, err := d.resolve()
	if err != nil {
		return LetterResult{}, err
	}

	slog.Info("Generating letter", "model", p.Name(), "template_id", template.ID)
	return p.GenerateLetter(ctx, template, clientMatters), nil
}

// GenerateChatResponse routes a chat turn to the active provider.
// Vendor failures propagate to the caller.
func (d *Dispatcher) GenerateChatResponse(ctx context.Context, conversation []Message) (string, error) {
	p, err := d.resolve()
	if err != nil {
		return "", err
	}

	slog.Info("Generating chat response", "model", p.Name())
	return p.GenerateChatResponse(ctx, conversation)
}

// ProcessLetterRequest runs one full pipeline pass: processing
// transition, vendor call, artifact write, terminal transition. Every
// exit path lands the request in a terminal state; a deferred finalizer
// converts panics and early returns into a failed transition so no
// request is ever left in processing.
func (d *Dispatcher) ProcessLetterRequest(ctx context.Context, request *models.LetterRequest) error {
	p, err := d.resolve()
	if err != nil {
		msg := fmt.Sprintf("Unsupported AI model configured: %s", d.ActiveModel())
		if ferr := d.requests.MarkRequestFailed(request.ID, msg); ferr != nil {
			slog.Error("Failed to record unsupported-model failure", "request_id", request.RequestID, "error", ferr)
		}
		return err
	}

	slog.Info("Processing letter request", "request_id", request.RequestID, "model", p.Name())

	terminal := false
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic while processing letter request", "request_id", request.RequestID, "panic", r)
		}
		if !terminal {
			msg := "An error occurred while processing your request"
			if ferr := d.requests.MarkRequestFailed(request.ID, msg); ferr != nil {
				slog.Error("Failed to record failure", "request_id", request.RequestID, "error", ferr)
			}
		}
	}()

	if err := d.requests.MarkRequestProcessing(request.ID); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	template, err := d.requests.GetActiveTemplate(request.TemplateID)
	if err != nil {
		msg := fmt.Sprintf("Letter template %d is not available", request.TemplateID)
		terminal = d.requests.MarkRequestFailed(request.ID, msg) == nil
		return fmt.Errorf("load template: %w", err)
	}

	result := p.GenerateLetter(ctx, template, request.ClientMatters)
	if !result.Success {
		terminal = d.requests.MarkRequestFailed(request.ID, result.Err) == nil
		return nil
	}

	documentPath := ""
	if d.settings.GetBool("generate_document", true) {
		path, err := d.artifacts.WriteLetter(request.RequestID, p.Name(), result.Content)
		if err != nil {
			// The letter text survives without the file artifact.
			slog.Error("Failed to write letter artifact", "request_id", request.RequestID, "error", err)
		} else {
			documentPath = path
		}
	}

	if err := d.requests.MarkRequestCompleted(request.ID, result.Content, documentPath); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	terminal = true

	slog.Info("Letter request completed", "request_id", request.RequestID, "model", p.Name())
	return nil
}

// AvailableModels enumerates the supported providers.
func (d *Dispatcher) AvailableModels() map[string]string {
	out := make(map[string]string, len(d.names))
	for k, v := range d.names {
		out[k] = v
	}
	return out
}

// SwitchModel validates and persists a new active provider. An unknown
// key returns false without side effects; it is a validation result,
// not a fault.
func (d *Dispatcher) SwitchModel(key string) bool {
	if _, ok := d.providers[key]; !ok {
		return false
	}

	if err := d.settings.SetValue(ActiveModelKey, key, models.SettingString, "ai",
		"Currently active AI model (chatgpt or gemini)"); err != nil {
		slog.Error("Failed to persist model switch", "model", key, "error", err)
		return false
	}

	slog.Info("AI model switched", "model", key)
	return true
}

// TestModel probes one provider with a canned conversation. Vendor
// errors are always captured in the result, never raised.
func (d *Dispatcher) TestModel(ctx context.Context, key string) TestResult {
	p, ok := d.providers[key]
	if !ok {
		return TestResult{Success: false, Err: fmt.Sprintf("Unsupported AI model: %s", key), Model: key}
	}

	response, err := p.GenerateChatResponse(ctx, []Message{
		{Role: "user", Content: `Hello, this is a test. Please respond with "Test successful".`},
	})
	if err != nil {
		return TestResult{Success: false, Err: err.Error(), Model: key}
	}
	return TestResult{Success: true, Response: response, Model: key}
}
