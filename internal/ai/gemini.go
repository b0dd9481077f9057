package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/justicebuddy/justicebuddy/internal/config"
	"github.com/justicebuddy/justicebuddy/internal/models"
)

// Gemini API request/response types (unexported).

type geminiRequest struct {
	Contents         []geminiContent       `json:"contents"`
	GenerationConfig *geminiGenConfig      `json:"generationConfig,omitempty"`
	SafetySettings   []geminiSafetySetting `json:"safetySettings,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	TopK            int     `json:"topK,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

// defaultSafetySettings blocks medium-and-above harmful content in all
// four harm categories.
var defaultSafetySettings = []geminiSafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// GeminiProvider implements Provider for Google's Gemini API.
type GeminiProvider struct {
	cfg        config.VendorConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewGeminiProvider creates a Gemini-backed provider.
func NewGeminiProvider(cfg config.VendorConfig) *GeminiProvider {
	return &GeminiProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		now:        time.Now,
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) GenerateLetter(ctx context.Context, template *models.LetterTemplate, clientMatters map[string]any) LetterResult {
	prompt := BuildLetterPrompt(template, clientMatters, p.now())

	content, err := p.generate(ctx, prompt)
	if err != nil {
		slog.Error("Gemini letter generation failed", "template_id", template.ID, "model", p.cfg.Model, "error", err)
		return LetterResult{Success: false, Err: err.Error(), Model: p.cfg.Model}
	}

	return LetterResult{Success: true, Content: content, Model: p.cfg.Model}
}

func (p *GeminiProvider) GenerateChatResponse(ctx context.Context, conversation []Message) (string, error) {
	content, err := p.generate(ctx, messagesToPrompt(conversation))
	if err != nil {
		slog.Error("Gemini chat request failed", "model", p.cfg.Model, "error", err)
		return "", err
	}
	return content, nil
}

// generate performs one generateContent call and returns the response text.
func (p *GeminiProvider) generate(ctx context.Context, prompt string) (string, error) {
	if p.cfg.APIKey == "" {
		return "", fmt.Errorf("gemini API key not configured")
	}

	body := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: &geminiGenConfig{
			Temperature:     p.cfg.Temperature,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: p.cfg.MaxTokens,
		},
		SafetySettings: defaultSafetySettings,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.cfg.BaseURL, p.cfg.Model, p.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("Gemini API request failed: %s", string(respBody))
	}

	var genResp geminiResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("parse gemini response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("invalid response format from Gemini API")
	}
	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

// messagesToPrompt flattens role-tagged turns into a single text block.
// Gemini's generateContent endpoint takes one content block, so roles
// are rendered as labeled lines with the system turn leading untagged.
func messagesToPrompt(conversation []Message) string {
	if len(conversation) == 1 {
		return conversation[0].Content
	}

	var b strings.Builder
	for _, m := range conversation {
		switch m.Role {
		case "system":
			b.WriteString(m.Content)
			b.WriteString("\n\n")
		case "assistant":
			b.WriteString("Assistant: " + m.Content + "\n")
		default:
			b.WriteString("User: " + m.Content + "\n")
		}
	}
	return b.String()
}
