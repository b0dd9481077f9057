package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/justicebuddy/justicebuddy/internal/config"
	"github.com/justicebuddy/justicebuddy/internal/models"
)

// OpenAI chat completion request/response types (unexported).

type openaiChatRequest struct {
	Model            string          `json:"model"`
	Messages         []openaiMessage `json:"messages"`
	Temperature      float64         `json:"temperature"`
	MaxTokens        int             `json:"max_tokens"`
	TopP             float64         `json:"top_p"`
	FrequencyPenalty float64         `json:"frequency_penalty"`
	PresencePenalty  float64         `json:"presence_penalty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiChatResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   *openaiUsage   `json:"usage,omitempty"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}

type openaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatGPTProvider implements Provider for OpenAI's chat completion API.
type ChatGPTProvider struct {
	cfg        config.VendorConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewChatGPTProvider creates an OpenAI-backed provider. The vendor
// timeout bounds every outbound call.
func NewChatGPTProvider(cfg config.VendorConfig) *ChatGPTProvider {
	return &ChatGPTProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		now:        time.Now,
	}
}

func (p *ChatGPTProvider) Name() string { return "chatgpt" }

func (p *ChatGPTProvider) GenerateLetter(ctx context.Context, template *models.LetterTemplate, clientMatters map[string]any) LetterResult {
	prompt := BuildLetterPrompt(template, clientMatters, p.now())

	content, err := p.complete(ctx, []openaiMessage{
		{Role: "system", Content: letterSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		slog.Error("ChatGPT letter generation failed", "template_id", template.ID, "model", p.cfg.Model, "error", err)
		return LetterResult{Success: false, Err: err.Error(), Model: p.cfg.Model}
	}

	return LetterResult{Success: true, Content: content, Model: p.cfg.Model}
}

func (p *ChatGPTProvider) GenerateChatResponse(ctx context.Context, conversation []Message) (string, error) {
	msgs := make([]openaiMessage, len(conversation))
	for i, m := range conversation {
		msgs[i] = openaiMessage{Role: m.Role, Content: m.Content}
	}

	content, err := p.complete(ctx, msgs)
	if err != nil {
		slog.Error("ChatGPT chat request failed", "model", p.cfg.Model, "error", err)
		return "", err
	}
	return content, nil
}

// complete performs one chat completion call and returns the assistant text.
func (p *ChatGPTProvider) complete(ctx context.Context, messages []openaiMessage) (string, error) {
	if p.cfg.APIKey == "" {
		return "", fmt.Errorf("openai API key not configured")
	}

	body := openaiChatRequest{
		Model:       p.cfg.Model,
		Messages:    messages,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
		TopP:        0.95,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := p.cfg.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chatgpt request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != 200 {
		errMsg := extractAPIError(respBody)
		if errMsg == "" {
			errMsg = "ChatGPT API request failed"
		}
		return "", fmt.Errorf("ChatGPT API Error: %s", errMsg)
	}

	var chatResp openaiChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("parse chatgpt response: %w", err)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("invalid response format from ChatGPT API")
	}
	return chatResp.Choices[0].Message.Content, nil
}

// extractAPIError parses an OpenAI-shaped error body. Both the flat
// {"error":"msg"} and nested {"error":{"message":"msg"}} forms occur.
func extractAPIError(body []byte) string {
	var flat struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &flat) == nil && flat.Error != "" {
		return flat.Error
	}

	var nested struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &nested) == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}

	return ""
}
