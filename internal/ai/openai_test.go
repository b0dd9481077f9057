package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/justicebuddy/justicebuddy/internal/config"
	"github.com/justicebuddy/justicebuddy/internal/models"
)

func testVendorConfig(baseURL string) config.VendorConfig {
	return config.VendorConfig{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		Model:          "gpt-4",
		TimeoutSeconds: 5,
		MaxTokens:      2048,
		Temperature:    0.7,
	}
}

func TestChatGPTGenerateLetter(t *testing.T) {
	var captured openaiChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(openaiChatResponse{
			Choices: []openaiChoice{{Message: openaiMessage{Role: "assistant", Content: "Dear Sir/Madam"}}},
		})
	}))
	defer srv.Close()

	p := NewChatGPTProvider(testVendorConfig(srv.URL))
	p.now = func() time.Time { return time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC) }

	result := p.GenerateLetter(context.Background(), &models.LetterTemplate{ID: 1, Name: "Demand Letter", Category: "debt"},
		map[string]any{"defendant_name": "Acme Ltd"})

	if !result.Success {
		t.Fatalf("result = %+v", result)
	}
	if result.Content != "Dear Sir/Madam" {
		t.Errorf("content = %q", result.Content)
	}
	if result.Model != "gpt-4" {
		t.Errorf("model = %q", result.Model)
	}

	if captured.Model != "gpt-4" || captured.Temperature != 0.7 || captured.MaxTokens != 2048 || captured.TopP != 0.95 {
		t.Errorf("request parameters = %+v", captured)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Fatalf("messages = %+v", captured.Messages)
	}
	if !strings.Contains(captured.Messages[1].Content, "07/03/2025") {
		t.Error("user prompt missing pinned date")
	}
}

func TestChatGPTAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	}))
	defer srv.Close()

	p := NewChatGPTProvider(testVendorConfig(srv.URL))

	result := p.GenerateLetter(context.Background(), &models.LetterTemplate{ID: 1}, nil)
	if result.Success {
		t.Fatal("expected failure result")
	}
	if !strings.Contains(result.Err, "ChatGPT API Error: Rate limit reached") {
		t.Errorf("err = %q", result.Err)
	}

	_, err := p.GenerateChatResponse(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "Rate limit reached") {
		t.Errorf("chat err = %v", err)
	}
}

func TestChatGPTEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openaiChatResponse{})
	}))
	defer srv.Close()

	p := NewChatGPTProvider(testVendorConfig(srv.URL))

	_, err := p.GenerateChatResponse(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "invalid response format from ChatGPT API") {
		t.Errorf("err = %v", err)
	}
}

func TestChatGPTMissingAPIKey(t *testing.T) {
	cfg := testVendorConfig("http://unused.invalid")
	cfg.APIKey = ""
	p := NewChatGPTProvider(cfg)

	result := p.GenerateLetter(context.Background(), &models.LetterTemplate{ID: 1}, nil)
	if result.Success || !strings.Contains(result.Err, "not configured") {
		t.Errorf("result = %+v", result)
	}
}

func TestExtractAPIError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"flat", `{"error":"boom"}`, "boom"},
		{"nested", `{"error":{"message":"nested boom"}}`, "nested boom"},
		{"neither", `{"detail":"nope"}`, ""},
		{"not json", `gateway timeout`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractAPIError([]byte(tt.body)); got != tt.want {
				t.Errorf("extractAPIError = %q, want %q", got, tt.want)
			}
		})
	}
}
