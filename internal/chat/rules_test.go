package chat

import (
	"testing"

	"github.com/justicebuddy/justicebuddy/internal/models"
)

func TestBuildSystemPromptGrouping(t *testing.T) {
	rules := []models.ChatRule{
		{RuleText: "Explain legal terms simply", Type: "guideline"},
		{RuleText: "Answer questions about South African law", Type: "instruction"},
		{RuleText: "Never give binding legal advice", Type: "constraint"},
		{RuleText: "Users are typically not lawyers", Type: "context"},
		{RuleText: "Suggest consulting an attorney for complex matters", Type: "instruction"},
	}

	got := BuildSystemPrompt(rules)

	want := "Instructions:\n" +
		"- Answer questions about South African law\n" +
		"- Suggest consulting an attorney for complex matters\n" +
		"\n" +
		"Constraints:\n" +
		"- Never give binding legal advice\n" +
		"\n" +
		"Contexts:\n" +
		"- Users are typically not lawyers\n" +
		"\n" +
		"Guidelines:\n" +
		"- Explain legal terms simply\n"

	if got != want {
		t.Errorf("prompt mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildSystemPromptPreservesOrderWithinGroup(t *testing.T) {
	rules := []models.ChatRule{
		{RuleText: "A", Type: "instruction", Priority: 10},
		{RuleText: "B", Type: "instruction", Priority: 5},
	}

	got := BuildSystemPrompt(rules)
	want := "Instructions:\n- A\n- B\n"
	if got != want {
		t.Errorf("prompt = %q, want %q", got, want)
	}
}

func TestBuildSystemPromptEmpty(t *testing.T) {
	if got := BuildSystemPrompt(nil); got != "" {
		t.Errorf("empty rules = %q, want empty string", got)
	}
}

func TestBuildSystemPromptSkipsUnknownTypes(t *testing.T) {
	rules := []models.ChatRule{
		{RuleText: "known", Type: "instruction"},
		{RuleText: "mystery", Type: "whimsy"},
	}

	got := BuildSystemPrompt(rules)
	want := "Instructions:\n- known\n"
	if got != want {
		t.Errorf("prompt = %q, want %q", got, want)
	}
}
