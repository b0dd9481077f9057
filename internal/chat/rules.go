// Package chat provides the rule-driven legal assistant chat.
package chat

import (
	"strings"

	"github.com/justicebuddy/justicebuddy/internal/models"
)

// BuildSystemPrompt renders active chat rules into a system prompt.
// Rules are grouped by type in a fixed order, each group under a
// pluralized header with one bullet per rule. Rule ordering inside a
// group follows the store's priority ordering. Returns "" when no rules
// apply.
func BuildSystemPrompt(rules []models.ChatRule) string {
	grouped := make(map[string][]models.ChatRule, len(models.RuleTypes))
	for _, r := range rules {
		grouped[r.Type] = append(grouped[r.Type], r)
	}

	var b strings.Builder
	for _, typ := range models.RuleTypes {
		group := grouped[typ]
		if len(group) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(headerFor(typ))
		b.WriteString("\n")
		for _, r := range group {
			b.WriteString("- ")
			b.WriteString(r.RuleText)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func headerFor(typ string) string {
	return strings.ToUpper(typ[:1]) + typ[1:] + "s:"
}
