package ai

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/justicebuddy/justicebuddy/internal/models"
)

// letterSystemPrompt is the short system turn sent alongside the full
// letter prompt on vendors that support role-separated messages.
const letterSystemPrompt = "You are a professional legal document drafter specializing in South African law. " +
	"You generate formal, legally appropriate letters based on templates and client information."

// BuildLetterPrompt renders the deterministic letter prompt shared by
// both vendors: system framing, per-template instructions, the template
// block, the client information block, and the numbered formatting
// instructions with today's date. The clock is a parameter so tests can
// pin the date.
func BuildLetterPrompt(template *models.LetterTemplate, clientMatters map[string]any, now time.Time) string {
	var b strings.Builder

	b.WriteString("You are a professional legal document drafter specializing in South African law. ")
	b.WriteString("You must generate formal, legally appropriate letters based on the provided template and client information. ")
	b.WriteString("Ensure the language is professional, clear, and follows proper legal formatting. ")
	b.WriteString("All dates should be formatted as per South African standards (DD/MM/YYYY). ")
	b.WriteString("Include proper salutations, body paragraphs, and professional closings. ")

	if template.AIInstructions != "" {
		b.WriteString("\n\nSpecific instructions for this template: ")
		b.WriteString(template.AIInstructions)
	}

	b.WriteString("\n\nTEMPLATE TO USE:\n")
	b.WriteString("Title: " + template.Name + "\n")
	b.WriteString("Category: " + ucfirst(template.Category) + "\n")
	b.WriteString("Template Content:\n" + template.TemplateContent + "\n\n")

	b.WriteString("CLIENT INFORMATION PROVIDED:\n")
	for _, key := range sortedKeys(clientMatters) {
		b.WriteString("- " + humanizeField(key) + ": " + renderValue(clientMatters[key]) + "\n")
	}

	b.WriteString("\nINSTRUCTIONS:\n")
	b.WriteString("1. Use the template as a guide but adapt it based on the specific client information provided\n")
	b.WriteString("2. Replace any placeholder text with appropriate content based on the client matters\n")
	b.WriteString("3. Ensure all legal terminology is accurate for South African law\n")
	b.WriteString("4. Make the letter professional and formal in tone\n")
	b.WriteString("5. Include today's date: " + now.Format("02/01/2006") + "\n")
	b.WriteString("6. Ensure proper paragraph structure and formatting\n")
	b.WriteString("7. Do not include any explanatory text - provide only the final letter content\n")
	b.WriteString("8. Begin with the sender's details, date, recipient details, subject line, and then the letter body\n\n")

	b.WriteString("Generate the complete professional legal letter now:")

	return b.String()
}

// humanizeField turns a field name like "tenant_name" into "Tenant name".
func humanizeField(key string) string {
	return ucfirst(strings.ReplaceAll(key, "_", " "))
}

func ucfirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// renderValue flattens a client matter value for the prompt; arrays are
// comma-joined.
func renderValue(v any) string {
	switch val := v.(type) {
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	default:
		return fmt.Sprint(val)
	}
}

// sortedKeys keeps the client information block deterministic; map
// iteration order would otherwise vary between runs.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
