package models

import "time"

// Letter request lifecycle statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Setting value types, matching the app_settings.type column.
const (
	SettingString  = "string"
	SettingInteger = "integer"
	SettingFloat   = "float"
	SettingBoolean = "boolean"
	SettingArray   = "array"
	SettingJSON    = "json"
)

// RuleTypes lists chat rule types in their fixed presentation order.
var RuleTypes = []string{"instruction", "constraint", "context", "guideline"}

type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Type        string    `json:"type"`
	Group       string    `json:"group"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"is_public"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type LetterTemplate struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description,omitempty"`
	TemplateContent string    `json:"template_content"`
	RequiredFields  []string  `json:"required_fields"`
	OptionalFields  []string  `json:"optional_fields"`
	Category        string    `json:"category"`
	AIInstructions  string    `json:"ai_instructions,omitempty"`
	IsActive        bool      `json:"is_active"`
	SortOrder       int       `json:"sort_order"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AllFields returns required and optional field names combined.
func (t *LetterTemplate) AllFields() []string {
	fields := make([]string, 0, len(t.RequiredFields)+len(t.OptionalFields))
	fields = append(fields, t.RequiredFields...)
	fields = append(fields, t.OptionalFields...)
	return fields
}

// MissingFields checks client-supplied matters against the template's
// required fields and returns one message per absent or empty field.
func (t *LetterTemplate) MissingFields(clientMatters map[string]any) []string {
	var errs []string
	for _, field := range t.RequiredFields {
		v, ok := clientMatters[field]
		if !ok || isEmptyValue(v) {
			errs = append(errs, "Required field '"+field+"' is missing or empty")
		}
	}
	return errs
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	default:
		return false
	}
}

type LetterRequest struct {
	ID              int64          `json:"id"`
	RequestID       string         `json:"request_id"`
	TemplateID      int64          `json:"letter_template_id"`
	TemplateName    string         `json:"template_name,omitempty"`
	ClientName      string         `json:"client_name"`
	ClientEmail     string         `json:"client_email,omitempty"`
	ClientPhone     string         `json:"client_phone,omitempty"`
	ClientMatters   map[string]any `json:"client_matters"`
	GeneratedLetter string         `json:"generated_letter,omitempty"`
	Status          string         `json:"status"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	DocumentPath    string         `json:"document_path,omitempty"`
	DeviceID        string         `json:"device_id"`
	GeneratedAt     *time.Time     `json:"generated_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// IsTerminal reports whether the request has finished processing.
func (r *LetterRequest) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

type ChatRule struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	RuleText  string    `json:"rule_text"`
	Type      string    `json:"type"`
	Priority  int       `json:"priority"`
	IsActive  bool      `json:"is_active"`
	ModelName string    `json:"model_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
