package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/justicebuddy/justicebuddy/internal/models"
)

// TemplateCategories maps category keys to display names.
var TemplateCategories = map[string]string{
	"eviction":   "Eviction Letters",
	"employment": "Employment Letters",
	"family":     "Family Law Letters",
	"consumer":   "Consumer Rights Letters",
	"criminal":   "Criminal Law Letters",
	"property":   "Property Law Letters",
	"debt":       "Debt & Credit Letters",
	"general":    "General Legal Letters",
}

const templateColumns = `id, name, slug, description, template_content, required_fields,
	optional_fields, category, ai_instructions, is_active, sort_order, created_at, updated_at`

// CreateLetterTemplate inserts a template, deriving the slug from the
// name when absent, and returns it with its assigned id.
func (db *DB) CreateLetterTemplate(t *models.LetterTemplate) error {
	if t.Slug == "" {
		t.Slug = Slugify(t.Name)
	}

	required, err := json.Marshal(emptyIfNil(t.RequiredFields))
	if err != nil {
		return fmt.Errorf("marshal required fields: %w", err)
	}
	optional, err := json.Marshal(emptyIfNil(t.OptionalFields))
	if err != nil {
		return fmt.Errorf("marshal optional fields: %w", err)
	}

	res, err := db.conn.Exec(`
		INSERT INTO letter_templates (name, slug, description, template_content, required_fields,
			optional_fields, category, ai_instructions, is_active, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Name, t.Slug, t.Description, t.TemplateContent, string(required), string(optional),
		t.Category, t.AIInstructions, boolToInt(t.IsActive), t.SortOrder)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}

	t.ID, err = res.LastInsertId()
	return err
}

// GetActiveTemplate fetches one active template by id.
// Inactive or missing templates return ErrNotFound.
func (db *DB) GetActiveTemplate(id int64) (*models.LetterTemplate, error) {
	row := db.conn.QueryRow(`SELECT `+templateColumns+` FROM letter_templates WHERE id = ? AND is_active = 1`, id)
	return scanTemplate(row)
}

// GetTemplateBySlug fetches one active template by slug.
func (db *DB) GetTemplateBySlug(slug string) (*models.LetterTemplate, error) {
	row := db.conn.QueryRow(`SELECT `+templateColumns+` FROM letter_templates WHERE slug = ? AND is_active = 1`, slug)
	return scanTemplate(row)
}

// ListActiveTemplates returns active templates ordered by sort order then
// name, optionally filtered by category and a name/description search term.
func (db *DB) ListActiveTemplates(category, search string) ([]models.LetterTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM letter_templates WHERE is_active = 1`
	var args []any

	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	if search != "" {
		query += ` AND (name LIKE ? OR description LIKE ?)`
		like := "%" + search + "%"
		args = append(args, like, like)
	}
	query += ` ORDER BY sort_order, name`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []models.LetterTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*models.LetterTemplate, error) {
	var t models.LetterTemplate
	var required, optional string
	var active int
	var createdAt, updatedAt string

	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Description, &t.TemplateContent,
		&required, &optional, &t.Category, &t.AIInstructions, &active, &t.SortOrder,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	t.IsActive = active != 0
	if err := json.Unmarshal([]byte(required), &t.RequiredFields); err != nil {
		return nil, fmt.Errorf("decode required fields for template %d: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(optional), &t.OptionalFields); err != nil {
		return nil, fmt.Errorf("decode optional fields for template %d: %w", t.ID, err)
	}
	t.CreatedAt, _ = parseTime(createdAt)
	t.UpdatedAt, _ = parseTime(updatedAt)
	return &t, nil
}

func emptyIfNil(fields []string) []string {
	if fields == nil {
		return []string{}
	}
	return fields
}

// Slugify lowercases a name and collapses runs of non-alphanumerics
// into single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
