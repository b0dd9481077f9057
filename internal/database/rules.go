package database

import (
	"database/sql"
	"fmt"

	"github.com/justicebuddy/justicebuddy/internal/models"
)

// CreateChatRule inserts a rule and returns it with its assigned id.
func (db *DB) CreateChatRule(r *models.ChatRule) error {
	var modelName any
	if r.ModelName != "" {
		modelName = r.ModelName
	}

	res, err := db.conn.Exec(`
		INSERT INTO chat_rules (name, rule_text, type, priority, is_active, model_name)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.Name, r.RuleText, r.Type, r.Priority, boolToInt(r.IsActive), modelName)
	if err != nil {
		return fmt.Errorf("insert chat rule: %w", err)
	}

	r.ID, err = res.LastInsertId()
	return err
}

// ListChatRules returns active rules applicable to the given provider
// (rules with a NULL model_name apply to every provider), ordered by
// priority descending with creation order as the stable tie-break.
func (db *DB) ListChatRules(modelName string) ([]models.ChatRule, error) {
	query := `
		SELECT id, name, rule_text, type, priority, is_active, COALESCE(model_name, ''), created_at
		FROM chat_rules
		WHERE is_active = 1`
	var args []any

	if modelName != "" {
		query += ` AND (model_name IS NULL OR model_name = ?)`
		args = append(args, modelName)
	}
	query += ` ORDER BY priority DESC, created_at ASC, id ASC`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRules(rows)
}

func collectRules(rows *sql.Rows) ([]models.ChatRule, error) {
	var rules []models.ChatRule
	for rows.Next() {
		var r models.ChatRule
		var active int
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Name, &r.RuleText, &r.Type, &r.Priority,
			&active, &r.ModelName, &createdAt); err != nil {
			return nil, err
		}
		r.IsActive = active != 0
		r.CreatedAt, _ = parseTime(createdAt)
		rules = append(rules, r)
	}
	return rules, rows.Err()
}
