package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/justicebuddy/justicebuddy/internal/models"
)

// GetValue looks up a setting by key and decodes it according to its
// declared type. A missing key returns def unchanged, never an error.
func (db *DB) GetValue(key string, def any) any {
	var value, typ string
	err := db.conn.QueryRow(`SELECT value, type FROM app_settings WHERE key = ?`, key).Scan(&value, &typ)
	if err != nil {
		return def
	}
	return decodeSetting(value, typ)
}

// GetString is a convenience for string-typed settings such as active_ai_model.
func (db *DB) GetString(key, def string) string {
	if v, ok := db.GetValue(key, def).(string); ok {
		return v
	}
	return def
}

// GetBool decodes a boolean setting, returning def when absent or mistyped.
func (db *DB) GetBool(key string, def bool) bool {
	if v, ok := db.GetValue(key, def).(bool); ok {
		return v
	}
	return def
}

// GetInt decodes an integer setting, returning def when absent or mistyped.
func (db *DB) GetInt(key string, def int) int {
	if v, ok := db.GetValue(key, def).(int); ok {
		return v
	}
	return def
}

// SetValue encodes value per typ and upserts it by key. Type, group and
// description are overwritten on every call; last writer wins.
func (db *DB) SetValue(key string, value any, typ, group, description string) error {
	encoded, err := encodeSetting(value, typ)
	if err != nil {
		return fmt.Errorf("encode setting %q: %w", key, err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO app_settings (key, value, type, grp, description)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			type = excluded.type,
			grp = excluded.grp,
			description = excluded.description,
			updated_at = datetime('now')`,
		key, encoded, typ, group, description)
	if err != nil {
		return fmt.Errorf("upsert setting %q: %w", key, err)
	}
	return nil
}

// SetPublic flips a setting's API visibility without touching its value.
func (db *DB) SetPublic(key string, public bool) error {
	res, err := db.conn.Exec(`UPDATE app_settings SET is_public = ?, updated_at = datetime('now') WHERE key = ?`,
		boolToInt(public), key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// HasSetting reports whether a key exists.
func (db *DB) HasSetting(key string) (bool, error) {
	var one int
	err := db.conn.QueryRow(`SELECT 1 FROM app_settings WHERE key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// DeleteSetting removes a key. Deleting a missing key is not an error.
func (db *DB) DeleteSetting(key string) error {
	_, err := db.conn.Exec(`DELETE FROM app_settings WHERE key = ?`, key)
	return err
}

// GetGroup returns all settings in a group, decoded per their types.
func (db *DB) GetGroup(group string) (map[string]any, error) {
	return db.settingsWhere(`grp = ?`, group)
}

// GetPublicSettings returns settings flagged for API exposure.
func (db *DB) GetPublicSettings() (map[string]any, error) {
	return db.settingsWhere(`is_public = 1`)
}

func (db *DB) settingsWhere(where string, args ...any) (map[string]any, error) {
	rows, err := db.conn.Query(`SELECT key, value, type FROM app_settings WHERE `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]any)
	for rows.Next() {
		var key, value, typ string
		if err := rows.Scan(&key, &value, &typ); err != nil {
			return nil, err
		}
		result[key] = decodeSetting(value, typ)
	}
	return result, rows.Err()
}

// AllSettings returns full setting rows for the admin surface.
func (db *DB) AllSettings() ([]models.Setting, error) {
	rows, err := db.conn.Query(`
		SELECT key, value, type, grp, description, is_public, updated_at
		FROM app_settings ORDER BY grp, key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []models.Setting
	for rows.Next() {
		var s models.Setting
		var public int
		var updatedAt string
		if err := rows.Scan(&s.Key, &s.Value, &s.Type, &s.Group, &s.Description, &public, &updatedAt); err != nil {
			return nil, err
		}
		s.IsPublic = public != 0
		s.UpdatedAt, _ = parseTime(updatedAt)
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// decodeSetting turns the stored text value into a typed Go value.
// Undecodable values fall back to the raw string rather than erroring.
func decodeSetting(value, typ string) any {
	switch typ {
	case models.SettingBoolean:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes", "on":
			return true
		default:
			return false
		}
	case models.SettingInteger:
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
		return value
	case models.SettingFloat:
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
		return value
	case models.SettingArray, models.SettingJSON:
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			return decoded
		}
		return value
	default:
		return value
	}
}

// encodeSetting serializes a typed value for storage as text.
func encodeSetting(value any, typ string) (string, error) {
	switch typ {
	case models.SettingBoolean:
		if b, ok := value.(bool); ok {
			if b {
				return "1", nil
			}
			return "0", nil
		}
		return fmt.Sprint(value), nil
	case models.SettingArray, models.SettingJSON:
		data, err := json.Marshal(value)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return fmt.Sprint(value), nil
	}
}
