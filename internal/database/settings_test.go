package database

import (
	"path/filepath"
	"testing"

	"github.com/justicebuddy/justicebuddy/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSettingsRoundTrip(t *testing.T) {
	db := newTestDB(t)

	tests := []struct {
		name  string
		key   string
		value any
		typ   string
		want  any
	}{
		{"string", "site_name", "JusticeBuddy", models.SettingString, "JusticeBuddy"},
		{"integer", "max_requests", 25, models.SettingInteger, 25},
		{"float", "temperature", 0.7, models.SettingFloat, 0.7},
		{"bool true", "feature_on", true, models.SettingBoolean, true},
		{"bool false", "feature_off", false, models.SettingBoolean, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := db.SetValue(tt.key, tt.value, tt.typ, "test", ""); err != nil {
				t.Fatalf("SetValue: %v", err)
			}
			got := db.GetValue(tt.key, nil)
			if got != tt.want {
				t.Errorf("GetValue(%q) = %v (%T), want %v (%T)", tt.key, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestSettingsArrayDecoding(t *testing.T) {
	db := newTestDB(t)

	if err := db.SetValue("allowed_models", []string{"chatgpt", "gemini"}, models.SettingArray, "ai", ""); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	got, ok := db.GetValue("allowed_models", nil).([]any)
	if !ok {
		t.Fatalf("expected []any, got %T", db.GetValue("allowed_models", nil))
	}
	if len(got) != 2 || got[0] != "chatgpt" || got[1] != "gemini" {
		t.Errorf("decoded array = %v", got)
	}
}

func TestGetValueMissingReturnsDefault(t *testing.T) {
	db := newTestDB(t)

	if got := db.GetValue("no_such_key", "fallback"); got != "fallback" {
		t.Errorf("GetValue missing = %v, want fallback", got)
	}
	if got := db.GetInt("no_such_key", 42); got != 42 {
		t.Errorf("GetInt missing = %d, want 42", got)
	}
	if got := db.GetBool("no_such_key", true); got != true {
		t.Errorf("GetBool missing = %v, want true", got)
	}
}

func TestSetValueLastWriterWins(t *testing.T) {
	db := newTestDB(t)

	if err := db.SetValue("active_ai_model", "chatgpt", models.SettingString, "ai", ""); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := db.SetValue("active_ai_model", "gemini", models.SettingString, "ai", ""); err != nil {
		t.Fatalf("SetValue second write: %v", err)
	}

	if got := db.GetString("active_ai_model", ""); got != "gemini" {
		t.Errorf("GetString = %q, want gemini", got)
	}
}

func TestSeededDefaults(t *testing.T) {
	db := newTestDB(t)

	if got := db.GetString("active_ai_model", ""); got != "chatgpt" {
		t.Errorf("default active_ai_model = %q, want chatgpt", got)
	}
	if got := db.GetBool("generate_document", false); !got {
		t.Errorf("default generate_document = false, want true")
	}
	if got := db.GetInt("ai_max_tokens", 0); got != 2048 {
		t.Errorf("default ai_max_tokens = %d, want 2048", got)
	}
}

func TestPublicSettings(t *testing.T) {
	db := newTestDB(t)

	if err := db.SetValue("secret_key", "hunter2", models.SettingString, "auth", ""); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	public, err := db.GetPublicSettings()
	if err != nil {
		t.Fatalf("GetPublicSettings: %v", err)
	}
	if _, ok := public["secret_key"]; ok {
		t.Error("unflagged setting leaked into public settings")
	}
	if _, ok := public["active_ai_model"]; !ok {
		t.Error("active_ai_model should be public by default")
	}

	if err := db.SetPublic("secret_key", true); err != nil {
		t.Fatalf("SetPublic: %v", err)
	}
	public, err = db.GetPublicSettings()
	if err != nil {
		t.Fatalf("GetPublicSettings: %v", err)
	}
	if _, ok := public["secret_key"]; !ok {
		t.Error("setting flagged public not returned")
	}
}

func TestGetGroup(t *testing.T) {
	db := newTestDB(t)

	if err := db.SetValue("smtp_host", "mail.example.com", models.SettingString, "mail", ""); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := db.SetValue("smtp_port", "587", models.SettingInteger, "mail", ""); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := db.SetValue("unrelated", "x", models.SettingString, "other", ""); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	group, err := db.GetGroup("mail")
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if len(group) != 2 {
		t.Fatalf("GetGroup returned %d settings, want 2", len(group))
	}
	if group["smtp_host"] != "mail.example.com" {
		t.Errorf("smtp_host = %v", group["smtp_host"])
	}
	if group["smtp_port"] != 587 {
		t.Errorf("smtp_port = %v (%T), want 587", group["smtp_port"], group["smtp_port"])
	}
	if _, ok := group["unrelated"]; ok {
		t.Error("GetGroup leaked a setting from another group")
	}
}

func TestSetPublicMissingKey(t *testing.T) {
	db := newTestDB(t)

	if err := db.SetPublic("no_such_key", true); err != ErrNotFound {
		t.Errorf("SetPublic missing = %v, want ErrNotFound", err)
	}
}

func TestDeleteSetting(t *testing.T) {
	db := newTestDB(t)

	if err := db.SetValue("temp", "x", models.SettingString, "", ""); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := db.DeleteSetting("temp"); err != nil {
		t.Fatalf("DeleteSetting: %v", err)
	}
	has, err := db.HasSetting("temp")
	if err != nil {
		t.Fatalf("HasSetting: %v", err)
	}
	if has {
		t.Error("setting still present after delete")
	}

	// Deleting again is not an error.
	if err := db.DeleteSetting("temp"); err != nil {
		t.Errorf("DeleteSetting missing = %v", err)
	}
}
