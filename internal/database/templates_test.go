package database

import (
	"errors"
	"testing"

	"github.com/justicebuddy/justicebuddy/internal/models"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Demand Letter", "demand-letter"},
		{"Eviction Notice Response", "eviction-notice-response"},
		{"UIF Claim (Section 12)", "uif-claim-section-12"},
		{"  Spaces  Everywhere  ", "spaces-everywhere"},
		{"already-a-slug", "already-a-slug"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetActiveTemplateExcludesInactive(t *testing.T) {
	db := newTestDB(t)

	tpl := &models.LetterTemplate{
		Name:            "Retired Template",
		TemplateContent: "...",
		Category:        "general",
		IsActive:        false,
	}
	if err := db.CreateLetterTemplate(tpl); err != nil {
		t.Fatalf("CreateLetterTemplate: %v", err)
	}

	if _, err := db.GetActiveTemplate(tpl.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetActiveTemplate inactive = %v, want ErrNotFound", err)
	}
	if _, err := db.GetTemplateBySlug(tpl.Slug); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTemplateBySlug inactive = %v, want ErrNotFound", err)
	}
}

// clearTemplates removes the seeded starter templates so listing tests
// can assert exact counts.
func clearTemplates(t *testing.T, db *DB) {
	t.Helper()
	if _, err := db.conn.Exec(`DELETE FROM letter_templates`); err != nil {
		t.Fatalf("clear templates: %v", err)
	}
}

func TestSeededEvictionTemplate(t *testing.T) {
	db := newTestDB(t)

	tpl, err := db.GetTemplateBySlug("eviction-notice-letter")
	if err != nil {
		t.Fatalf("GetTemplateBySlug: %v", err)
	}
	if tpl.Category != "eviction" || !tpl.IsActive {
		t.Errorf("seeded template = category %q active %v", tpl.Category, tpl.IsActive)
	}
	if len(tpl.RequiredFields) != 7 || tpl.RequiredFields[0] != "tenant_name" {
		t.Errorf("required fields = %v", tpl.RequiredFields)
	}
	if len(tpl.OptionalFields) != 3 {
		t.Errorf("optional fields = %v", tpl.OptionalFields)
	}

	// Re-running the seeder must not duplicate or overwrite.
	if err := db.seedTemplates(); err != nil {
		t.Fatalf("seedTemplates: %v", err)
	}
	all, err := db.ListActiveTemplates("eviction", "")
	if err != nil {
		t.Fatalf("ListActiveTemplates: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("eviction templates after re-seed = %d, want 1", len(all))
	}
}

func TestListActiveTemplatesFilters(t *testing.T) {
	db := newTestDB(t)
	clearTemplates(t, db)

	seed := []models.LetterTemplate{
		{Name: "Eviction Response", TemplateContent: "...", Category: "eviction", IsActive: true, SortOrder: 2},
		{Name: "Demand Letter", TemplateContent: "...", Category: "debt", IsActive: true, SortOrder: 1},
		{Name: "Old Eviction Letter", TemplateContent: "...", Category: "eviction", IsActive: false},
	}
	for i := range seed {
		if err := db.CreateLetterTemplate(&seed[i]); err != nil {
			t.Fatalf("CreateLetterTemplate: %v", err)
		}
	}

	all, err := db.ListActiveTemplates("", "")
	if err != nil {
		t.Fatalf("ListActiveTemplates: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all active = %d templates, want 2", len(all))
	}
	if all[0].Name != "Demand Letter" {
		t.Errorf("sort order not respected, first = %q", all[0].Name)
	}

	evictions, err := db.ListActiveTemplates("eviction", "")
	if err != nil {
		t.Fatalf("ListActiveTemplates(eviction): %v", err)
	}
	if len(evictions) != 1 || evictions[0].Name != "Eviction Response" {
		t.Errorf("category filter mismatch: %v", evictions)
	}

	matched, err := db.ListActiveTemplates("", "demand")
	if err != nil {
		t.Fatalf("ListActiveTemplates(search): %v", err)
	}
	if len(matched) != 1 || matched[0].Name != "Demand Letter" {
		t.Errorf("search filter mismatch: %v", matched)
	}
}

func TestTemplateFieldsRoundTrip(t *testing.T) {
	db := newTestDB(t)

	tpl := &models.LetterTemplate{
		Name:            "Demand Letter",
		TemplateContent: "Dear [RECIPIENT]",
		RequiredFields:  []string{"defendant_name", "amount_owed"},
		Category:        "debt",
		IsActive:        true,
	}
	if err := db.CreateLetterTemplate(tpl); err != nil {
		t.Fatalf("CreateLetterTemplate: %v", err)
	}

	got, err := db.GetActiveTemplate(tpl.ID)
	if err != nil {
		t.Fatalf("GetActiveTemplate: %v", err)
	}
	if len(got.RequiredFields) != 2 || got.RequiredFields[0] != "defendant_name" {
		t.Errorf("required fields = %v", got.RequiredFields)
	}
	if got.OptionalFields == nil {
		t.Error("optional fields should decode to an empty slice, not nil")
	}
	if got.Slug != "demand-letter" {
		t.Errorf("slug = %q", got.Slug)
	}
}
