package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type DB struct {
	conn *sql.DB
	path string
}

func New(path string) (*DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(2)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func parseTime(s string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04:05", s)
}

func (db *DB) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS app_settings (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			key         TEXT    NOT NULL UNIQUE,
			value       TEXT    NOT NULL,
			type        TEXT    NOT NULL DEFAULT 'string',
			grp         TEXT    NOT NULL DEFAULT 'general',
			description TEXT    NOT NULL DEFAULT '',
			is_public   INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT    NOT NULL DEFAULT (datetime('now')),
			updated_at  TEXT    NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_app_settings_grp ON app_settings(grp, key)`,
		`CREATE TABLE IF NOT EXISTS letter_templates (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			name             TEXT    NOT NULL,
			slug             TEXT    NOT NULL UNIQUE,
			description      TEXT    NOT NULL DEFAULT '',
			template_content TEXT    NOT NULL,
			required_fields  TEXT    NOT NULL DEFAULT '[]',
			optional_fields  TEXT    NOT NULL DEFAULT '[]',
			category         TEXT    NOT NULL DEFAULT 'general',
			ai_instructions  TEXT    NOT NULL DEFAULT '',
			is_active        INTEGER NOT NULL DEFAULT 1,
			sort_order       INTEGER NOT NULL DEFAULT 0,
			created_at       TEXT    NOT NULL DEFAULT (datetime('now')),
			updated_at       TEXT    NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_letter_templates_active ON letter_templates(is_active, category)`,
		`CREATE TABLE IF NOT EXISTS letter_requests (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id         TEXT    NOT NULL UNIQUE,
			letter_template_id INTEGER NOT NULL REFERENCES letter_templates(id) ON DELETE CASCADE,
			client_name        TEXT    NOT NULL,
			client_email       TEXT    NOT NULL DEFAULT '',
			client_phone       TEXT    NOT NULL DEFAULT '',
			client_matters     TEXT    NOT NULL DEFAULT '{}',
			generated_letter   TEXT,
			status             TEXT    NOT NULL DEFAULT 'pending',
			error_message      TEXT,
			document_path      TEXT,
			device_id          TEXT    NOT NULL DEFAULT '',
			generated_at       TEXT,
			created_at         TEXT    NOT NULL DEFAULT (datetime('now')),
			updated_at         TEXT    NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_letter_requests_status ON letter_requests(status)`,
		`CREATE INDEX IF NOT EXISTS idx_letter_requests_email ON letter_requests(client_email, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_letter_requests_device ON letter_requests(device_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS chat_rules (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT    NOT NULL UNIQUE,
			rule_text  TEXT    NOT NULL,
			type       TEXT    NOT NULL DEFAULT 'instruction',
			priority   INTEGER NOT NULL DEFAULT 0,
			is_active  INTEGER NOT NULL DEFAULT 1,
			model_name TEXT,
			created_at TEXT    NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT    NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_rules_active ON chat_rules(is_active, priority)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w\nstatement: %s", err, stmt)
		}
	}

	if err := db.seedSettings(); err != nil {
		return err
	}
	if err := db.seedTemplates(); err != nil {
		return err
	}
	return db.seedChatRules()
}

// seedSettings inserts default settings without overwriting existing rows.
func (db *DB) seedSettings() error {
	type seed struct {
		key, value, typ, grp, description string
		public                            bool
	}

	defaults := []seed{
		{"active_ai_model", "chatgpt", "string", "ai", "Currently active AI model (chatgpt or gemini)", true},
		{"ai_model_timeout", "60", "integer", "ai", "Timeout in seconds for AI API requests", false},
		{"ai_max_tokens", "2048", "integer", "ai", "Maximum tokens for AI responses", false},
		{"ai_temperature", "0.7", "float", "ai", "Temperature setting for AI responses", false},
		{"generate_document", "1", "boolean", "letters", "Write a document artifact for each completed letter", false},
		{"auto_regenerate_on_update", "1", "boolean", "letters", "Rewrite the document artifact after a manual letter edit", false},
	}

	stmt, err := db.conn.Prepare(`INSERT OR IGNORE INTO app_settings (key, value, type, grp, description, is_public)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range defaults {
		if _, err := stmt.Exec(s.key, s.value, s.typ, s.grp, s.description, boolToInt(s.public)); err != nil {
			return err
		}
	}
	return nil
}

const evictionTemplateContent = `[Date]

{{tenant_name}}
{{tenant_address}}

Dear {{tenant_name}},

RE: NOTICE TO VACATE PREMISES - {{property_address}}

You are hereby notified that your tenancy of the above-described premises is hereby terminated effective {{eviction_date}}.

You are required to quit and surrender the premises to the undersigned on or before {{eviction_date}}, and in default thereof, legal proceedings will be instituted against you to recover possession of said premises, to declare the forfeiture of the lease or rental agreement under which you occupy said premises and to recover rents and damages, together with court costs and attorney's fees, according to the terms of your lease or rental agreement.

REASON FOR NOTICE:
{{reason_for_eviction}}

Amount owed (if applicable): {{amount_owed}}

Please be advised that you have the right to contest this notice in court. If you fail to vacate the premises by the specified date, eviction proceedings will be commenced against you.

Sincerely,

{{landlord_name}}
{{landlord_contact}}`

// seedTemplates inserts the starter letter templates. Existing slugs
// are left untouched.
func (db *DB) seedTemplates() error {
	required, _ := json.Marshal([]string{
		"tenant_name", "tenant_address", "property_address", "eviction_date",
		"reason_for_eviction", "landlord_name", "landlord_contact",
	})
	optional, _ := json.Marshal([]string{"amount_owed", "lease_start_date", "additional_notes"})

	_, err := db.conn.Exec(`INSERT OR IGNORE INTO letter_templates
		(name, slug, description, template_content, required_fields, optional_fields,
		 category, ai_instructions, is_active, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, 1)`,
		"Eviction Notice Letter", "eviction-notice-letter",
		"A formal eviction notice letter for tenants who have breached their lease agreement.",
		evictionTemplateContent, string(required), string(optional), "eviction",
		"Ensure the eviction notice follows South African rental laws and includes all required legal notices. "+
			"The tone should be formal but not aggressive. Include proper legal disclaimers.")
	return err
}

// seedChatRules inserts the default assistant rules. Existing names are
// left untouched.
func (db *DB) seedChatRules() error {
	type rule struct {
		name, text, typ string
		priority        int
	}

	defaults := []rule{
		{"South African Law Focus", "You are a South African legal information assistant. You must only provide information about South African law, legal processes, and legal rights as they apply in South Africa. Do not provide advice about other countries' legal systems.", "instruction", 100},
		{"Legal Disclaimer Requirement", "Always remind users that you are providing general legal information only and are not a qualified attorney. Users should consult with a registered South African attorney for specific legal advice.", "instruction", 95},
		{"Professional Language", "Use clear, professional language that is accessible to the general public. Explain legal terms when using them and avoid unnecessary legal jargon.", "instruction", 90},
		{"No Legal Advice", "Do not provide specific legal advice. You may provide general legal information and explain legal concepts, but cannot advise on specific cases or recommend specific legal actions.", "constraint", 100},
		{"No Attorney-Client Relationship", "Make it clear that your responses do not create an attorney-client relationship and that communications are not subject to attorney-client privilege.", "constraint", 95},
		{"South African Legal System Overview", "South Africa has a mixed legal system that combines civil law, common law, and customary law. The Constitution is the supreme law, and there are various courts including Magistrates' Courts, High Courts, the Supreme Court of Appeal, and the Constitutional Court.", "context", 80},
		{"Encourage Professional Consultation", "When discussing complex legal matters, actively encourage users to consult with qualified South African attorneys who can provide personalized advice.", "guideline", 85},
		{"Emergency Situations", "If someone indicates they are in immediate danger or need emergency legal assistance, direct them to emergency services (10111 for police) or relevant helplines rather than attempting to provide legal guidance.", "guideline", 100},
	}

	stmt, err := db.conn.Prepare(`INSERT OR IGNORE INTO chat_rules (name, rule_text, type, priority, is_active)
		VALUES (?, ?, ?, ?, 1)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range defaults {
		if _, err := stmt.Exec(r.name, r.text, r.typ, r.priority); err != nil {
			return err
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
