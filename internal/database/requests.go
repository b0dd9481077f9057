package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/justicebuddy/justicebuddy/internal/models"
)

const requestColumns = `r.id, r.request_id, r.letter_template_id, t.name, r.client_name,
	r.client_email, r.client_phone, r.client_matters, COALESCE(r.generated_letter, ''),
	r.status, COALESCE(r.error_message, ''), COALESCE(r.document_path, ''), r.device_id,
	r.generated_at, r.created_at, r.updated_at`

const requestFrom = ` FROM letter_requests r JOIN letter_templates t ON t.id = r.letter_template_id `

// NewRequestID generates a tracking id of the form LR-XXXXXXXX-YYYYMMDD
// where X is a random uppercase alphanumeric character.
func NewRequestID(now time.Time) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return fmt.Sprintf("LR-%s-%s", b, now.Format("20060102"))
}

// CreateLetterRequest persists a new pending request. The request id is
// assigned here and is immutable afterwards. ClientMatters is stored as
// a snapshot owned by the request.
func (db *DB) CreateLetterRequest(r *models.LetterRequest) error {
	if r.RequestID == "" {
		r.RequestID = NewRequestID(time.Now())
	}
	r.Status = models.StatusPending

	matters, err := json.Marshal(r.ClientMatters)
	if err != nil {
		return fmt.Errorf("marshal client matters: %w", err)
	}

	res, err := db.conn.Exec(`
		INSERT INTO letter_requests (request_id, letter_template_id, client_name, client_email,
			client_phone, client_matters, status, device_id)
		VALUES (?, ?, ?, ?, ?, ?, 'pending', ?)`,
		r.RequestID, r.TemplateID, r.ClientName, r.ClientEmail, r.ClientPhone,
		string(matters), r.DeviceID)
	if err != nil {
		return fmt.Errorf("insert letter request: %w", err)
	}

	r.ID, err = res.LastInsertId()
	return err
}

// GetLetterRequest fetches a request by its numeric id.
func (db *DB) GetLetterRequest(id int64) (*models.LetterRequest, error) {
	row := db.conn.QueryRow(`SELECT `+requestColumns+requestFrom+`WHERE r.id = ?`, id)
	return scanRequest(row)
}

// GetLetterRequestByRequestID fetches a request by its LR- tracking id.
func (db *DB) GetLetterRequestByRequestID(requestID string) (*models.LetterRequest, error) {
	row := db.conn.QueryRow(`SELECT `+requestColumns+requestFrom+`WHERE r.request_id = ?`, requestID)
	return scanRequest(row)
}

// MarkRequestProcessing transitions a request to processing. No other
// field changes.
func (db *DB) MarkRequestProcessing(id int64) error {
	return db.updateRequest(id, `status = 'processing'`)
}

// MarkRequestCompleted transitions a request to completed, storing the
// generated text and optional document path, stamping generated_at and
// clearing any earlier error.
func (db *DB) MarkRequestCompleted(id int64, letter, documentPath string) error {
	var docPath any
	if documentPath != "" {
		docPath = documentPath
	}
	_, err := db.conn.Exec(`
		UPDATE letter_requests
		SET status = 'completed', generated_letter = ?, document_path = ?,
			generated_at = datetime('now'), error_message = NULL, updated_at = datetime('now')
		WHERE id = ?`, letter, docPath, id)
	return err
}

// MarkRequestFailed transitions a request to failed. The generated
// letter and document path from any earlier completion are left intact
// so a failed regeneration does not erase a prior artifact.
func (db *DB) MarkRequestFailed(id int64, message string) error {
	_, err := db.conn.Exec(`
		UPDATE letter_requests
		SET status = 'failed', error_message = ?, updated_at = datetime('now')
		WHERE id = ?`, message, id)
	return err
}

// UpdateRequestLetter applies a manual edit to a completed letter and
// optionally its contact fields. Non-completed requests are rejected.
func (db *DB) UpdateRequestLetter(id int64, letter string, clientName, clientEmail, clientPhone *string) error {
	sets := []string{`generated_letter = ?`, `updated_at = datetime('now')`}
	args := []any{letter}

	if clientName != nil {
		sets = append(sets, `client_name = ?`)
		args = append(args, *clientName)
	}
	if clientEmail != nil {
		sets = append(sets, `client_email = ?`)
		args = append(args, *clientEmail)
	}
	if clientPhone != nil {
		sets = append(sets, `client_phone = ?`)
		args = append(args, *clientPhone)
	}
	args = append(args, id)

	res, err := db.conn.Exec(
		`UPDATE letter_requests SET `+strings.Join(sets, ", ")+` WHERE id = ? AND status = 'completed'`,
		args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRequestDocumentPath records a regenerated artifact path.
func (db *DB) SetRequestDocumentPath(id int64, documentPath string) error {
	return db.updateRequest(id, `document_path = ?`, documentPath)
}

// ListRequestsByEmail returns a client's request history, newest first.
func (db *DB) ListRequestsByEmail(email string, limit, offset int) ([]models.LetterRequest, error) {
	return db.listRequests(`r.client_email = ?`, email, limit, offset)
}

// ListRequestsByDevice returns a device's request history, newest first.
func (db *DB) ListRequestsByDevice(deviceID string, limit, offset int) ([]models.LetterRequest, error) {
	return db.listRequests(`r.device_id = ?`, deviceID, limit, offset)
}

// ListRequestsByIDs fetches the given requests in id order.
func (db *DB) ListRequestsByIDs(ids []int64) ([]models.LetterRequest, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.conn.Query(`SELECT `+requestColumns+requestFrom+
		`WHERE r.id IN (`+placeholders+`) ORDER BY r.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (db *DB) listRequests(where string, arg any, limit, offset int) ([]models.LetterRequest, error) {
	rows, err := db.conn.Query(`SELECT `+requestColumns+requestFrom+
		`WHERE `+where+` ORDER BY r.created_at DESC, r.id DESC LIMIT ? OFFSET ?`,
		arg, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (db *DB) updateRequest(id int64, set string, args ...any) error {
	args = append(args, id)
	res, err := db.conn.Exec(
		`UPDATE letter_requests SET `+set+`, updated_at = datetime('now') WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func collectRequests(rows *sql.Rows) ([]models.LetterRequest, error) {
	var requests []models.LetterRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

func scanRequest(row rowScanner) (*models.LetterRequest, error) {
	var r models.LetterRequest
	var matters string
	var generatedAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&r.ID, &r.RequestID, &r.TemplateID, &r.TemplateName, &r.ClientName,
		&r.ClientEmail, &r.ClientPhone, &matters, &r.GeneratedLetter, &r.Status,
		&r.ErrorMessage, &r.DocumentPath, &r.DeviceID, &generatedAt, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(matters), &r.ClientMatters); err != nil {
		return nil, fmt.Errorf("decode client matters for request %d: %w", r.ID, err)
	}
	if generatedAt.Valid {
		if t, err := parseTime(generatedAt.String); err == nil {
			r.GeneratedAt = &t
		}
	}
	r.CreatedAt, _ = parseTime(createdAt)
	r.UpdatedAt, _ = parseTime(updatedAt)
	return &r, nil
}
