// Package letters orchestrates the letter generation pipeline: template
// resolution, validation, request creation, dispatch, and post-edit
// document regeneration.
package letters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/justicebuddy/justicebuddy/internal/ai"
	"github.com/justicebuddy/justicebuddy/internal/database"
	"github.com/justicebuddy/justicebuddy/internal/jobs"
	"github.com/justicebuddy/justicebuddy/internal/models"
)

var ErrTemplateNotFound = errors.New("letter template not found")

// ValidationError carries one message per missing required field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// GenerateParams is the input for a letter generation request.
type GenerateParams struct {
	TemplateID    int64
	ClientName    string
	ClientEmail   string
	ClientPhone   string
	ClientMatters map[string]any
	DeviceID      string
	Async         bool
}

// Service runs the letter pipeline on top of the database, the AI
// dispatcher, and the background queue.
type Service struct {
	db         *database.DB
	dispatcher *ai.Dispatcher
	queue      jobs.Queue
	artifacts  *ArtifactStore
}

func NewService(db *database.DB, dispatcher *ai.Dispatcher, queue jobs.Queue, artifacts *ArtifactStore) *Service {
	return &Service{db: db, dispatcher: dispatcher, queue: queue, artifacts: artifacts}
}

// GenerateLetter validates the input and creates a letter request.
// Async requests return immediately in pending state and are processed
// on the queue; synchronous requests are processed before returning and
// come back in a terminal state. No request row is created when
// validation fails.
func (s *Service) GenerateLetter(ctx context.Context, params GenerateParams) (*models.LetterRequest, error) {
	template, err := s.db.GetActiveTemplate(params.TemplateID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("load template: %w", err)
	}

	if missing := template.MissingFields(params.ClientMatters); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	request := &models.LetterRequest{
		TemplateID:    template.ID,
		ClientName:    params.ClientName,
		ClientEmail:   params.ClientEmail,
		ClientPhone:   params.ClientPhone,
		ClientMatters: params.ClientMatters,
		DeviceID:      params.DeviceID,
	}
	if err := s.db.CreateLetterRequest(request); err != nil {
		return nil, fmt.Errorf("create letter request: %w", err)
	}
	request.TemplateName = template.Name

	if params.Async {
		s.queue.Submit(func(ctx context.Context) {
			s.process(ctx, request)
		})
		return request, nil
	}

	s.process(ctx, request)

	// Re-read so the caller sees the terminal state and generated letter.
	fresh, err := s.db.GetLetterRequest(request.ID)
	if err != nil {
		return request, nil
	}
	return fresh, nil
}

func (s *Service) process(ctx context.Context, request *models.LetterRequest) {
	if err := s.dispatcher.ProcessLetterRequest(ctx, request); err != nil {
		slog.Error("Letter request processing failed", "request_id", request.RequestID, "error", err)
	}
}

// RegenerateRequests re-queues the given requests for processing and
// returns how many were started. Only terminal requests are eligible;
// requests still pending or processing, and ids that do not exist, are
// skipped.
func (s *Service) RegenerateRequests(ids []int64) (int, error) {
	requests, err := s.db.ListRequestsByIDs(ids)
	if err != nil {
		return 0, fmt.Errorf("load requests: %w", err)
	}

	started := 0
	for i := range requests {
		request := requests[i]
		if !request.IsTerminal() {
			slog.Warn("Skipping regeneration of in-flight request", "request_id", request.RequestID, "status", request.Status)
			continue
		}
		s.queue.Submit(func(ctx context.Context) {
			s.process(ctx, &request)
		})
		started++
	}
	return started, nil
}

// UpdateLetter applies manual edits to a completed letter. The lookup
// is scoped to the owning device: a request id presented with the wrong
// device id behaves exactly like a missing request. Optional client
// fields are updated when non-nil. When the auto_regenerate_on_update
// setting is on, the document artifact is rewritten from the edited
// text.
func (s *Service) UpdateLetter(requestID, deviceID, letter string, clientName, clientEmail, clientPhone *string) (*models.LetterRequest, error) {
	request, err := s.db.GetLetterRequestByRequestID(requestID)
	if err != nil {
		return nil, err
	}
	if request.DeviceID != deviceID {
		return nil, database.ErrNotFound
	}
	if request.Status != models.StatusCompleted {
		return nil, fmt.Errorf("letter request %s is not completed", requestID)
	}

	if err := s.db.UpdateRequestLetter(request.ID, letter, clientName, clientEmail, clientPhone); err != nil {
		return nil, err
	}

	if s.db.GetBool("auto_regenerate_on_update", true) {
		path, err := s.artifacts.WriteLetter(request.RequestID, s.dispatcher.ActiveModel(), letter)
		if err != nil {
			slog.Error("Failed to regenerate letter document", "request_id", request.RequestID, "error", err)
		} else if err := s.db.SetRequestDocumentPath(request.ID, path); err != nil {
			slog.Error("Failed to record regenerated document path", "request_id", request.RequestID, "error", err)
		}
	}

	return s.db.GetLetterRequestByRequestID(requestID)
}

// ResolveDocument returns the absolute path and a download filename for
// a request's document artifact.
func (s *Service) ResolveDocument(request *models.LetterRequest) (abs, filename string, err error) {
	if request.DocumentPath == "" || !s.artifacts.Exists(request.DocumentPath) {
		return "", "", fmt.Errorf("no document available for request %s", request.RequestID)
	}
	abs, err = s.artifacts.Resolve(request.DocumentPath)
	if err != nil {
		return "", "", err
	}
	filename = fmt.Sprintf("%s_%s.txt", request.RequestID, time.Now().Format("20060102"))
	return abs, filename, nil
}
