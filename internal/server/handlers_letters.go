package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/justicebuddy/justicebuddy/internal/database"
	"github.com/justicebuddy/justicebuddy/internal/letters"
	"github.com/justicebuddy/justicebuddy/internal/models"
)

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	search := r.URL.Query().Get("search")

	templates, err := s.db.ListActiveTemplates(category, search)
	if err != nil {
		slog.Error("Failed to list templates", "error", err)
		jsonError(w, "Failed to load letter templates", http.StatusInternalServerError)
		return
	}

	jsonSuccess(w, http.StatusOK, map[string]any{
		"templates":  templates,
		"categories": database.TemplateCategories,
	})
}

func (s *Server) handleLetterCategories(w http.ResponseWriter, r *http.Request) {
	jsonSuccess(w, http.StatusOK, map[string]any{"categories": database.TemplateCategories})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "id")

	var (
		template *models.LetterTemplate
		err      error
	)
	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
		template, err = s.db.GetActiveTemplate(id)
	} else {
		template, err = s.db.GetTemplateBySlug(ref)
	}
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			jsonError(w, "Letter template not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to load template", "ref", ref, "error", err)
		jsonError(w, "Failed to load letter template", http.StatusInternalServerError)
		return
	}

	jsonSuccess(w, http.StatusOK, map[string]any{"template": template})
}

type generateLetterRequest struct {
	TemplateID    int64          `json:"template_id"`
	ClientName    string         `json:"client_name"`
	ClientEmail   string         `json:"client_email"`
	ClientPhone   string         `json:"client_phone"`
	ClientMatters map[string]any `json:"client_matters"`
	DeviceID      string         `json:"device_id"`
	GenerateAsync *bool          `json:"generate_async"`
}

func (s *Server) handleGenerateLetter(w http.ResponseWriter, r *http.Request) {
	var req generateLetterRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var errs []string
	if req.TemplateID == 0 {
		errs = append(errs, "template_id is required")
	}
	if req.ClientName == "" {
		errs = append(errs, "client_name is required")
	}
	if req.DeviceID == "" {
		errs = append(errs, "device_id is required")
	}
	if len(errs) > 0 {
		jsonValidationError(w, errs)
		return
	}

	async := req.GenerateAsync == nil || *req.GenerateAsync

	request, err := s.letters.GenerateLetter(r.Context(), letters.GenerateParams{
		TemplateID:    req.TemplateID,
		ClientName:    req.ClientName,
		ClientEmail:   req.ClientEmail,
		ClientPhone:   req.ClientPhone,
		ClientMatters: req.ClientMatters,
		DeviceID:      req.DeviceID,
		Async:         async,
	})
	if err != nil {
		var verr *letters.ValidationError
		switch {
		case errors.As(err, &verr):
			jsonValidationError(w, verr.Fields)
		case errors.Is(err, letters.ErrTemplateNotFound):
			jsonError(w, "Letter template not found", http.StatusNotFound)
		default:
			slog.Error("Letter generation failed", "error", err)
			jsonError(w, "Failed to generate letter", http.StatusInternalServerError)
		}
		return
	}

	if async {
		jsonMessage(w, http.StatusAccepted, map[string]any{
			"request_id":       request.RequestID,
			"status":           request.Status,
			"check_status_url": s.baseURL(r) + "/api/letter-requests/status/" + request.RequestID,
		}, "Your letter is being generated. Check the status using the request ID.")
		return
	}

	// Synchronous processing has already run to a terminal state.
	if request.Status != models.StatusCompleted {
		message := request.ErrorMessage
		if message == "" {
			message = "Letter generation failed"
		}
		jsonError(w, message, http.StatusInternalServerError)
		return
	}
	jsonSuccess(w, http.StatusOK, map[string]any{"request": request})
}

// baseURL prefers the configured public URL and falls back to the
// request's host.
func (s *Server) baseURL(r *http.Request) string {
	if s.cfg.Server.BaseURL != "" {
		return s.cfg.Server.BaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (s *Server) handleRequestStatus(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	request, err := s.db.GetLetterRequestByRequestID(requestID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			jsonError(w, "Letter request not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to load letter request", "request_id", requestID, "error", err)
		jsonError(w, "Failed to load letter request", http.StatusInternalServerError)
		return
	}

	jsonSuccess(w, http.StatusOK, map[string]any{"request": request})
}

type updateLetterRequest struct {
	GeneratedLetter string  `json:"generated_letter"`
	DeviceID        string  `json:"device_id"`
	ClientName      *string `json:"client_name"`
	ClientEmail     *string `json:"client_email"`
	ClientPhone     *string `json:"client_phone"`
}

func (s *Server) handleUpdateLetter(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	var req updateLetterRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	var missing []string
	if req.GeneratedLetter == "" {
		missing = append(missing, "generated_letter is required")
	}
	if req.DeviceID == "" {
		missing = append(missing, "device_id is required")
	}
	if len(missing) > 0 {
		jsonValidationError(w, missing)
		return
	}

	request, err := s.letters.UpdateLetter(requestID, req.DeviceID, req.GeneratedLetter, req.ClientName, req.ClientEmail, req.ClientPhone)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			jsonError(w, "Letter request not found or not completed", http.StatusNotFound)
			return
		}
		slog.Error("Failed to update letter", "request_id", requestID, "error", err)
		jsonError(w, "Failed to update letter", http.StatusInternalServerError)
		return
	}

	jsonMessage(w, http.StatusOK, map[string]any{"request": request}, "Letter updated successfully")
}

func (s *Server) handleDownloadLetter(w http.ResponseWriter, r *http.Request) {
	s.serveLetterFile(w, r, true)
}

func (s *Server) handleViewLetterFile(w http.ResponseWriter, r *http.Request) {
	s.serveLetterFile(w, r, false)
}

func (s *Server) serveLetterFile(w http.ResponseWriter, r *http.Request, attachment bool) {
	requestID := chi.URLParam(r, "requestID")

	request, err := s.db.GetLetterRequestByRequestID(requestID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			jsonError(w, "Letter request not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to load letter request", "request_id", requestID, "error", err)
		jsonError(w, "Failed to load letter request", http.StatusInternalServerError)
		return
	}

	abs, filename, err := s.letters.ResolveDocument(request)
	if err != nil {
		jsonError(w, "No document available for this request", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if attachment {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	http.ServeFile(w, r, abs)
}

func (s *Server) handleRequestHistory(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	deviceID := r.URL.Query().Get("device_id")
	if email == "" && deviceID == "" {
		jsonError(w, "email or device_id parameter is required", http.StatusBadRequest)
		return
	}

	limit := queryInt(r, "limit", 20)
	if limit > 100 {
		limit = 100
	}
	offset := queryInt(r, "offset", 0)

	var (
		requests []models.LetterRequest
		err      error
	)
	if email != "" {
		requests, err = s.db.ListRequestsByEmail(email, limit, offset)
	} else {
		requests, err = s.db.ListRequestsByDevice(deviceID, limit, offset)
	}
	if err != nil {
		slog.Error("Failed to load request history", "error", err)
		jsonError(w, "Failed to load request history", http.StatusInternalServerError)
		return
	}

	jsonSuccess(w, http.StatusOK, map[string]any{"requests": requests})
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
