package server

import (
	"log/slog"
	"net/http"

	"github.com/justicebuddy/justicebuddy/internal/models"
)

func (s *Server) handleAdminModels(w http.ResponseWriter, r *http.Request) {
	jsonSuccess(w, http.StatusOK, map[string]any{
		"available_models": s.dispatcher.AvailableModels(),
		"active_model":     s.dispatcher.ActiveModel(),
	})
}

type switchModelRequest struct {
	Model string `json:"model"`
}

func (s *Server) handleAdminSwitchModel(w http.ResponseWriter, r *http.Request) {
	var req switchModelRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Model == "" {
		jsonValidationError(w, []string{"model is required"})
		return
	}

	if !s.dispatcher.SwitchModel(req.Model) {
		jsonError(w, "Unsupported AI model: "+req.Model, http.StatusUnprocessableEntity)
		return
	}

	jsonMessage(w, http.StatusOK, map[string]any{
		"active_model": s.dispatcher.ActiveModel(),
	}, "AI model switched to "+req.Model)
}

func (s *Server) handleAdminTestModel(w http.ResponseWriter, r *http.Request) {
	var req switchModelRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	model := req.Model
	if model == "" {
		model = s.dispatcher.ActiveModel()
	}

	result := s.dispatcher.TestModel(r.Context(), model)
	jsonSuccess(w, http.StatusOK, map[string]any{"result": result})
}

type regenerateRequest struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) handleAdminRegenerate(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.IDs) == 0 {
		jsonValidationError(w, []string{"ids is required"})
		return
	}

	started, err := s.letters.RegenerateRequests(req.IDs)
	if err != nil {
		slog.Error("Bulk regeneration failed", "error", err)
		jsonError(w, "Failed to start regeneration", http.StatusInternalServerError)
		return
	}

	jsonMessage(w, http.StatusAccepted, map[string]any{
		"requested": len(req.IDs),
		"started":   started,
	}, "Regeneration started")
}

func (s *Server) handleAdminListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.db.AllSettings()
	if err != nil {
		slog.Error("Failed to load settings", "error", err)
		jsonError(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	jsonSuccess(w, http.StatusOK, map[string]any{"settings": settings})
}

type updateSettingRequest struct {
	Key         string `json:"key"`
	Value       any    `json:"value"`
	Type        string `json:"type"`
	Group       string `json:"group"`
	Description string `json:"description"`
}

func (s *Server) handleAdminUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var reqs []updateSettingRequest
	if err := decodeJSON(r, &reqs); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	for _, req := range reqs {
		if req.Key == "" {
			jsonValidationError(w, []string{"key is required for every setting"})
			return
		}
		typ := req.Type
		if typ == "" {
			typ = models.SettingString
		}
		if err := s.db.SetValue(req.Key, req.Value, typ, req.Group, req.Description); err != nil {
			slog.Error("Failed to update setting", "key", req.Key, "error", err)
			jsonError(w, "Failed to update setting "+req.Key, http.StatusInternalServerError)
			return
		}
	}

	jsonMessage(w, http.StatusOK, nil, "Settings updated")
}
