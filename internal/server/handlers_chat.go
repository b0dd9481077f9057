package server

import (
	"log/slog"
	"net/http"

	"github.com/justicebuddy/justicebuddy/internal/chat"
)

type chatRequest struct {
	Message             string              `json:"message"`
	ConversationHistory []chat.HistoryEntry `json:"conversation_history"`
	ModelName           string              `json:"model_name"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		jsonValidationError(w, []string{"message is required"})
		return
	}

	reply, err := s.chat.Chat(r.Context(), req.Message, req.ConversationHistory, req.ModelName)
	if err != nil {
		slog.Error("Chat request failed", "error", err)
		jsonError(w, "The assistant is currently unavailable. Please try again later.", http.StatusBadGateway)
		return
	}

	jsonSuccess(w, http.StatusOK, reply)
}

func (s *Server) handleChatRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.chat.Rules(r.URL.Query().Get("model_name"))
	if err != nil {
		slog.Error("Failed to load chat rules", "error", err)
		jsonError(w, "Failed to load chat rules", http.StatusInternalServerError)
		return
	}

	jsonSuccess(w, http.StatusOK, map[string]any{"rules": rules})
}

func (s *Server) handlePublicSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.db.GetPublicSettings()
	if err != nil {
		slog.Error("Failed to load public settings", "error", err)
		jsonError(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	jsonSuccess(w, http.StatusOK, map[string]any{"settings": settings})
}
