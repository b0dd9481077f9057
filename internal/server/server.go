// Package server exposes the HTTP API: public letter and chat
// endpoints, and a key-protected admin surface for model management.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/justicebuddy/justicebuddy/internal/ai"
	"github.com/justicebuddy/justicebuddy/internal/chat"
	"github.com/justicebuddy/justicebuddy/internal/config"
	"github.com/justicebuddy/justicebuddy/internal/database"
	"github.com/justicebuddy/justicebuddy/internal/letters"
)

type Server struct {
	cfg        config.Config
	db         *database.DB
	letters    *letters.Service
	chat       *chat.Service
	dispatcher *ai.Dispatcher
	httpSrv    *http.Server
}

func New(cfg config.Config, db *database.DB, letterSvc *letters.Service, chatSvc *chat.Service, dispatcher *ai.Dispatcher) *Server {
	return &Server{
		cfg:        cfg,
		db:         db,
		letters:    letterSvc,
		chat:       chatSvc,
		dispatcher: dispatcher,
	}
}

// Start sets up routes and starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	slog.Info("Starting server", "addr", addr)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonSuccess(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Router builds the full route tree. Exposed for handler tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/letter-templates", s.handleListTemplates)
		r.Get("/letter-templates/{id}", s.handleGetTemplate)
		r.Get("/letter-categories", s.handleLetterCategories)

		r.Post("/letters/generate", s.handleGenerateLetter)
		r.Patch("/letters/{requestID}", s.handleUpdateLetter)

		r.Get("/letter-requests/status/{requestID}", s.handleRequestStatus)
		r.Get("/letter-requests/{requestID}/download", s.handleDownloadLetter)
		r.Get("/letter-requests/{requestID}/file", s.handleViewLetterFile)
		r.Get("/letter-requests/history", s.handleRequestHistory)

		r.Post("/chat", s.handleChat)
		r.Get("/chat/rules", s.handleChatRules)

		r.Get("/settings", s.handlePublicSettings)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdminKey)
			r.Get("/models", s.handleAdminModels)
			r.Post("/models/switch", s.handleAdminSwitchModel)
			r.Post("/models/test", s.handleAdminTestModel)
			r.Post("/letters/regenerate", s.handleAdminRegenerate)
			r.Get("/settings", s.handleAdminListSettings)
			r.Put("/settings", s.handleAdminUpdateSettings)
		})
	})

	return r
}
