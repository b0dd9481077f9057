package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/justicebuddy/justicebuddy/internal/auth"
)

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)
		slog.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).String(),
		)
	})
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered", "error", err, "path", r.URL.Path)
				jsonError(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requireAdminKey checks a presented admin key, via Bearer token or the
// X-Admin-Key header, against the bcrypt hash stored in settings.
func (s *Server) requireAdminKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var providedKey string

		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			providedKey = strings.TrimPrefix(h, "Bearer ")
		}
		if providedKey == "" {
			providedKey = r.Header.Get("X-Admin-Key")
		}

		if providedKey == "" {
			jsonError(w, "Admin API key required", http.StatusUnauthorized)
			return
		}

		storedHash := s.db.GetString(auth.AdminKeyHashSetting, "")
		if storedHash == "" {
			slog.Error("Admin API key not configured")
			jsonError(w, "Admin API key not configured", http.StatusInternalServerError)
			return
		}

		if err := auth.CheckKey(providedKey, storedHash); err != nil {
			jsonError(w, "Invalid admin API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
