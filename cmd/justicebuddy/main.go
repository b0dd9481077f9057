package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/justicebuddy/justicebuddy/internal/ai"
	"github.com/justicebuddy/justicebuddy/internal/auth"
	"github.com/justicebuddy/justicebuddy/internal/chat"
	"github.com/justicebuddy/justicebuddy/internal/config"
	"github.com/justicebuddy/justicebuddy/internal/database"
	"github.com/justicebuddy/justicebuddy/internal/jobs"
	"github.com/justicebuddy/justicebuddy/internal/letters"
	"github.com/justicebuddy/justicebuddy/internal/models"
	"github.com/justicebuddy/justicebuddy/internal/server"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	issueAdminKey := flag.Bool("issue-admin-key", false, "Generate a new admin API key, store its hash, print it, and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("JusticeBuddy %s\n", version)
		os.Exit(0)
	}

	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	var logLevel slog.Level
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting JusticeBuddy", "version", version)

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("Database initialized", "path", cfg.Database.Path)

	if *issueAdminKey {
		issueKey(db)
		return
	}

	chatgpt := ai.NewChatGPTProvider(cfg.OpenAI)
	gemini := ai.NewGeminiProvider(cfg.Gemini)
	artifacts := letters.NewArtifactStore(cfg.Storage.Root)
	dispatcher := ai.NewDispatcher(db, db, artifacts, chatgpt, gemini)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := jobs.NewRunner(ctx)
	letterSvc := letters.NewService(db, dispatcher, queue, artifacts)
	chatSvc := chat.NewService(db, dispatcher)

	srv := server.New(cfg, db, letterSvc, chatSvc, dispatcher)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)

		// Let in-flight letter requests land in a terminal state.
		queue.Wait()
		cancel()
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// issueKey mints a fresh admin API key, persists only its hash, and
// prints the plaintext once.
func issueKey(db *database.DB) {
	key, err := auth.GenerateKey()
	if err != nil {
		slog.Error("Failed to generate admin key", "error", err)
		os.Exit(1)
	}
	hash, err := auth.HashKey(key)
	if err != nil {
		slog.Error("Failed to hash admin key", "error", err)
		os.Exit(1)
	}
	if err := db.SetValue(auth.AdminKeyHashSetting, hash, models.SettingString, "auth",
		"Bcrypt hash of the admin API key"); err != nil {
		slog.Error("Failed to store admin key hash", "error", err)
		os.Exit(1)
	}

	fmt.Println("New admin API key (store it now, it will not be shown again):")
	fmt.Println(key)
}
