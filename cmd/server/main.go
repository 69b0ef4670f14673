// Conversational club consultant server for the fan-club.kz platform.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/fanclubkz/consultant/internal/agents"
	"github.com/fanclubkz/consultant/internal/api"
	"github.com/fanclubkz/consultant/internal/chat"
	"github.com/fanclubkz/consultant/internal/completion"
	"github.com/fanclubkz/consultant/internal/config"
	"github.com/fanclubkz/consultant/internal/identity"
	"github.com/fanclubkz/consultant/internal/intent"
	"github.com/fanclubkz/consultant/internal/knowledge"
	"github.com/fanclubkz/consultant/internal/middleware"
	"github.com/fanclubkz/consultant/internal/rag"
	"github.com/fanclubkz/consultant/internal/store"
	"github.com/fanclubkz/consultant/internal/workflow"
)

const contextCacheTTL = time.Hour

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting consultant server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Completion provider (optional: the service degrades to canned
	// replies without it, the creation workflow keeps working).
	var completions completion.Client
	aiEnabled := cfg.AIEnabled
	if aiEnabled && cfg.OpenAI.APIKey != "" {
		client, err := completion.NewOpenAIClient(completion.OpenAIConfig{
			APIKey:    cfg.OpenAI.APIKey,
			BaseURL:   cfg.OpenAI.BaseURL,
			Model:     cfg.OpenAI.Model,
			MaxTokens: int64(cfg.OpenAI.MaxTokens),
			Timeout:   cfg.OpenAI.Timeout,
		})
		if err != nil {
			slog.Error("Failed to initialize completion client", "error", err)
			os.Exit(1)
		}
		completions = client
		slog.Info("Completion client ready", "model", cfg.OpenAI.Model)
	} else if aiEnabled {
		slog.Warn("OPENAI_API_KEY not set, assistant will serve fallback replies")
	} else {
		slog.Info("Assistant disabled by configuration")
	}

	// Assistant pipeline.
	kb := knowledge.New()
	classifier := intent.NewClassifier()
	assembler := rag.NewAssembler(kb, contextCacheTTL)
	registry := agents.DefaultRegistry()
	router := agents.NewRouter(registry, completions)

	flowStore := workflow.NewMemoryStore(cfg.ConversationTTL)
	flow := workflow.New(flowStore, repo)

	conversationLogger, err := chat.NewConversationLogger(chat.ConversationLogConfig{
		Enabled:       cfg.ConversationLog.Enabled,
		Dir:           cfg.ConversationLog.Dir,
		GlobalEnabled: cfg.ConversationLog.GlobalEnabled,
		GlobalPath:    cfg.ConversationLog.GlobalPath,
		QueueSize:     cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize conversation logger", "error", err)
		os.Exit(1)
	}

	svc := chat.NewService(classifier, assembler, registry, router, flow, completions, repo, conversationLogger, cfg.MaxMessageLen)

	rateLimiter := chat.NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration)
	chatHandler := chat.NewHandler(svc, rateLimiter, aiEnabled)
	defer chatHandler.Close()
	wsHandler := chat.NewWSHandler(svc, rateLimiter, aiEnabled)
	clubsHandler := api.NewClubsHandler(repo)
	healthHandler := api.NewHealthHandler(repo, aiEnabled)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(corsOrigins(cfg)))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	healthHandler.RegisterRoutes(r)
	clubsHandler.RegisterRoutes(r)
	chatHandler.RegisterRoutes(r)
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	// Start conversation state sweeper.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flowStore.StartSweeper(ctx, time.Minute)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

func corsOrigins(cfg *config.Config) []string {
	if cfg.FrontendURL == "" {
		return []string{"*"}
	}
	return []string{cfg.FrontendURL}
}
