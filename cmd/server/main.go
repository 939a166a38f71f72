// chatgate - password-gated, quota-limited support chat server
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

	"github.com/ashureev/chatgate/internal/api"
	"github.com/ashureev/chatgate/internal/chat"
	"github.com/ashureev/chatgate/internal/config"
	"github.com/ashureev/chatgate/internal/credential"
	"github.com/ashureev/chatgate/internal/metrics"
	"github.com/ashureev/chatgate/internal/middleware"
	"github.com/ashureev/chatgate/internal/provider"
	"github.com/ashureev/chatgate/internal/session"
	"github.com/ashureev/chatgate/internal/store"
	"github.com/ashureev/chatgate/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

const retentionSweepInterval = time.Hour

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	gate := credential.New(cfg.PasswordList()...)
	completer := provider.NewClient(provider.Config{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Model:   cfg.Provider.Model,
		Timeout: cfg.Provider.Timeout,
		Logger:  logger,
	})

	slog.Info("Starting server",
		"port", cfg.Port,
		"passwords", gate.Len(),
		"model", completer.Model(),
		"message_limit", cfg.Session.MessageLimit,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies.
	sessions := session.NewStore(cfg.SystemPrompt())
	m := metrics.New(sessions.Len)

	var (
		pinger     api.Pinger
		convLogger = chat.NoopConversationLogger()
	)
	if cfg.ConversationLog.Enabled {
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

		if err := repo.Ping(ctx); err != nil {
			slog.Error("Database health check failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Conversation archive connected", "path", cfg.DBPath)

		convLogger, err = chat.NewConversationLogger(chat.ConversationLogConfig{
			QueueSize: cfg.ConversationLog.QueueSize,
		}, repo, logger)
		if err != nil {
			slog.Error("Failed to initialize conversation logger", "error", err)
			os.Exit(1)
		}

		store.StartRetentionWorker(ctx, repo, cfg.ConversationLog.Retention, retentionSweepInterval)
		pinger = repo
	} else {
		slog.Info("Conversation archive disabled")
	}

	svc := chat.NewService(gate, sessions, completer, chat.Config{
		MessageLimit: cfg.Session.MessageLimit,
		MaxTokens:    cfg.Provider.MaxTokens,
		QueueTimeout: cfg.Session.QueueTimeout,
	},
		chat.WithConversationLogger(convLogger),
		chat.WithMetrics(m),
		chat.WithLogger(logger),
	)

	// Setup router.
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	api.NewHealthHandler(pinger).RegisterHealth(r)
	r.Handle("/metrics", m.Handler())
	chat.NewHandler(svc).RegisterRoutes(r)

	// Frontend catch-all.
	r.Handle("/*", web.SPAHandler(cfg.StaticDir))

	// A chat turn waits at most QueueTimeout for its session and then at most
	// the provider timeout, so a recorded reply is always written before
	// WriteTimeout fires.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Session.QueueTimeout + cfg.Provider.Timeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	session.StartSweeper(ctx, sessions, cfg.Session.TTL, cfg.Session.SweepInterval, func(ids []string) {
		m.ObserveEvictions(len(ids))
	})

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
	}

	if err := convLogger.Close(); err != nil {
		slog.Error("Failed to flush conversation archive", "error", err)
	}

	slog.Info("Server stopped successfully")
}
