// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/dagaz/internal/api"
	"github.com/starford/dagaz/internal/approve"
	"github.com/starford/dagaz/internal/index"
	"github.com/starford/dagaz/internal/mcpserver"
	"github.com/starford/dagaz/internal/orgservice"
	"github.com/starford/dagaz/internal/sse"
	"github.com/starford/dagaz/internal/storage"
	"github.com/starford/dagaz/internal/tasks"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := app.logger
	if logger == nil {
		logger = newLogger(cfg)
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("org_path", cfg.Org.Path),
		slog.String("tasks_file", cfg.Org.TasksFile),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, db, cleanup, err := buildCore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	src := index.Source{TasksFile: cfg.Org.TasksFile, JournalDir: cfg.Org.JournalDir}

	// Run initial sync.
	if err := index.Sync(db, store, src, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	svc := orgservice.NewService(serviceOptions(cfg, store, db, broker, logger))

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback. Watch returns nil on context
	// cancellation; anything else is a startup failure worth dying for.
	g.Go(func() error {
		if err := index.Watch(gCtx, db, store, cfg.Org.Path, src, logger, func(kind, path string) {
			broker.PublishChange("file", kind, path)
		}); err != nil {
			return fmt.Errorf("watcher: %w", err)
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		broker.Close()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP server on stdin/stdout with the given options.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := app.logger
	if logger == nil {
		// MCP speaks JSON-RPC on stdout; logs go to stderr.
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}

	store, db, cleanup, err := buildCore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	src := index.Source{TasksFile: cfg.Org.TasksFile, JournalDir: cfg.Org.JournalDir}
	if err := index.Sync(db, store, src, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	svc := orgservice.NewService(serviceOptions(cfg, store, db, nil, logger))
	srv := mcpserver.New(svc, sectionMap(cfg))
	logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}

func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func sectionMap(cfg *Config) tasks.SectionMap {
	return tasks.SectionMap{
		Open:      cfg.Sections.Open,
		Closed:    cfg.Sections.Closed,
		Checklist: cfg.Sections.Checklist,
	}
}

// buildCore prepares the org directory, storage provider, and index
// database. The returned cleanup closes the database.
func buildCore(cfg *Config) (storage.Provider, *index.DB, func(), error) {
	if err := os.MkdirAll(cfg.Org.Path, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create org dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Org.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init index: %w", err)
	}

	return store, db, func() { _ = db.Close() }, nil
}

func serviceOptions(cfg *Config, store storage.Provider, db *index.DB, broker *sse.Broker, logger *slog.Logger) orgservice.Options {
	return orgservice.Options{
		Store:     store,
		DB:        db,
		Broker:    broker,
		Approver:  newApprover(cfg, logger),
		Sections:  sectionMap(cfg),
		TasksFile: cfg.Org.TasksFile,
		Naming:    storage.JournalNaming{Dir: cfg.Org.JournalDir},
		Logger:    logger,
	}
}

// newApprover builds the write-approval gate: an interactive Emacs ediff
// review when enabled and emacsclient is reachable, auto-approval
// otherwise. The timeout wrapper keeps a wedged review from blocking
// writes forever.
func newApprover(cfg *Config, logger *slog.Logger) approve.Approver {
	if !cfg.Approval.Enabled {
		return approve.Auto{}
	}
	client := approve.FindClient(cfg.Approval.EmacsClient)
	if client == "" {
		logger.Warn("approval enabled but emacsclient not found, auto-approving")
		return approve.Auto{}
	}
	return approve.WithTimeout{
		Inner:   &approve.Emacs{Client: client, ElispFile: cfg.Approval.ElispFile},
		Timeout: cfg.Approval.Timeout(),
	}
}
