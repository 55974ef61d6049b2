// Package app wires configuration, storage, the model registry, and the
// agents into a running Loom service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/loomhr/loom/internal/agents"
	httpapi "github.com/loomhr/loom/internal/api/http"
	"github.com/loomhr/loom/internal/config"
	"github.com/loomhr/loom/internal/model"
	"github.com/loomhr/loom/internal/registry"
	"github.com/loomhr/loom/internal/server"
	"github.com/loomhr/loom/internal/storage"
)

// App manages the Loom service lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	storage  storage.ObjectStorage
	registry registry.Registry
	shutdown *server.ShutdownManager

	httpServer *http.Server

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new App with the given configuration.
func New(cfg *config.Config) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	return &App{
		cfg:    cfg,
		logger: NewLogger(cfg.Logging),
	}, nil
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// NewLogger builds an slog logger from the logging configuration.
func NewLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// Start initializes shared resources and starts the HTTP server.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app is already running")
	}
	a.running = true
	a.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.initSharedResources(ctx); err != nil {
		a.cleanup()
		return fmt.Errorf("failed to initialize shared resources: %w", err)
	}

	if err := a.startHTTPServer(); err != nil {
		a.cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	a.logger.Info("loom started", "addr", a.cfg.Addr)
	return nil
}

// initSharedResources initializes storage, the model registry, and the
// shutdown manager.
func (a *App) initSharedResources(ctx context.Context) error {
	var err error

	switch a.cfg.Storage.Type {
	case "local":
		a.storage, err = storage.NewLocalStorage(a.cfg.Storage.Path)
	case "s3":
		s3Cfg := storage.DefaultS3Config()
		if a.cfg.Storage.S3.Region != "" {
			s3Cfg.Region = a.cfg.Storage.S3.Region
		}
		if a.cfg.Storage.S3.Endpoint != "" {
			s3Cfg.Endpoint = a.cfg.Storage.S3.Endpoint
		}
		s3Cfg.UsePathStyle = a.cfg.Storage.S3.UsePathStyle
		a.storage, err = storage.NewS3Storage(ctx, a.cfg.Storage.S3.Bucket, s3Cfg)
	default:
		return fmt.Errorf("unsupported storage type: %s", a.cfg.Storage.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.logger.Info("storage initialized", "type", a.cfg.Storage.Type)

	a.registry, err = registry.NewSQLiteRegistry(a.cfg.RegistryPath())
	if err != nil {
		return fmt.Errorf("failed to initialize model registry: %w", err)
	}
	a.logger.Info("model registry initialized", "path", a.cfg.RegistryPath())

	a.shutdown = server.NewShutdownManager(server.DefaultShutdownConfig())
	a.shutdown.RegisterCloser(a.registry)

	return nil
}

// startHTTPServer builds the agents, mounts the API, and starts serving.
func (a *App) startHTTPServer() error {
	artifacts := model.NewArtifactStore(a.storage)

	attrition, err := agents.NewAttrition(artifacts, a.registry,
		agents.WithForestConfig(a.cfg.ForestConfig()),
		agents.WithAttritionLogger(a.logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create attrition agent: %w", err)
	}

	diversity, err := agents.NewDiversity()
	if err != nil {
		return fmt.Errorf("failed to create diversity agent: %w", err)
	}

	simulation, err := agents.NewSimulation()
	if err != nil {
		return fmt.Errorf("failed to create simulation agent: %w", err)
	}

	handlers, err := httpapi.NewHandlers(
		attrition,
		diversity,
		agents.NewPlanning(),
		agents.NewProductivity(),
		simulation,
		agents.NewSkillGap(nil),
		a.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create API handlers: %w", err)
	}

	a.httpServer = &http.Server{
		Addr:         a.cfg.Addr,
		Handler:      server.ShutdownMiddleware(a.shutdown)(handlers.Router()),
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.logger.Info("HTTP server listening", "addr", a.cfg.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the service and releases resources.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	a.mu.Unlock()

	a.logger.Info("initiating graceful shutdown")

	if a.cancel != nil {
		a.cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("HTTP server shutdown error", "error", err)
		}
	}

	if a.shutdown != nil {
		if err := a.shutdown.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("shutdown manager error", "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		a.logger.Warn("shutdown timeout, some goroutines may not have finished")
	}

	a.logger.Info("loom stopped")
	return nil
}

// cleanup releases shared resources after a failed start.
func (a *App) cleanup() {
	if a.registry != nil {
		a.registry.Close()
	}
}

// WaitForShutdown blocks until a shutdown signal is received.
func (a *App) WaitForShutdown(ctx context.Context) error {
	return a.shutdown.ListenForSignals(ctx)
}
