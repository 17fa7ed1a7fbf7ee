// Package app wires the supply-chain analytics service together and
// manages its lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	httpapi "github.com/ayusingh-54/supply-chain-analytics/internal/api/http"
	"github.com/ayusingh-54/supply-chain-analytics/internal/config"
	"github.com/ayusingh-54/supply-chain-analytics/internal/events"
	"github.com/ayusingh-54/supply-chain-analytics/internal/graph"
	"github.com/ayusingh-54/supply-chain-analytics/internal/observability"
	"github.com/ayusingh-54/supply-chain-analytics/internal/pipeline"
	"github.com/ayusingh-54/supply-chain-analytics/internal/server"
	"github.com/ayusingh-54/supply-chain-analytics/internal/storage"
	"github.com/ayusingh-54/supply-chain-analytics/internal/store"
)

// App owns every service component and its lifecycle.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	// Shared resources
	files    storage.ObjectStorage
	store    *store.Store
	mirror   *graph.MemoryMirror
	syncer   *graph.Syncer
	bus      *events.Bus
	stats    *observability.UploadStats
	shutdown *server.ShutdownManager

	httpServer *http.Server

	// Lifecycle
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

	logger, err := buildLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &App{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// buildLogger constructs the zap logger from the log configuration.
func buildLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, err
		}
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// Logger exposes the application logger for the main package.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Start initializes shared resources and starts the API server.
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

	if err := a.initResources(ctx); err != nil {
		a.fail()
		return fmt.Errorf("failed to initialize resources: %w", err)
	}

	if err := a.startHTTPServer(); err != nil {
		a.fail()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	a.logger.Info("supply-chain analytics service started",
		zap.String("addr", a.cfg.HTTP.Addr),
		zap.String("storage", a.cfg.Storage.Type),
		zap.Bool("graph", a.cfg.Graph.Enabled),
	)
	return nil
}

// initResources initializes storage, the analytics store, and the
// graph mirror.
func (a *App) initResources(ctx context.Context) error {
	var err error

	switch a.cfg.Storage.Type {
	case "local":
		a.files, err = storage.NewLocalStorage(a.cfg.Storage.Path)
	case "s3":
		s3Cfg := storage.DefaultS3Config()
		if a.cfg.Storage.S3.Region != "" {
			s3Cfg.Region = a.cfg.Storage.S3.Region
		}
		if a.cfg.Storage.S3.Endpoint != "" {
			s3Cfg.Endpoint = a.cfg.Storage.S3.Endpoint
		}
		s3Cfg.UsePathStyle = a.cfg.Storage.S3.UsePathStyle
		a.files, err = storage.NewS3Storage(ctx, a.cfg.Storage.S3.Bucket, s3Cfg)
	default:
		return fmt.Errorf("unsupported storage type: %s", a.cfg.Storage.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.logger.Info("storage initialized", zap.String("type", a.cfg.Storage.Type))

	a.store, err = store.New(a.cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("failed to open analytics store: %w", err)
	}
	a.logger.Info("analytics store opened", zap.String("path", a.cfg.DatabasePath()))

	if a.cfg.Graph.Enabled {
		a.mirror = graph.NewMemoryMirror()
		a.syncer = graph.NewSyncer(a.store, a.mirror, a.logger)
	}

	a.shutdown = server.NewShutdownManager(server.DefaultShutdownConfig(), a.logger)
	a.shutdown.RegisterCloser(server.CloserFunc(a.store.Close))

	a.bus = events.NewBus(64)
	a.stats = observability.NewUploadStats(24 * time.Hour)
	a.startEventLog()

	return nil
}

// startEventLog drains the event bus into the structured log so every
// upload leaves an audit trail even when the caller discards the API
// response.
func (a *App) startEventLog() {
	sub := a.bus.Subscribe()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for evt := range sub.Ch {
			a.logger.Info("upload event",
				zap.String("type", evt.Type.String()),
				zap.String("category", string(evt.Category)),
				zap.String("upload_id", evt.UploadID),
				zap.String("filename", evt.Filename),
				zap.Int("rows", evt.RowCount),
				zap.String("sync_status", evt.SyncStatus),
			)
		}
	}()

	a.shutdown.RegisterCloser(server.CloserFunc(func() error {
		a.bus.Unsubscribe(sub.ID)
		return nil
	}))
}

// startHTTPServer builds the router and starts the API server.
func (a *App) startHTTPServer() error {
	orchestrator := pipeline.New(a.store, a.files, a.syncer, a.logger,
		pipeline.WithEventBus(a.bus),
		pipeline.WithStats(a.stats),
	)

	var mirror graph.Mirror
	if a.mirror != nil {
		mirror = a.mirror
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Orchestrator:   orchestrator,
		Store:          a.store,
		Syncer:         a.syncer,
		Mirror:         mirror,
		Stats:          a.stats,
		Bus:            a.bus,
		Logger:         a.logger,
		MaxUploadBytes: a.cfg.MaxFileSizeBytes(),
		PreviewRows:    a.cfg.Upload.PreviewRows,
	})

	a.httpServer = &http.Server{
		Addr:         a.cfg.HTTP.Addr,
		Handler:      server.Middleware(a.shutdown)(router),
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}
	a.shutdown.RegisterHTTPServer(a.httpServer)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.logger.Info("HTTP server listening", zap.String("addr", a.cfg.HTTP.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// WaitForShutdown blocks until a shutdown signal is received.
func (a *App) WaitForShutdown(ctx context.Context) error {
	return a.shutdown.ListenForSignals(ctx)
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

	if a.cancel != nil {
		a.cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := a.shutdown.Shutdown(shutdownCtx, "stop requested")

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

	a.cleanup()
	a.logger.Info("supply-chain analytics service stopped")
	return err
}

// fail resets lifecycle state after a failed start.
func (a *App) fail() {
	a.mu.Lock()
	a.running = false
	a.mu.Unlock()

	if a.store != nil {
		a.store.Close()
	}
	a.cleanup()
}

// cleanup releases resources that are not managed by the shutdown
// manager.
func (a *App) cleanup() {
	if a.logger != nil {
		a.logger.Sync()
	}
}
