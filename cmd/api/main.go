package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/task-service/internal/auth"
	"github.com/Dan9191/task-service/internal/config"
	"github.com/Dan9191/task-service/internal/handler"
	"github.com/Dan9191/task-service/internal/health"
	"github.com/Dan9191/task-service/internal/notify"
	"github.com/Dan9191/task-service/internal/repository"
	"github.com/Dan9191/task-service/internal/server"
	"github.com/Dan9191/task-service/internal/service"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize store
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer closeStore()

	// Initialize layers
	tokens, err := auth.NewTokenManager(cfg.JWTKeyID, cfg.JWTSecret, cfg.JWTPreviousKeys, cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("Failed to initialize tokens: %v", err)
	}
	var notifier service.Notifier = notify.Noop{}
	if cfg.NotificationsEnabled() {
		notifier = notify.NewSender(cfg, logger)
	}
	svc := service.NewService(store, auth.NewPasswordHasher(cfg.BcryptCost), tokens, notifier, logger, cfg.EnforceTaskOwnership)
	h := handler.NewHandler(svc, logger)

	// Store heartbeat
	monitor := health.NewMonitor(store, logger, 5*time.Second)
	monitor.Check(ctx)
	if err := monitor.Start(cfg.HealthcheckSchedule); err != nil {
		logger.Fatalf("Failed to start health monitor: %v", err)
	}
	defer monitor.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.NewRouter(h, tokens, monitor, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Errorf("Server failed: %v", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Graceful shutdown failed: %v", err)
		}
	}
}

// openStore connects the store selected by STORE_DRIVER and returns a closer.
func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repository.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		repo := repository.NewPostgresRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("PostgreSQL connected")
		return repo, func() { db.Close() }, nil

	case config.StoreMongo:
		client, err := repository.ConnectMongo(ctx, cfg.MongoURL, 10*time.Second)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("MongoDB connected")
		closer := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Errorf("Failed to disconnect from MongoDB: %v", err)
			}
		}
		return repository.NewMongoRepository(client, cfg.MongoDatabase), closer, nil

	default:
		logger.Warn("Using in-memory store; data is lost on restart")
		return repository.NewMemoryRepository(), func() {}, nil
	}
}
