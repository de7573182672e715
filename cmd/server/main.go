package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/code-geek/ai-project-template/api"
	"github.com/code-geek/ai-project-template/internal/cache"
	"github.com/code-geek/ai-project-template/internal/config"
	"github.com/code-geek/ai-project-template/internal/database"
	"github.com/code-geek/ai-project-template/internal/health"
	"github.com/code-geek/ai-project-template/internal/identity"
	"github.com/code-geek/ai-project-template/pkg/logger"
	"github.com/code-geek/ai-project-template/pkg/metrics"
	"github.com/code-geek/ai-project-template/pkg/telemetry"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Create logger
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	zapLogger, err := logger.NewLogger(logLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Telemetry
	if cfg.Tracing.Enabled {
		shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{Tracing: true, Metrics: true})
		if err != nil {
			zapLogger.Fatal("Failed to set up telemetry", zap.Error(err))
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				zapLogger.Error("Telemetry shutdown failed", zap.Error(err))
			}
		}()
	}

	// Connect to the database
	db, err := database.Open(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Apply schema migrations when configured to
	migrator := database.NewMigrator(db, zapLogger)
	if cfg.Database.AutoMigrate {
		if err := migrator.Run(ctx); err != nil {
			zapLogger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// Cache backend
	store, err := cache.New(cfg.Cache)
	if err != nil {
		zapLogger.Fatal("Failed to create cache", zap.Error(err))
	}
	defer store.Close()

	// Services
	identitySvc := identity.NewService(zapLogger, db, cfg.JWT)
	healthChecker := health.NewChecker(zapLogger, db, store, migrator, cfg.App.Name, cfg.App.Version)

	// Schedule DB pool metrics collection every 30s
	tickerDB := time.NewTicker(30 * time.Second)
	defer tickerDB.Stop()
	go func() {
		for range tickerDB.C {
			if sqlDB, err := db.DB(); err == nil {
				stats := sqlDB.Stats()
				metrics.DBOpenConns.WithLabelValues("primary").Set(float64(stats.OpenConnections))
				metrics.DBIdleConns.WithLabelValues("primary").Set(float64(stats.Idle))
				metrics.DBInUseConns.WithLabelValues("primary").Set(float64(stats.InUse))
			}
		}
	}()

	// Create API server
	apiServer := api.NewServer(cfg, zapLogger, identitySvc, healthChecker)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      apiServer.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("Starting API server", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	// Wait for interrupt to shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("Server exited properly")
}
