package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/code-geek/ai-project-template/internal/config"
	"github.com/code-geek/ai-project-template/internal/database"
	"github.com/code-geek/ai-project-template/pkg/logger"
)

func main() {
	rollback := flag.String("rollback", "", "roll back the migration with this version")
	statusOnly := flag.Bool("status", false, "print migration status without applying anything")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	zapLogger, err := logger.NewLogger(logLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	migrator := database.NewMigrator(db, zapLogger)
	ctx := context.Background()

	switch {
	case *rollback != "":
		if err := migrator.Rollback(ctx, *rollback); err != nil {
			zapLogger.Fatal("Rollback failed", zap.Error(err))
		}
	case *statusOnly:
		// Fall through to the status report below
	default:
		if err := migrator.Run(ctx); err != nil {
			zapLogger.Fatal("Migration failed", zap.Error(err))
		}
	}

	status, err := migrator.Status(ctx)
	if err != nil {
		zapLogger.Fatal("Failed to read migration status", zap.Error(err))
	}
	for version, applied := range status {
		zapLogger.Info("Migration status",
			zap.String("version", version),
			zap.Bool("applied", applied),
		)
	}
}
