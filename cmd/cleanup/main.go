package main

import (
	"context"
	"fmt"
	"os"

	"github.com/emrahsandernet/kasarcim/config"
	"github.com/emrahsandernet/kasarcim/internal/cleanup"
	"github.com/emrahsandernet/kasarcim/internal/database"
	"github.com/emrahsandernet/kasarcim/internal/logger"
	"github.com/emrahsandernet/kasarcim/internal/repository"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/cleanup [expired|used|all]")
		fmt.Println("  expired - delete expired password reset tokens")
		fmt.Println("  used    - delete used password reset tokens past retention")
		fmt.Println("  all     - run full cleanup")
		os.Exit(1)
	}

	cfg := config.Load(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	cleanupSvc := cleanup.NewCleanupService(repository.New(db).PasswordResets, log)

	ctx := context.Background()

	switch os.Args[1] {
	case "expired":
		log.Info("running expired tokens cleanup")
		if err := cleanupSvc.CleanupExpiredTokens(ctx); err != nil {
			log.Fatal("failed to cleanup expired tokens", zap.Error(err))
		}
	case "used":
		log.Info("running used tokens cleanup")
		if err := cleanupSvc.CleanupUsedTokens(ctx); err != nil {
			log.Fatal("failed to cleanup used tokens", zap.Error(err))
		}
	default:
		log.Info("running full cleanup")
		if err := cleanupSvc.RunFullCleanup(ctx); err != nil {
			log.Fatal("failed to run full cleanup", zap.Error(err))
		}
	}

	log.Info("cleanup completed successfully")
}
