package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/haolinpeng/claimflow/internal/config"
	httpapi "github.com/haolinpeng/claimflow/internal/interfaces/http"
	"github.com/haolinpeng/claimflow/internal/recognize"
	"github.com/haolinpeng/claimflow/internal/repository"
	"github.com/haolinpeng/claimflow/internal/service"
	"github.com/haolinpeng/claimflow/internal/voucher"
	"github.com/haolinpeng/claimflow/pkg/database"
	"github.com/haolinpeng/claimflow/pkg/logging"
)

func main() {
	// Local .env overrides are optional
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting claim analysis service",
		zap.Int("port", cfg.Server.Port))

	db, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	loanRepo := repository.NewLoanRepository(db.DB, logger)
	claimRepo := repository.NewClaimRepository(db.DB, logger)
	ledgerRepo := repository.NewLedgerRepository(db.DB, logger)

	recognizer := recognize.NewRecognizer(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.Temperature,
		logger,
	)
	pageLoader := recognize.NewPageLoader(cfg.Recognize.MaxPages, logger)

	analysis := service.NewAnalysisService(recognizer, loanRepo, claimRepo, ledgerRepo, logger)

	formWriter, err := voucher.NewFormWriter(cfg.Voucher.OutputDir, cfg.Voucher.CompanyName, logger)
	if err != nil {
		logger.Fatal("Failed to initialize voucher writer", zap.Error(err))
	}

	handlers := httpapi.NewHandlers(analysis, loanRepo, formWriter, pageLoader, logger)
	srv := httpapi.NewServer(httpapi.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
