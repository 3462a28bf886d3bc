package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/core-banking-ledger/internal/api_gateway"
	"github.com/core-banking-ledger/internal/api_gateway/handler"
	"github.com/core-banking-ledger/internal/api_gateway/service"
	"github.com/core-banking-ledger/internal/config"
	"github.com/core-banking-ledger/internal/data/mongo"
	"github.com/core-banking-ledger/internal/data/postgres"
	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/ledger_engine/components"
	ledgersvc "github.com/core-banking-ledger/internal/ledger_engine/service"
	"github.com/core-banking-ledger/internal/logger"
	"github.com/core-banking-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("ledger_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Ledger API",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Applies pending migrations before the pool is opened
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	healthChecks := map[string]handler.Pinger{"postgres": postgresDB}

	// The mirror only backs statements, so the API keeps serving without it
	var mirror ledger.MirrorRepository
	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Warn("MongoDB unavailable, statements disabled", "error", err)
	} else {
		mirror = mongo.NewLedgerRepository(log, mongoDB.Database(), cfg.MongoDB.MirrorCollection)
		healthChecks["mongodb"] = mongoDB
	}

	repos := components.Repositories{
		Accounts: postgres.NewAccountRepository(log, postgresDB),
		Ledger:   postgres.NewTransactionLogRepository(log, postgresDB),
		Outbox:   postgres.NewOutboxRepository(log, postgresDB),
		Audit:    postgres.NewAuditRepository(log, postgresDB),
		Probe:    postgres.NewSelfTestRepository(log, postgresDB),
	}
	reportRepo := postgres.NewReportRepository(log, postgresDB)

	runner := components.CreateTxRunner(postgresDB, log, cfg)
	engine := components.CreateLedgerEngine(runner, repos, log, cfg)

	server, err := api_gateway.NewServer(log, cfg, api_gateway.Dependencies{
		Ledger:             engine,
		AccountService:     service.NewAccountService(repos.Accounts),
		TransactionService: service.NewTransactionService(repos.Ledger, mirror),
		ReportService:      service.NewReportService(repos.Audit, reportRepo, cfg.Ledger.AuditLogMaxLimit),
		HealthChecks:       healthChecks,
	})
	if err != nil {
		log.Error("Failed to initialize HTTP server", "error", err)
		os.Exit(1)
	}

	errChan := make(chan error, 1)

	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	log.Info("Starting graceful shutdown...")

	// Drain HTTP first so in-flight ledger transactions can commit
	if err = server.Stop(context.Background()); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if wpRunner, ok := runner.(*ledgersvc.WorkerPoolTxRunner); ok {
		log.Info("Shutting down worker pool", "running_workers", wpRunner.Running())
		wpRunner.Shutdown()
	}

	postgresDB.Close()

	if mongoDB != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancelShutdown()
		if err = mongoDB.Close(shutdownCtx); err != nil {
			log.Error("Error closing MongoDB connection", "error", err)
		}
	}

	if serverErr != nil {
		log.Error("Ledger API shutdown with errors", "error", serverErr)
		os.Exit(1)
	}
	log.Info("Ledger API shutdown completed")
}
