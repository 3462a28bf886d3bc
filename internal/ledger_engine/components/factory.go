package components

import (
	"log/slog"

	"github.com/core-banking-ledger/internal/config"
	"github.com/core-banking-ledger/internal/domain/account"
	"github.com/core-banking-ledger/internal/domain/audit"
	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/outbox"
	"github.com/core-banking-ledger/internal/domain/probe"
	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/core-banking-ledger/internal/ledger_engine/service"
	"github.com/core-banking-ledger/internal/platform/persistence"
)

// Repositories groups the stores the engine writes through
type Repositories struct {
	Accounts account.Repository
	Ledger   ledger.Repository
	Outbox   outbox.Repository
	Audit    audit.Repository
	Probe    probe.Repository
}

// CreateTxRunner builds the Postgres runner and puts the worker pool in front of it.
// If the pool cannot be created the base runner is returned.
func CreateTxRunner(db persistence.TxBeginner, logger *slog.Logger, cfg *config.Config) service.TxRunner {
	baseRunner := service.NewPostgresTxRunner(
		db,
		cfg.Postgres.StatementTimeout,
		cfg.Postgres.LockTimeout,
		logger.With("component", "tx_runner"),
	)

	workerPoolRunner, err := service.NewWorkerPoolTxRunner(
		baseRunner,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool runner, falling back to base runner", "error", err)
		return baseRunner
	}

	logger.Info("Created worker pool transaction runner", "pool_size", cfg.WorkerPool.Size)
	return workerPoolRunner
}

// CreateLedgerEngine wires the engine with all its dependencies.
func CreateLedgerEngine(runner service.TxRunner, repos Repositories, logger *slog.Logger, cfg *config.Config) service.Ledger {
	engineLogger := logger.With("component", "ledger_engine")

	return service.NewEngine(
		runner,
		NewValidator(cfg.Ledger.MaxBatchOperations),
		NewAccountManager(repos.Accounts, engineLogger),
		NewRecorder(repos.Ledger, repos.Outbox, repos.Audit, engineLogger),
		repos.Probe,
		shared.SystemActor(cfg.Ledger.SystemActorID),
		engineLogger,
	)
}
