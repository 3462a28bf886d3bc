package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/core-banking-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// PostgresTxRunner opens one pooled transaction per call and scopes the configured timeouts to it
type PostgresTxRunner struct {
	db               persistence.TxBeginner
	statementTimeout time.Duration
	lockTimeout      time.Duration
	logger           *slog.Logger
}

func NewPostgresTxRunner(db persistence.TxBeginner, statementTimeout, lockTimeout time.Duration, logger *slog.Logger) *PostgresTxRunner {
	return &PostgresTxRunner{
		db:               db,
		statementTimeout: statementTimeout,
		lockTimeout:      lockTimeout,
		logger:           logger,
	}
}

// InTx runs fn and maps any store error onto the ledger error taxonomy
func (r *PostgresTxRunner) InTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	err := persistence.ExecuteTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := persistence.ApplyTimeouts(ctx, tx, r.statementTimeout, r.lockTimeout); err != nil {
			return err
		}
		return fn(ctx, tx)
	})
	if err != nil {
		r.logger.Debug("Transaction rolled back", "error", err)
	}
	return persistence.ClassifyError(err)
}
