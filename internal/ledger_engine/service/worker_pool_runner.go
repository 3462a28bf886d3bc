package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolTxRunner bounds the number of concurrently open transactions.
// Callers block until a worker picks their transaction up and finishes it.
type WorkerPoolTxRunner struct {
	base   TxRunner
	pool   *ants.Pool
	logger *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolTxRunner(base TxRunner, config WorkerPoolConfig, logger *slog.Logger) (*WorkerPoolTxRunner, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolTxRunner{
		base:   base,
		pool:   pool,
		logger: logger,
	}, nil
}

// InTx submits the transaction to the pool and waits for its outcome
func (r *WorkerPoolTxRunner) InTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	logger := r.logger
	if correlationID := shared.CorrelationIDFromContext(ctx); correlationID != "" {
		logger = r.logger.With("correlation_id", correlationID)
	}

	resultChan := make(chan error, 1)

	err := r.pool.Submit(func() {
		defer func() {
			// The base runner has already rolled back; turn the panic into an error for the waiting caller
			if p := recover(); p != nil {
				logger.Error("Transaction panicked", "panic", p)
				resultChan <- shared.StoreFailure("Internal error, transaction rolled back", fmt.Errorf("panic: %v", p))
			}
		}()
		resultChan <- r.base.InTx(ctx, fn)
	})
	if err != nil {
		logger.Error("Failed to submit transaction to worker pool", "error", err)
		return shared.StoreFailure("Failed to schedule transaction", err)
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (r *WorkerPoolTxRunner) Shutdown() {
	r.logger.Info("Shutting down worker pool", "running_workers", r.pool.Running())
	r.pool.Release()
}

// Running returns the number of running workers in the pool.
func (r *WorkerPoolTxRunner) Running() int {
	return r.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (r *WorkerPoolTxRunner) Capacity() int {
	return r.pool.Cap()
}
