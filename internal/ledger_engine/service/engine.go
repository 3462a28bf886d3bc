package service

import (
	"context"
	"log/slog"

	"github.com/core-banking-ledger/internal/domain/probe"
	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var _ Ledger = (*Engine)(nil)

// Engine implements every ledger operation on top of a TxRunner.
// Each public method opens exactly one top-level transaction per attempt.
type Engine struct {
	runner      TxRunner
	validator   Validator
	accounts    AccountManager
	recorder    Recorder
	probes      probe.Repository
	systemActor shared.Actor
	logger      *slog.Logger
}

func NewEngine(
	runner TxRunner,
	validator Validator,
	accounts AccountManager,
	recorder Recorder,
	probes probe.Repository,
	systemActor shared.Actor,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		runner:      runner,
		validator:   validator,
		accounts:    accounts,
		recorder:    recorder,
		probes:      probes,
		systemActor: systemActor,
		logger:      logger,
	}
}

func (e *Engine) loggerFor(ctx context.Context, operation string) *slog.Logger {
	logger := e.logger.With("operation", operation)
	if correlationID := shared.CorrelationIDFromContext(ctx); correlationID != "" {
		logger = logger.With("correlation_id", correlationID)
	}
	return logger
}

// rolledBack logs the failure, writes the best-effort rollback audit and hands err back unchanged
func (e *Engine) rolledBack(ctx context.Context, logger *slog.Logger, actor shared.Actor, action, description string, err error) error {
	logger.Warn("Transaction rolled back", "action", action, "error", err)
	e.recorder.RecordRollbackAudit(ctx, actor, action, description)
	return err
}

func messageOf(err error) string {
	return shared.AsLedgerError(err).Message
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func notActive(message string) error {
	return shared.NewLedgerError(shared.KindInactiveAccount, message)
}

func insufficientFunds(message string) error {
	return shared.NewLedgerError(shared.KindInsufficientFunds, message)
}

func invalidRequest(message string) error {
	return shared.NewLedgerError(shared.KindInvalidRequest, message)
}
