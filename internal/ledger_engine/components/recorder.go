package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/core-banking-ledger/internal/domain/audit"
	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/outbox"
	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/core-banking-ledger/internal/ledger_engine/service"
	"github.com/jackc/pgx/v5"
)

// RecorderImpl implements the Recorder interface
type RecorderImpl struct {
	ledgerRepo ledger.Repository
	outboxRepo outbox.Repository
	auditRepo  audit.Repository
	logger     *slog.Logger
}

// NewRecorder creates a new RecorderImpl
func NewRecorder(ledgerRepo ledger.Repository, outboxRepo outbox.Repository, auditRepo audit.Repository, logger *slog.Logger) service.Recorder {
	return &RecorderImpl{
		ledgerRepo: ledgerRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		logger:     logger,
	}
}

// RecordEntry persists the log entry and, in the same transaction, the outbox message the relay publishes
func (r *RecorderImpl) RecordEntry(ctx context.Context, tx pgx.Tx, entry *ledger.Entry) error {
	if err := r.ledgerRepo.WithTx(tx).Create(ctx, entry); err != nil {
		r.logger.Error("Failed to write transaction log entry", "account_no", entry.AccountNo, "type", entry.Type, "error", err)
		return err
	}

	event := ledger.NewEvent(entry, shared.CorrelationIDFromContext(ctx))
	msg, err := outbox.NewMessage(event)
	if err != nil {
		r.logger.Error("Failed to build outbox message", "log_id", entry.ID, "error", err)
		return fmt.Errorf("failed to build outbox message: %w", err)
	}
	if err := r.outboxRepo.WithTx(tx).Create(ctx, msg); err != nil {
		r.logger.Error("Failed to write outbox message", "log_id", entry.ID, "event_id", event.EventID.String(), "error", err)
		return err
	}

	r.logger.Debug("Transaction log entry recorded",
		"log_id", entry.ID,
		"account_no", entry.AccountNo,
		"direction", entry.Direction,
		"amount", entry.Amount.String())
	return nil
}

func (r *RecorderImpl) RecordAudit(ctx context.Context, tx pgx.Tx, actor shared.Actor, action, description string) error {
	if err := r.auditRepo.WithTx(tx).Create(ctx, audit.NewEntry(actor.ID, action, description)); err != nil {
		r.logger.Error("Failed to write audit entry", "action", action, "error", err)
		return err
	}
	return nil
}

// RecordRollbackAudit runs on its own pooled connection after the transaction has been rolled back.
// It outlives a cancelled request context so client disconnects still leave a trail.
func (r *RecorderImpl) RecordRollbackAudit(ctx context.Context, actor shared.Actor, action, description string) {
	entry := audit.NewEntry(actor.ID, action, description)
	if err := r.auditRepo.Create(context.WithoutCancel(ctx), entry); err != nil {
		r.logger.Error("Failed to write rollback audit entry",
			"action", action,
			"actor", actor.String(),
			"error", err)
	}
}
