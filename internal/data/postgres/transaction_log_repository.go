package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const transactionLogColumns = `log_id, account_no, entry_type, direction, amount, reference_account, performed_by, created_at`

// TransactionLogRepository implements ledger.Repository for PostgreSQL
type TransactionLogRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionLogRepository creates a new PostgreSQL transaction log repository
func NewTransactionLogRepository(logger *slog.Logger, db persistence.Querier) ledger.Repository {
	return &TransactionLogRepository{
		querier: db,
		logger:  logger,
	}
}

func (r *TransactionLogRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &TransactionLogRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create appends the entry and reads back the store-assigned id and timestamp
func (r *TransactionLogRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	query := `
		INSERT INTO transaction_log (account_no, entry_type, direction, amount, reference_account, performed_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING log_id, created_at
	`

	err := r.querier.QueryRow(ctx, query,
		entry.AccountNo,
		entry.Type,
		entry.Direction,
		entry.Amount,
		entry.ReferenceAccount,
		entry.PerformedBy,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to write transaction log entry",
			"account_no", entry.AccountNo,
			"type", string(entry.Type),
			"error", err,
		)
		return fmt.Errorf("failed to write transaction log entry: %w", err)
	}

	return nil
}

// List returns the most recent entries across all accounts
func (r *TransactionLogRepository) List(ctx context.Context, limit int) ([]*ledger.Entry, error) {
	query := `SELECT ` + transactionLogColumns + ` FROM transaction_log ORDER BY created_at DESC, log_id DESC LIMIT $1`
	return r.list(ctx, query, limit)
}

// ListByAccount returns entries for one account, optionally only credits or only debits
func (r *TransactionLogRepository) ListByAccount(ctx context.Context, accountNo int64, direction ledger.Direction, limit int) ([]*ledger.Entry, error) {
	if direction == "" {
		query := `SELECT ` + transactionLogColumns + ` FROM transaction_log WHERE account_no = $1 ORDER BY created_at DESC, log_id DESC LIMIT $2`
		return r.list(ctx, query, accountNo, limit)
	}
	query := `SELECT ` + transactionLogColumns + ` FROM transaction_log WHERE account_no = $1 AND direction = $2 ORDER BY created_at DESC, log_id DESC LIMIT $3`
	return r.list(ctx, query, accountNo, direction, limit)
}

func (r *TransactionLogRepository) list(ctx context.Context, query string, args ...interface{}) ([]*ledger.Entry, error) {
	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list transaction log entries", "error", err)
		return nil, fmt.Errorf("failed to list transaction log entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		err := rows.Scan(
			&e.ID,
			&e.AccountNo,
			&e.Type,
			&e.Direction,
			&e.Amount,
			&e.ReferenceAccount,
			&e.PerformedBy,
			&e.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan transaction log entry", "error", err)
			return nil, fmt.Errorf("failed to scan transaction log entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transaction log: %w", err)
	}

	return entries, nil
}
