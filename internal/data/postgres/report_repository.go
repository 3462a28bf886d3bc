package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/core-banking-ledger/internal/domain/report"
	"github.com/core-banking-ledger/internal/platform/persistence"
)

// ReportRepository implements report.Repository for PostgreSQL
type ReportRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewReportRepository creates a new PostgreSQL report repository
func NewReportRepository(logger *slog.Logger, db persistence.Querier) report.Repository {
	return &ReportRepository{
		querier: db,
		logger:  logger,
	}
}

// Summary gathers the headline counts in a single round trip
func (r *ReportRepository) Summary(ctx context.Context) (*report.Summary, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM customers),
			(SELECT COUNT(*) FROM accounts),
			(SELECT COUNT(*) FROM accounts WHERE status = 'active'),
			(SELECT COUNT(*) FROM transaction_log),
			(SELECT COALESCE(SUM(balance), 0) FROM accounts)
	`

	var s report.Summary
	err := r.querier.QueryRow(ctx, query).Scan(
		&s.Customers,
		&s.Accounts,
		&s.ActiveAccounts,
		&s.Transactions,
		&s.TotalBalance,
	)
	if err != nil {
		r.logger.Error("Failed to load summary report", "error", err)
		return nil, fmt.Errorf("failed to load summary report: %w", err)
	}

	return &s, nil
}
