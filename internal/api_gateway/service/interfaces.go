package service

import (
	"context"

	"github.com/core-banking-ledger/internal/domain/account"
	"github.com/core-banking-ledger/internal/domain/audit"
	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/report"
)

// AccountService defines the read side of accounts.
// Mutations go through the ledger engine.
type AccountService interface {
	// GetAccount retrieves an account by its number
	// Returns a NotFound ledger error if the account doesn't exist
	GetAccount(ctx context.Context, accountNo int64) (*account.Account, error)

	// ListAccounts lists accounts, optionally narrowed to one status
	ListAccounts(ctx context.Context, status string) ([]*account.Account, error)
}

// TransactionService defines transaction log reads
type TransactionService interface {
	// ListTransactions returns the newest log entries across all accounts
	ListTransactions(ctx context.Context, limit int) ([]*ledger.Entry, error)

	// ListAccountTransactions returns the log entries of one account, optionally by direction
	ListAccountTransactions(ctx context.Context, accountNo int64, direction string, limit int) ([]*ledger.Entry, error)

	// GetStatement reads a page of the mirrored events of an account
	// Returns events, total count of mirrored events, and any error
	GetStatement(ctx context.Context, accountNo int64, page, perPage int) ([]*ledger.Event, int64, error)
}

// ReportService defines audit and summary reads
type ReportService interface {
	AuditLog(ctx context.Context, limit int, search string) ([]*audit.Entry, error)
	Summary(ctx context.Context) (*report.Summary, error)
}
