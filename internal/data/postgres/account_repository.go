// Package postgres provides PostgreSQL implementations of the domain repositories.
// Every repository can be rebound to a transaction with WithTx so that the ledger
// engine runs all reads and writes of one operation on the same connection.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/core-banking-ledger/internal/domain/account"
	"github.com/core-banking-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_no, customer_id, branch_id, account_type, balance, status, opened_at`

const defaultAccountListLimit = 100

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(logger *slog.Logger, db persistence.Querier) account.Repository {
	return &AccountRepository{
		querier: db,
		logger:  logger,
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts the account and fills in the store-assigned number
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (customer_id, branch_id, account_type, balance, status, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING account_no
	`

	err := r.querier.QueryRow(ctx, query,
		acc.CustomerID,
		acc.BranchID,
		acc.Type,
		acc.Balance,
		acc.Status,
		acc.OpenedAt,
	).Scan(&acc.Number)
	if err != nil {
		r.logger.Error("Failed to create account", "customer_id", acc.CustomerID, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByNumber retrieves an account without locking it
func (r *AccountRepository) GetByNumber(ctx context.Context, number int64) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_no = $1`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{Number: number}
		}
		r.logger.Error("Failed to get account", "account_no", number, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// List returns accounts newest first
func (r *AccountRepository) List(ctx context.Context, filter account.ListFilter) ([]*account.Account, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CustomerID > 0 {
		args = append(args, filter.CustomerID)
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAccountListLimit
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY account_no DESC LIMIT $%d`, len(args))

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list accounts", "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			r.logger.Error("Failed to scan account", "error", err)
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}

	return accounts, nil
}

// LockForUpdate acquires a row lock on the account for the rest of the transaction
func (r *AccountRepository) LockForUpdate(ctx context.Context, number int64) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_no = $1 FOR UPDATE`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{Number: number}
		}
		r.logger.Error("Failed to lock account", "account_no", number, "error", err)
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}

	return acc, nil
}

// LockManyForUpdate locks every listed account in ascending number order within one statement
func (r *AccountRepository) LockManyForUpdate(ctx context.Context, numbers []int64) (map[int64]*account.Account, error) {
	ordered := sortedUnique(numbers)

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_no = ANY($1)
		ORDER BY account_no ASC
		FOR UPDATE
	`

	rows, err := r.querier.Query(ctx, query, ordered)
	if err != nil {
		r.logger.Error("Failed to lock accounts", "account_nos", ordered, "error", err)
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	defer rows.Close()

	locked := make(map[int64]*account.Account, len(ordered))
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			r.logger.Error("Failed to scan locked account", "error", err)
			return nil, fmt.Errorf("failed to scan locked account: %w", err)
		}
		locked[acc.Number] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over locked accounts: %w", err)
	}

	return locked, nil
}

// AdjustBalance applies delta in place and returns the new balance
func (r *AccountRepository) AdjustBalance(ctx context.Context, number int64, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `UPDATE accounts SET balance = balance + $1 WHERE account_no = $2 RETURNING balance`

	var balance decimal.Decimal
	if err := r.querier.QueryRow(ctx, query, delta, number).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, account.ErrAccountNotFound{Number: number}
		}
		r.logger.Error("Failed to adjust balance", "account_no", number, "delta", delta.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to adjust balance: %w", err)
	}

	return balance, nil
}

// GetBalance re-reads the balance inside the current transaction
func (r *AccountRepository) GetBalance(ctx context.Context, number int64) (decimal.Decimal, error) {
	query := `SELECT balance FROM accounts WHERE account_no = $1`

	var balance decimal.Decimal
	if err := r.querier.QueryRow(ctx, query, number).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, account.ErrAccountNotFound{Number: number}
		}
		r.logger.Error("Failed to read balance", "account_no", number, "error", err)
		return decimal.Zero, fmt.Errorf("failed to read balance: %w", err)
	}

	return balance, nil
}

// UpdateStatus sets the account status; ErrAccountNotFound when no row matched
func (r *AccountRepository) UpdateStatus(ctx context.Context, number int64, status account.Status) error {
	query := `UPDATE accounts SET status = $1 WHERE account_no = $2`

	result, err := r.querier.Exec(ctx, query, status, number)
	if err != nil {
		r.logger.Error("Failed to update account status", "account_no", number, "status", string(status), "error", err)
		return fmt.Errorf("failed to update account status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{Number: number}
	}

	return nil
}

// CustomerExists checks the customers table
func (r *AccountRepository) CustomerExists(ctx context.Context, customerID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE customer_id = $1)`, customerID, "customer")
}

// BranchExists checks the branches table
func (r *AccountRepository) BranchExists(ctx context.Context, branchID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM branches WHERE branch_id = $1)`, branchID, "branch")
}

func (r *AccountRepository) exists(ctx context.Context, query string, id int64, what string) (bool, error) {
	var found bool
	if err := r.querier.QueryRow(ctx, query, id).Scan(&found); err != nil {
		r.logger.Error("Failed to check existence", "entity", what, "id", id, "error", err)
		return false, fmt.Errorf("failed to check %s: %w", what, err)
	}
	return found, nil
}

// CountNegative counts the given accounts that are overdrawn
func (r *AccountRepository) CountNegative(ctx context.Context, numbers []int64) (int, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE account_no = ANY($1) AND balance < 0`

	var count int
	if err := r.querier.QueryRow(ctx, query, sortedUnique(numbers)).Scan(&count); err != nil {
		r.logger.Error("Failed to count negative balances", "error", err)
		return 0, fmt.Errorf("failed to count negative balances: %w", err)
	}

	return count, nil
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	err := row.Scan(
		&acc.Number,
		&acc.CustomerID,
		&acc.BranchID,
		&acc.Type,
		&acc.Balance,
		&acc.Status,
		&acc.OpenedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// sortedUnique returns numbers ascending without duplicates, the global lock order
func sortedUnique(numbers []int64) []int64 {
	out := make([]int64, 0, len(numbers))
	seen := make(map[int64]struct{}, len(numbers))
	for _, n := range numbers {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
