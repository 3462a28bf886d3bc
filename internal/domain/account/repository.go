package account

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ListFilter narrows account listings
type ListFilter struct {
	Status     Status
	CustomerID int64
	Limit      int
}

// Repository defines account persistence operations
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByNumber(ctx context.Context, number int64) (*Account, error)
	List(ctx context.Context, filter ListFilter) ([]*Account, error)

	// LockForUpdate acquires a row lock on a single account
	LockForUpdate(ctx context.Context, number int64) (*Account, error)

	// LockManyForUpdate locks all given accounts in one statement, always in ascending
	// account number order. Missing accounts are absent from the returned map.
	LockManyForUpdate(ctx context.Context, numbers []int64) (map[int64]*Account, error)

	// AdjustBalance adds delta (which may be negative) and returns the resulting balance
	AdjustBalance(ctx context.Context, number int64, delta decimal.Decimal) (decimal.Decimal, error)
	GetBalance(ctx context.Context, number int64) (decimal.Decimal, error)
	UpdateStatus(ctx context.Context, number int64, status Status) error

	CustomerExists(ctx context.Context, customerID int64) (bool, error)
	BranchExists(ctx context.Context, branchID int64) (bool, error)

	// CountNegative counts accounts among numbers whose balance is below zero
	CountNegative(ctx context.Context, numbers []int64) (int, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	Number int64
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + strconv.FormatInt(e.Number, 10)
}

// Is implements the errors.Is interface for ErrAccountNotFound
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	// A zero Number matches any missing account
	if t.Number == 0 {
		return true
	}
	return e.Number == t.Number
}
