package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/core-banking-ledger/internal/domain/account"
	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/core-banking-ledger/internal/ledger_engine/service"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountManagerImpl implements the AccountManager interface
type AccountManagerImpl struct {
	accountRepo account.Repository
	logger      *slog.Logger
}

// NewAccountManager creates a new AccountManagerImpl
func NewAccountManager(accountRepo account.Repository, logger *slog.Logger) service.AccountManager {
	return &AccountManagerImpl{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (m *AccountManagerImpl) Open(ctx context.Context, tx pgx.Tx, acc *account.Account) error {
	repo := m.accountRepo.WithTx(tx)

	exists, err := repo.CustomerExists(ctx, acc.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to check customer %d: %w", acc.CustomerID, err)
	}
	if !exists {
		return shared.NewLedgerError(shared.KindNotFound, "Customer not found")
	}

	exists, err = repo.BranchExists(ctx, acc.BranchID)
	if err != nil {
		return fmt.Errorf("failed to check branch %d: %w", acc.BranchID, err)
	}
	if !exists {
		return shared.NewLedgerError(shared.KindNotFound, "Branch not found")
	}

	return repo.Create(ctx, acc)
}

// Lock takes the row lock on accountNo; a missing row is reported as "Account not found"
func (m *AccountManagerImpl) Lock(ctx context.Context, tx pgx.Tx, accountNo int64) (*account.Account, error) {
	locked, err := m.accountRepo.WithTx(tx).LockForUpdate(ctx, accountNo)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			m.logger.Warn("Account not found for lock", "account_no", accountNo)
			return nil, shared.NewLedgerError(shared.KindNotFound, "Account not found")
		}
		m.logger.Error("Failed to lock account", "account_no", accountNo, "error", err)
		return nil, err
	}
	m.logger.Debug("Account locked", "account_no", accountNo, "balance", locked.Balance.String(), "status", locked.Status)
	return locked, nil
}

func (m *AccountManagerImpl) LockMany(ctx context.Context, tx pgx.Tx, accountNos ...int64) (map[int64]*account.Account, error) {
	locked, err := m.accountRepo.WithTx(tx).LockManyForUpdate(ctx, accountNos)
	if err != nil {
		m.logger.Error("Failed to lock accounts", "account_nos", accountNos, "error", err)
		return nil, err
	}
	m.logger.Debug("Accounts locked", "requested", len(accountNos), "found", len(locked))
	return locked, nil
}

func (m *AccountManagerImpl) Apply(ctx context.Context, tx pgx.Tx, accountNo int64, delta decimal.Decimal) (decimal.Decimal, error) {
	balance, err := m.accountRepo.WithTx(tx).AdjustBalance(ctx, accountNo, delta)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			return decimal.Zero, shared.NewLedgerError(shared.KindNotFound, "Account not found")
		}
		return decimal.Zero, err
	}
	return balance, nil
}

func (m *AccountManagerImpl) Balance(ctx context.Context, tx pgx.Tx, accountNo int64) (decimal.Decimal, error) {
	balance, err := m.accountRepo.WithTx(tx).GetBalance(ctx, accountNo)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			return decimal.Zero, shared.NewLedgerError(shared.KindNotFound, "Account not found")
		}
		return decimal.Zero, err
	}
	return balance, nil
}

func (m *AccountManagerImpl) SetStatus(ctx context.Context, tx pgx.Tx, accountNo int64, status account.Status) error {
	err := m.accountRepo.WithTx(tx).UpdateStatus(ctx, accountNo, status)
	if errors.Is(err, account.ErrAccountNotFound{}) {
		return shared.NewLedgerError(shared.KindNotFound, "Account not found")
	}
	return err
}

func (m *AccountManagerImpl) CountNegative(ctx context.Context, tx pgx.Tx, accountNos []int64) (int, error) {
	return m.accountRepo.WithTx(tx).CountNegative(ctx, accountNos)
}
