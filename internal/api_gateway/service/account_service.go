package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/core-banking-ledger/internal/domain/account"
	"github.com/core-banking-ledger/internal/domain/shared"
)

const maxAccountList = 500

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accountRepo account.Repository
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo account.Repository) AccountService {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
	}
}

// GetAccount retrieves an account by its number
func (s *AccountServiceImpl) GetAccount(ctx context.Context, accountNo int64) (*account.Account, error) {
	if accountNo <= 0 {
		return nil, shared.NewLedgerError(shared.KindInvalidRequest, "Invalid account number")
	}

	acc, err := s.accountRepo.GetByNumber(ctx, accountNo)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			return nil, shared.NewLedgerError(shared.KindNotFound, "Account not found")
		}
		return nil, shared.StoreFailure(fmt.Sprintf("failed to get account %d", accountNo), err)
	}
	return acc, nil
}

// ListAccounts lists accounts with an optional status filter
func (s *AccountServiceImpl) ListAccounts(ctx context.Context, status string) ([]*account.Account, error) {
	filter := account.ListFilter{Limit: maxAccountList}
	if status != "" {
		parsed, err := account.ParseStatus(status)
		if err != nil {
			return nil, shared.NewLedgerError(shared.KindInvalidStatus, "Invalid status")
		}
		filter.Status = parsed
	}

	accounts, err := s.accountRepo.List(ctx, filter)
	if err != nil {
		return nil, shared.StoreFailure("failed to list accounts", err)
	}
	return accounts, nil
}
