package service

import (
	"context"
	"fmt"

	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/shared"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 500
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	ledgerRepo ledger.Repository
	mirror     ledger.MirrorRepository
}

// NewTransactionService creates a new transaction service. mirror may be nil when
// MongoDB is not configured; statements are then unavailable.
func NewTransactionService(ledgerRepo ledger.Repository, mirror ledger.MirrorRepository) TransactionService {
	return &TransactionServiceImpl{
		ledgerRepo: ledgerRepo,
		mirror:     mirror,
	}
}

// ListTransactions returns the newest log entries, 50 unless limit says otherwise
func (s *TransactionServiceImpl) ListTransactions(ctx context.Context, limit int) ([]*ledger.Entry, error) {
	entries, err := s.ledgerRepo.List(ctx, clampLimit(limit, defaultTransactionLimit, maxTransactionLimit))
	if err != nil {
		return nil, shared.StoreFailure("failed to list transactions", err)
	}
	return entries, nil
}

// ListAccountTransactions returns the entries of one account. direction is "", credit or debit.
func (s *TransactionServiceImpl) ListAccountTransactions(ctx context.Context, accountNo int64, direction string, limit int) ([]*ledger.Entry, error) {
	if accountNo <= 0 {
		return nil, shared.NewLedgerError(shared.KindInvalidRequest, "Invalid account number")
	}

	dir := ledger.Direction(direction)
	switch dir {
	case "", ledger.DirectionCredit, ledger.DirectionDebit:
	default:
		return nil, shared.NewLedgerError(shared.KindInvalidRequest, "Direction must be credit or debit")
	}

	entries, err := s.ledgerRepo.ListByAccount(ctx, accountNo, dir, clampLimit(limit, defaultTransactionLimit, maxTransactionLimit))
	if err != nil {
		return nil, shared.StoreFailure(fmt.Sprintf("failed to list transactions of account %d", accountNo), err)
	}
	return entries, nil
}

// GetStatement reads mirrored events page by page, newest first
func (s *TransactionServiceImpl) GetStatement(ctx context.Context, accountNo int64, page, perPage int) ([]*ledger.Event, int64, error) {
	if s.mirror == nil {
		return nil, 0, shared.NewLedgerError(shared.KindStoreFailure, "Statements are not available")
	}
	if accountNo <= 0 {
		return nil, 0, shared.NewLedgerError(shared.KindInvalidRequest, "Invalid account number")
	}

	offset := (page - 1) * perPage
	events, err := s.mirror.GetByAccount(ctx, accountNo, perPage, offset)
	if err != nil {
		return nil, 0, shared.StoreFailure("failed to read statement", err)
	}

	total, err := s.mirror.CountByAccount(ctx, accountNo)
	if err != nil {
		return nil, 0, shared.StoreFailure("failed to count statement entries", err)
	}

	return events, total, nil
}

// clampLimit applies def to non-positive limits and caps the rest at ceiling
func clampLimit(limit, def, ceiling int) int {
	if limit <= 0 {
		return def
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}
