package service

import (
	"context"

	"github.com/core-banking-ledger/internal/domain/account"
	"github.com/core-banking-ledger/internal/domain/audit"
	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/report"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByNumber(ctx context.Context, number int64) (*account.Account, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context, filter account.ListFilter) ([]*account.Account, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccountRepository) LockForUpdate(ctx context.Context, number int64) (*account.Account, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) LockManyForUpdate(ctx context.Context, numbers []int64) (map[int64]*account.Account, error) {
	args := m.Called(ctx, numbers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*account.Account), args.Error(1)
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, number int64, delta decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, number, delta)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAccountRepository) GetBalance(ctx context.Context, number int64) (decimal.Decimal, error) {
	args := m.Called(ctx, number)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAccountRepository) UpdateStatus(ctx context.Context, number int64, status account.Status) error {
	args := m.Called(ctx, number, status)
	return args.Error(0)
}

func (m *MockAccountRepository) CustomerExists(ctx context.Context, customerID int64) (bool, error) {
	args := m.Called(ctx, customerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) BranchExists(ctx context.Context, branchID int64) (bool, error) {
	args := m.Called(ctx, branchID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) CountNegative(ctx context.Context, numbers []int64) (int, error) {
	args := m.Called(ctx, numbers)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) WithTx(tx pgx.Tx) account.Repository {
	args := m.Called(tx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(account.Repository)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) List(ctx context.Context, limit int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) ListByAccount(ctx context.Context, accountNo int64, direction ledger.Direction, limit int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, accountNo, direction, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	args := m.Called(tx)
	return args.Get(0).(ledger.Repository)
}

type MockMirrorRepository struct {
	mock.Mock
}

func (m *MockMirrorRepository) Upsert(ctx context.Context, event *ledger.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockMirrorRepository) GetByLogID(ctx context.Context, logID int64) (*ledger.Event, error) {
	args := m.Called(ctx, logID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Event), args.Error(1)
}

func (m *MockMirrorRepository) GetByAccount(ctx context.Context, accountNo int64, limit, offset int) ([]*ledger.Event, error) {
	args := m.Called(ctx, accountNo, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Event), args.Error(1)
}

func (m *MockMirrorRepository) CountByAccount(ctx context.Context, accountNo int64) (int64, error) {
	args := m.Called(ctx, accountNo)
	return args.Get(0).(int64), args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, filter audit.ListFilter) ([]*audit.Entry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Entry), args.Error(1)
}

func (m *MockAuditRepository) WithTx(tx pgx.Tx) audit.Repository {
	args := m.Called(tx)
	return args.Get(0).(audit.Repository)
}

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Summary(ctx context.Context) (*report.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Summary), args.Error(1)
}
