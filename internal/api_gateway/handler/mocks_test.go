package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/core-banking-ledger/internal/api_gateway/middleware"
	"github.com/core-banking-ledger/internal/domain/account"
	"github.com/core-banking-ledger/internal/domain/audit"
	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/report"
	"github.com/core-banking-ledger/internal/domain/shared"
	ledgersvc "github.com/core-banking-ledger/internal/ledger_engine/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSystemActorID = 1

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) OpenAccount(ctx context.Context, actor shared.Actor, req ledgersvc.OpenAccountRequest) (*account.Account, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockLedger) Deposit(ctx context.Context, actor shared.Actor, accountNo int64, amount decimal.Decimal) (*ledgersvc.BalanceChange, error) {
	args := m.Called(ctx, actor, accountNo, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgersvc.BalanceChange), args.Error(1)
}

func (m *MockLedger) Withdraw(ctx context.Context, actor shared.Actor, accountNo int64, amount decimal.Decimal) (*ledgersvc.BalanceChange, error) {
	args := m.Called(ctx, actor, accountNo, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgersvc.BalanceChange), args.Error(1)
}

func (m *MockLedger) UpdateStatus(ctx context.Context, actor shared.Actor, accountNo int64, status string) (account.Status, error) {
	args := m.Called(ctx, actor, accountNo, status)
	return args.Get(0).(account.Status), args.Error(1)
}

func (m *MockLedger) BasicTransaction(ctx context.Context, actor shared.Actor, req ledgersvc.BasicTransactionRequest) (*ledgersvc.BasicTransactionResult, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgersvc.BasicTransactionResult), args.Error(1)
}

func (m *MockLedger) Transfer(ctx context.Context, actor shared.Actor, from, to int64, amount decimal.Decimal) (*ledgersvc.TransferResult, error) {
	args := m.Called(ctx, actor, from, to, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgersvc.TransferResult), args.Error(1)
}

func (m *MockLedger) AtomicTransfer(ctx context.Context, actor shared.Actor, from, to int64, amount decimal.Decimal) (*ledgersvc.TransferResult, error) {
	args := m.Called(ctx, actor, from, to, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgersvc.TransferResult), args.Error(1)
}

func (m *MockLedger) CustomerTransfer(ctx context.Context, customer shared.Actor, from, to int64, amount decimal.Decimal) (*ledgersvc.TransferResult, error) {
	args := m.Called(ctx, customer, from, to, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgersvc.TransferResult), args.Error(1)
}

func (m *MockLedger) RunSavepointSequence(ctx context.Context, actor shared.Actor, accountNo int64, ops []ledgersvc.SavepointOperation) (*ledgersvc.SavepointResult, error) {
	args := m.Called(ctx, actor, accountNo, ops)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgersvc.SavepointResult), args.Error(1)
}

func (m *MockLedger) RunNested(ctx context.Context, actor shared.Actor, ops []ledgersvc.NestedOperation) (*ledgersvc.NestedResult, error) {
	args := m.Called(ctx, actor, ops)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgersvc.NestedResult), args.Error(1)
}

func (m *MockLedger) RunBatch(ctx context.Context, actor shared.Actor, items []ledgersvc.BatchItem) (*ledgersvc.BatchResult, error) {
	args := m.Called(ctx, actor, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgersvc.BatchResult), args.Error(1)
}

func (m *MockLedger) RunSelfTest(ctx context.Context) (*ledgersvc.SelfTestReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgersvc.SelfTestReport), args.Error(1)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccount(ctx context.Context, accountNo int64) (*account.Account, error) {
	args := m.Called(ctx, accountNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, status string) ([]*account.Account, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) ListTransactions(ctx context.Context, limit int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockTransactionService) ListAccountTransactions(ctx context.Context, accountNo int64, direction string, limit int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, accountNo, direction, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockTransactionService) GetStatement(ctx context.Context, accountNo int64, page, perPage int) ([]*ledger.Event, int64, error) {
	args := m.Called(ctx, accountNo, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*ledger.Event), args.Get(1).(int64), args.Error(2)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) AuditLog(ctx context.Context, limit int, search string) ([]*audit.Entry, error) {
	args := m.Called(ctx, limit, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Entry), args.Error(1)
}

func (m *MockReportService) Summary(ctx context.Context) (*report.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Summary), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CorrelationID(), middleware.Actor(testSystemActorID))
	return r
}

// doJSON sends body (marshalled unless it is already a string) and decodes the envelope
func doJSON(t *testing.T, router *gin.Engine, method, target string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var resp Response
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	}
	return rr, resp
}

// decodeData re-decodes the generic data field into out
func decodeData(t *testing.T, data interface{}, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}
