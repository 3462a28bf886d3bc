package handler

import (
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/shared"
	ledgersvc "github.com/core-banking-ledger/internal/ledger_engine/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTCLTestHandler(eng *MockLedger) *TCLHandler {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return NewTCLHandler(logger, eng)
}

func TestTCLHandler_BasicTransaction(t *testing.T) {
	t.Run("Committed", func(t *testing.T) {
		eng := new(MockLedger)
		handler := newTCLTestHandler(eng)
		eng.On("BasicTransaction", mock.Anything, shared.SystemActor(testSystemActorID), mock.MatchedBy(func(req ledgersvc.BasicTransactionRequest) bool {
			return req.AccountNo == 10 && req.Type == shared.EntryTypeDeposit && req.Amount.Equal(decimal.NewFromInt(50))
		})).Return(&ledgersvc.BasicTransactionResult{Message: "deposit completed successfully", Transaction: shared.OutcomeCommitted}, nil).Once()

		router := setupTestRouter()
		router.POST("/tcl/basic-transaction", handler.BasicTransaction)

		rr, resp := doJSON(t, router, http.MethodPost, "/tcl/basic-transaction", `{"accountno":10,"amount":50,"type":"deposit"}`, nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		var body ledgersvc.BasicTransactionResult
		decodeData(t, resp.Data, &body)
		assert.Equal(t, shared.OutcomeCommitted, body.Transaction)
	})

	t.Run("RolledBackKeepsOutcome", func(t *testing.T) {
		eng := new(MockLedger)
		handler := newTCLTestHandler(eng)
		eng.On("BasicTransaction", mock.Anything, mock.Anything, mock.Anything).Return(
			&ledgersvc.BasicTransactionResult{Message: "Insufficient funds - transaction will be rolled back", Transaction: shared.OutcomeRolledBack},
			shared.NewLedgerError(shared.KindInsufficientFunds, "Insufficient funds - transaction will be rolled back"),
		).Once()

		router := setupTestRouter()
		router.POST("/tcl/basic-transaction", handler.BasicTransaction)

		rr, resp := doJSON(t, router, http.MethodPost, "/tcl/basic-transaction", `{"accountno":10,"amount":5000,"type":"withdrawal"}`, nil)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "INSUFFICIENT_FUNDS", resp.Error.Code)
		var body ledgersvc.BasicTransactionResult
		decodeData(t, resp.Data, &body)
		assert.Equal(t, shared.OutcomeRolledBack, body.Transaction)
	})

	t.Run("UnknownType", func(t *testing.T) {
		eng := new(MockLedger)
		handler := newTCLTestHandler(eng)

		router := setupTestRouter()
		router.POST("/tcl/basic-transaction", handler.BasicTransaction)

		rr, resp := doJSON(t, router, http.MethodPost, "/tcl/basic-transaction", `{"accountno":10,"amount":5,"type":"refund"}`, nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
		assert.Nil(t, resp.Data)
	})
}

func TestTCLHandler_AtomicTransfer(t *testing.T) {
	eng := new(MockLedger)
	handler := newTCLTestHandler(eng)
	eng.On("AtomicTransfer", mock.Anything, mock.Anything, int64(10), int64(20), decEq("999")).Return(
		&ledgersvc.TransferResult{FromAccount: 10, ToAccount: 20, Amount: decimal.NewFromInt(999), Transaction: shared.OutcomeRolledBack},
		shared.NewLedgerError(shared.KindInsufficientFunds, "Insufficient funds"),
	).Once()

	router := setupTestRouter()
	router.POST("/tcl/atomic-transfer", handler.AtomicTransfer)

	rr, resp := doJSON(t, router, http.MethodPost, "/tcl/atomic-transfer", `{"fromAccount":10,"toAccount":20,"amount":999}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Insufficient funds", resp.Error.Message)
	var body AtomicTransferResponse
	decodeData(t, resp.Data, &body)
	require.NotNil(t, body.Details)
	assert.Equal(t, shared.OutcomeRolledBack, body.Details.Transaction)
}

func TestTCLHandler_SavepointDemo(t *testing.T) {
	floor := decimal.NewFromInt(100)

	t.Run("CompletedWithRollback", func(t *testing.T) {
		eng := new(MockLedger)
		handler := newTCLTestHandler(eng)
		result := &ledgersvc.SavepointResult{
			AccountNo:      10,
			InitialBalance: decimal.NewFromInt(500),
			FinalBalance:   decimal.NewFromInt(600),
			Operations: []ledgersvc.SavepointStepResult{
				{Step: 1, Type: ledger.DirectionCredit, Amount: decimal.NewFromInt(100), Savepoint: "sp_0", Status: shared.StepStatusCompleted},
				{Step: 2, Type: ledger.DirectionDebit, Amount: decimal.NewFromInt(550), Savepoint: "sp_1", Status: shared.StepStatusRolledBack},
			},
			SavepointsCreated:  2,
			RollbacksPerformed: 1,
			FinalState:         ledgersvc.FinalStateCommitted,
		}
		eng.On("RunSavepointSequence", mock.Anything, mock.Anything, int64(10), mock.MatchedBy(func(ops []ledgersvc.SavepointOperation) bool {
			return len(ops) == 2 &&
				ops[0].Type == ledger.DirectionCredit && ops[0].MinBalance == nil &&
				ops[1].Type == ledger.DirectionDebit && ops[1].MinBalance != nil && ops[1].MinBalance.Equal(floor)
		})).Return(result, nil).Once()

		router := setupTestRouter()
		router.POST("/tcl/savepoint-demo", handler.SavepointDemo)

		rr, resp := doJSON(t, router, http.MethodPost, "/tcl/savepoint-demo",
			`{"accountno":10,"operations":[{"type":"credit","amount":100},{"type":"debit","amount":550,"minBalance":100}]}`, nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		var body SavepointDemoResponse
		decodeData(t, resp.Data, &body)
		assert.Equal(t, "SAVEPOINT demonstration completed with 1 rollbacks", body.Message)
		require.NotNil(t, body.Results)
		assert.Equal(t, shared.StepStatusRolledBack, body.Results.Operations[1].Status)
		eng.AssertExpectations(t)
	})

	t.Run("FailureCarriesPartialResults", func(t *testing.T) {
		eng := new(MockLedger)
		handler := newTCLTestHandler(eng)
		partial := &ledgersvc.SavepointResult{
			AccountNo:  10,
			Operations: []ledgersvc.SavepointStepResult{{Step: 1, Status: shared.StepStatusCompleted}},
			FinalState: ledgersvc.FinalStateRolledBack,
		}
		eng.On("RunSavepointSequence", mock.Anything, mock.Anything, int64(10), mock.Anything).
			Return(partial, shared.StoreFailure("connection lost", nil)).Once()

		router := setupTestRouter()
		router.POST("/tcl/savepoint-demo", handler.SavepointDemo)

		rr, resp := doJSON(t, router, http.MethodPost, "/tcl/savepoint-demo",
			`{"accountno":10,"operations":[{"type":"credit","amount":1}]}`, nil)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "STORE_FAILURE", resp.Error.Code)
		var body SavepointDemoResponse
		decodeData(t, resp.Data, &body)
		require.NotNil(t, body.Results)
		assert.Equal(t, ledgersvc.FinalStateRolledBack, body.Results.FinalState)
		assert.Len(t, body.Results.Operations, 1)
	})

	t.Run("RejectsUnknownStepType", func(t *testing.T) {
		eng := new(MockLedger)
		handler := newTCLTestHandler(eng)

		router := setupTestRouter()
		router.POST("/tcl/savepoint-demo", handler.SavepointDemo)

		rr, _ := doJSON(t, router, http.MethodPost, "/tcl/savepoint-demo",
			`{"accountno":10,"operations":[{"type":"sideways","amount":1}]}`, nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		eng.AssertNotCalled(t, "RunSavepointSequence", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTCLHandler_NestedTransactions(t *testing.T) {
	eng := new(MockLedger)
	handler := newTCLTestHandler(eng)
	sp := "nested_1"
	partial := &ledgersvc.NestedResult{
		SubTransactions: []ledgersvc.NestedStepResult{
			{Step: 1, Account: 10, Operation: shared.EntryTypeDeposit, Amount: decimal.NewFromInt(50), Status: shared.StepStatusSuccess},
			{Step: 2, Account: 20, Operation: shared.EntryTypeWithdrawal, Amount: decimal.NewFromInt(-900), Status: shared.StepStatusError, Savepoint: &sp},
		},
		FinalState: ledgersvc.FinalStateRolledBack,
	}
	eng.On("RunNested", mock.Anything, mock.Anything, mock.MatchedBy(func(ops []ledgersvc.NestedOperation) bool {
		return len(ops) == 2 && ops[1].RequiresSavepoint && ops[1].Amount.IsNegative() && ops[1].Type == shared.EntryTypeWithdrawal
	})).Return(partial, shared.RollbackFailure(assert.AnError)).Once()

	router := setupTestRouter()
	router.POST("/tcl/nested-transactions", handler.NestedTransactions)

	rr, resp := doJSON(t, router, http.MethodPost, "/tcl/nested-transactions",
		`{"operations":[{"accountno":10,"amount":50,"type":"deposit"},{"accountno":20,"amount":-900,"type":"withdrawal","requiresSavepoint":true}]}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "ROLLBACK_FAILURE", resp.Error.Code)
	var body NestedTransactionsResponse
	decodeData(t, resp.Data, &body)
	require.NotNil(t, body.Results)
	assert.Len(t, body.Results.SubTransactions, 2)
	assert.Equal(t, ledgersvc.FinalStateRolledBack, body.Results.FinalState)
	eng.AssertExpectations(t)
}

func TestTCLHandler_BatchProcessing(t *testing.T) {
	t.Run("ReportsCounts", func(t *testing.T) {
		eng := new(MockLedger)
		handler := newTCLTestHandler(eng)
		eng.On("RunBatch", mock.Anything, mock.Anything, mock.MatchedBy(func(items []ledgersvc.BatchItem) bool {
			return len(items) == 3 && items[2].AccountNo == 999
		})).Return(&ledgersvc.BatchResult{Processed: 3, Successful: 2, Failed: 1}, nil).Once()

		router := setupTestRouter()
		router.POST("/tcl/batch-processing", handler.BatchProcessing)

		rr, resp := doJSON(t, router, http.MethodPost, "/tcl/batch-processing",
			`{"operations":[{"accountno":10,"amount":5},{"accountno":20,"amount":-5},{"accountno":999,"amount":1}]}`, nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		var body BatchProcessingResponse
		decodeData(t, resp.Data, &body)
		assert.Equal(t, "Batch processing completed: 2 successful, 1 failed", body.Message)
		require.NotNil(t, body.BatchResults)
		assert.Equal(t, 3, body.BatchResults.Processed)
	})

	t.Run("EmptyBatch", func(t *testing.T) {
		eng := new(MockLedger)
		handler := newTCLTestHandler(eng)

		router := setupTestRouter()
		router.POST("/tcl/batch-processing", handler.BatchProcessing)

		rr, _ := doJSON(t, router, http.MethodPost, "/tcl/batch-processing", `{"operations":[]}`, nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTCLHandler_TestSuite(t *testing.T) {
	eng := new(MockLedger)
	handler := newTCLTestHandler(eng)
	eng.On("RunSelfTest", mock.Anything).Return(&ledgersvc.SelfTestReport{
		Results: []ledgersvc.SelfTestCase{{Test: "Basic COMMIT", Result: ledgersvc.TestPassed}},
		Summary: ledgersvc.SelfTestSummary{Total: 1, Passed: 1},
	}, nil).Once()

	router := setupTestRouter()
	router.GET("/tcl/test-suite", handler.TestSuite)

	rr, resp := doJSON(t, router, http.MethodGet, "/tcl/test-suite", nil, nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body ledgersvc.SelfTestReport
	decodeData(t, resp.Data, &body)
	assert.Equal(t, 1, body.Summary.Passed)
}
