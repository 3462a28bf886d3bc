package handler

import (
	"fmt"
	"log/slog"

	"github.com/core-banking-ledger/internal/api_gateway/middleware"
	"github.com/core-banking-ledger/internal/domain/shared"
	ledgersvc "github.com/core-banking-ledger/internal/ledger_engine/service"
	"github.com/gin-gonic/gin"
)

// TCLHandler exposes the transaction-control showcase endpoints.
// Failed runs still return whatever per-step results were collected.
type TCLHandler struct {
	ledger ledgersvc.Ledger
	logger *slog.Logger
}

// NewTCLHandler creates a new TCL handler
func NewTCLHandler(logger *slog.Logger, ledger ledgersvc.Ledger) *TCLHandler {
	return &TCLHandler{
		ledger: ledger,
		logger: logger,
	}
}

// BasicTransaction runs a deposit or withdrawal that commits or rolls back as a whole
func (h *TCLHandler) BasicTransaction(c *gin.Context) {
	var req BasicTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.ledger.BasicTransaction(c.Request.Context(), middleware.ResolveActor(c, req.UserID), ledgersvc.BasicTransactionRequest{
		AccountNo: req.AccountNo,
		Amount:    req.Amount,
		Type:      shared.EntryType(req.Type),
	})
	if err != nil {
		h.logger.Warn("Basic transaction rolled back", "account_no", req.AccountNo, "error", err)
		var partial interface{}
		if result != nil {
			partial = result
		}
		RespondLedgerFailure(c, err, partial)
		return
	}

	RespondOK(c, result)
}

// AtomicTransfer moves money between two accounts in one all-or-nothing transaction
func (h *TCLHandler) AtomicTransfer(c *gin.Context) {
	var req AtomicTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.ledger.AtomicTransfer(c.Request.Context(), middleware.ResolveActor(c, req.UserID), req.FromAccount, req.ToAccount, req.Amount)
	if err != nil {
		h.logger.Warn("Atomic transfer rolled back", "from_account", req.FromAccount, "to_account", req.ToAccount, "error", err)
		RespondLedgerFailure(c, err, failedTransfer(result))
		return
	}

	RespondOK(c, AtomicTransferResponse{Message: "Atomic transfer completed successfully", Details: result})
}

// SavepointDemo runs credit/debit steps on one account, undoing only the steps that break their floor
func (h *TCLHandler) SavepointDemo(c *gin.Context) {
	var req SavepointDemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.ledger.RunSavepointSequence(c.Request.Context(), middleware.ResolveActor(c, req.UserID), req.AccountNo, req.toOperations())
	if err != nil {
		h.logger.Warn("Savepoint demo rolled back", "account_no", req.AccountNo, "error", err)
		var partial interface{}
		if result != nil {
			partial = &SavepointDemoResponse{Message: "SAVEPOINT demonstration rolled back", Results: result}
		}
		RespondLedgerFailure(c, err, partial)
		return
	}

	RespondOK(c, SavepointDemoResponse{
		Message: fmt.Sprintf("SAVEPOINT demonstration completed with %d rollbacks", result.RollbacksPerformed),
		Results: result,
	})
}

// NestedTransactions runs sub-transactions across accounts under one top-level transaction
func (h *TCLHandler) NestedTransactions(c *gin.Context) {
	var req NestedTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.ledger.RunNested(c.Request.Context(), middleware.ResolveActor(c, req.UserID), req.toOperations())
	if err != nil {
		h.logger.Warn("Nested transactions rolled back", "operations", len(req.Operations), "error", err)
		var partial interface{}
		if result != nil {
			partial = &NestedTransactionsResponse{Message: "Main transaction rolled back", Results: result}
		}
		RespondLedgerFailure(c, err, partial)
		return
	}

	RespondOK(c, NestedTransactionsResponse{Message: "Nested transactions completed successfully", Results: result})
}

// BatchProcessing applies independent balance changes; failing items never block the rest
func (h *TCLHandler) BatchProcessing(c *gin.Context) {
	var req BatchProcessingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.ledger.RunBatch(c.Request.Context(), middleware.ResolveActor(c, req.UserID), req.toItems())
	if err != nil {
		h.logger.Error("Batch processing rolled back", "operations", len(req.Operations), "error", err)
		var partial interface{}
		if result != nil {
			partial = &BatchProcessingResponse{Message: "Batch processing rolled back", BatchResults: result}
		}
		RespondLedgerFailure(c, err, partial)
		return
	}

	RespondOK(c, BatchProcessingResponse{
		Message:      fmt.Sprintf("Batch processing completed: %d successful, %d failed", result.Successful, result.Failed),
		BatchResults: result,
	})
}

// TestSuite runs the live commit, rollback and savepoint checks
func (h *TCLHandler) TestSuite(c *gin.Context) {
	report, err := h.ledger.RunSelfTest(c.Request.Context())
	if err != nil {
		h.logger.Error("Self test could not run", "error", err)
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, report)
}

// failedTransfer wraps the rolled back transfer details, if any
func failedTransfer(result *ledgersvc.TransferResult) interface{} {
	if result == nil {
		return nil
	}
	return &AtomicTransferResponse{Message: "Atomic transfer rolled back", Details: result}
}
