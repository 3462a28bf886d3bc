package handler

import (
	"log/slog"

	"github.com/core-banking-ledger/internal/api_gateway/middleware"
	"github.com/core-banking-ledger/internal/api_gateway/service"
	ledgersvc "github.com/core-banking-ledger/internal/ledger_engine/service"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles deposits, withdrawals, transfers and log reads
type TransactionHandler struct {
	accounts           ledgersvc.AccountLedger
	transfers          ledgersvc.TransferCoordinator
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(
	logger *slog.Logger,
	accounts ledgersvc.AccountLedger,
	transfers ledgersvc.TransferCoordinator,
	transactionService service.TransactionService,
) *TransactionHandler {
	return &TransactionHandler{
		accounts:           accounts,
		transfers:          transfers,
		transactionService: transactionService,
		logger:             logger,
	}
}

// Deposit credits an account
func (h *TransactionHandler) Deposit(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	change, err := h.accounts.Deposit(c.Request.Context(), middleware.ResolveActor(c, req.UserID), req.AccountNo, req.Amount)
	if err != nil {
		h.logger.Warn("Deposit failed", "account_no", req.AccountNo, "error", err)
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, BalanceChangeResponse{Message: "Deposit successful", BalanceChange: change})
}

// Withdraw debits an account when funds allow
func (h *TransactionHandler) Withdraw(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	change, err := h.accounts.Withdraw(c.Request.Context(), middleware.ResolveActor(c, req.UserID), req.AccountNo, req.Amount)
	if err != nil {
		h.logger.Warn("Withdrawal failed", "account_no", req.AccountNo, "error", err)
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, BalanceChangeResponse{Message: "Withdrawal successful", BalanceChange: change})
}

// Transfer moves money between two accounts
func (h *TransactionHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.transfers.Transfer(c.Request.Context(), middleware.ResolveActor(c, req.UserID), req.FromAccount, req.ToAccount, req.Amount)
	if err != nil {
		h.logger.Warn("Transfer failed", "from_account", req.FromAccount, "to_account", req.ToAccount, "error", err)
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, TransferResponse{Message: "Transfer successful", TransferResult: result})
}

// List returns the newest transaction log entries across all accounts
func (h *TransactionHandler) List(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	entries, err := h.transactionService.ListTransactions(c.Request.Context(), query.Limit)
	if err != nil {
		h.logger.Error("Failed to list transactions", "error", err)
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, entries)
}
