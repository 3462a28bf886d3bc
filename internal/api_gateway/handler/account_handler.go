package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/core-banking-ledger/internal/api_gateway/middleware"
	"github.com/core-banking-ledger/internal/api_gateway/service"
	ledgersvc "github.com/core-banking-ledger/internal/ledger_engine/service"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	ledger             ledgersvc.AccountLedger
	accountService     service.AccountService
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(
	logger *slog.Logger,
	ledger ledgersvc.AccountLedger,
	accountService service.AccountService,
	transactionService service.TransactionService,
) *AccountHandler {
	return &AccountHandler{
		ledger:             ledger,
		accountService:     accountService,
		transactionService: transactionService,
		logger:             logger,
	}
}

// Open handles opening a new account for an existing customer and branch
func (h *AccountHandler) Open(c *gin.Context) {
	var req OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	actor := middleware.ResolveActor(c, req.UserID)
	acc, err := h.ledger.OpenAccount(c.Request.Context(), actor, ledgersvc.OpenAccountRequest{
		CustomerID:     req.CustomerID,
		BranchID:       req.BranchID,
		Type:           req.Type,
		OpeningBalance: req.Balance,
	})
	if err != nil {
		h.logger.Error("Failed to open account", "customer_id", req.CustomerID, "error", err)
		RespondLedgerError(c, err)
		return
	}

	RespondCreated(c, OpenAccountResponse{
		AccountNo: acc.Number,
		Message:   "Account opened successfully",
	})
}

// List returns accounts, optionally filtered by ?status=
func (h *AccountHandler) List(c *gin.Context) {
	var query AccountListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), query.Status)
	if err != nil {
		h.logger.Error("Failed to list accounts", "error", err)
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, accounts)
}

// Get retrieves one account by number
func (h *AccountHandler) Get(c *gin.Context) {
	accountNo, ok := parseAccountNo(c)
	if !ok {
		return
	}

	acc, err := h.accountService.GetAccount(c.Request.Context(), accountNo)
	if err != nil {
		h.logger.Warn("Failed to get account", "account_no", accountNo, "error", err)
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, acc)
}

// UpdateStatus moves an account to active, closed or suspended
func (h *AccountHandler) UpdateStatus(c *gin.Context) {
	accountNo, ok := parseAccountNo(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	actor := middleware.ResolveActor(c, req.UserID)
	status, err := h.ledger.UpdateStatus(c.Request.Context(), actor, accountNo, req.Status)
	if err != nil {
		h.logger.Error("Failed to update account status", "account_no", accountNo, "error", err)
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, MessageResponse{Message: fmt.Sprintf("Account %d is now %s", accountNo, status)})
}

// Transactions lists the log entries of one account, optionally by ?direction=credit|debit
func (h *AccountHandler) Transactions(c *gin.Context) {
	accountNo, ok := parseAccountNo(c)
	if !ok {
		return
	}

	var query AccountTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	entries, err := h.transactionService.ListAccountTransactions(c.Request.Context(), accountNo, query.Direction, query.Limit)
	if err != nil {
		h.logger.Error("Failed to list account transactions", "account_no", accountNo, "error", err)
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, entries)
}

// Statement returns a page of the mirrored ledger events of an account
func (h *AccountHandler) Statement(c *gin.Context) {
	accountNo, ok := parseAccountNo(c)
	if !ok {
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Warn("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	events, total, err := h.transactionService.GetStatement(c.Request.Context(), accountNo, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to read statement", "account_no", accountNo, "error", err)
		RespondLedgerError(c, err)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, events, pagination.Page, pagination.PerPage, int(total))
}

// parseAccountNo reads the :id path parameter and answers 400 when it is not a positive number
func parseAccountNo(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	accountNo, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || accountNo <= 0 {
		RespondBadRequest(c, "Invalid account number")
		return 0, false
	}
	return accountNo, true
}
