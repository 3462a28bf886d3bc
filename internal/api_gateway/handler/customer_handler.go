package handler

import (
	"log/slog"
	"net/http"

	"github.com/core-banking-ledger/internal/api_gateway/middleware"
	ledgersvc "github.com/core-banking-ledger/internal/ledger_engine/service"
	"github.com/gin-gonic/gin"
)

// CustomerHandler serves the customer portal. Routes sit behind middleware.RequireCustomer.
type CustomerHandler struct {
	transfers ledgersvc.TransferCoordinator
	logger    *slog.Logger
}

func NewCustomerHandler(logger *slog.Logger, transfers ledgersvc.TransferCoordinator) *CustomerHandler {
	return &CustomerHandler{
		transfers: transfers,
		logger:    logger,
	}
}

// Transfer moves money out of an account owned by the authenticated customer
func (h *CustomerHandler) Transfer(c *gin.Context) {
	customer, ok := middleware.GetTokenActor(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Customer authentication required")
		return
	}

	var req AtomicTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.transfers.CustomerTransfer(c.Request.Context(), customer, req.FromAccount, req.ToAccount, req.Amount)
	if err != nil {
		h.logger.Warn("Customer transfer failed", "customer_id", customer.ID, "from_account", req.FromAccount, "error", err)
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, TransferResponse{Message: "Transfer completed successfully", TransferResult: result})
}
