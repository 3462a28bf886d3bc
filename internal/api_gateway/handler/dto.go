package handler

import (
	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/shared"
	ledgersvc "github.com/core-banking-ledger/internal/ledger_engine/service"
	"github.com/shopspring/decimal"
)

// OpenAccountRequest represents a request to open an account.
// Missing references are reported by the ledger so callers get its message.
type OpenAccountRequest struct {
	CustomerID int64           `json:"customerid"`
	BranchID   int64           `json:"branchid"`
	Type       string          `json:"type"`
	Balance    decimal.Decimal `json:"balance"`
	UserID     int64           `json:"userid"`
}

type OpenAccountResponse struct {
	AccountNo int64  `json:"accountno"`
	Message   string `json:"message"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	UserID int64  `json:"userid"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// AmountRequest is the body of deposits and withdrawals
type AmountRequest struct {
	AccountNo int64           `json:"accountno"`
	Amount    decimal.Decimal `json:"amount"`
	UserID    int64           `json:"userid"`
}

type BalanceChangeResponse struct {
	Message string `json:"message"`
	*ledgersvc.BalanceChange
}

// TransferRequest is the body of staff transfers
type TransferRequest struct {
	FromAccount int64           `json:"fromaccount"`
	ToAccount   int64           `json:"toaccount"`
	Amount      decimal.Decimal `json:"amount"`
	UserID      int64           `json:"userid"`
}

type TransferResponse struct {
	Message string `json:"message"`
	*ledgersvc.TransferResult
}

// BasicTransactionRequest is the body of /tcl/basic-transaction
type BasicTransactionRequest struct {
	AccountNo int64           `json:"accountno"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type" binding:"required,oneof=deposit withdrawal"`
	UserID    int64           `json:"userid"`
}

// AtomicTransferRequest is the body of /tcl/atomic-transfer and /customer/transfer
type AtomicTransferRequest struct {
	FromAccount int64           `json:"fromAccount"`
	ToAccount   int64           `json:"toAccount"`
	Amount      decimal.Decimal `json:"amount"`
	Remark      string          `json:"remark,omitempty"`
	UserID      int64           `json:"userid"`
}

type AtomicTransferResponse struct {
	Message string                    `json:"message"`
	Details *ledgersvc.TransferResult `json:"details"`
}

type SavepointOperationRequest struct {
	Type       string           `json:"type" binding:"required,oneof=credit debit"`
	Amount     decimal.Decimal  `json:"amount"`
	MinBalance *decimal.Decimal `json:"minBalance,omitempty"`
}

type SavepointDemoRequest struct {
	AccountNo  int64                       `json:"accountno"`
	Operations []SavepointOperationRequest `json:"operations" binding:"required,min=1,dive"`
	UserID     int64                       `json:"userid"`
}

type SavepointDemoResponse struct {
	Message string                     `json:"message"`
	Results *ledgersvc.SavepointResult `json:"results"`
}

// NestedOperationRequest carries a signed amount; negative values debit the account
type NestedOperationRequest struct {
	AccountNo         int64           `json:"accountno"`
	Amount            decimal.Decimal `json:"amount"`
	Type              string          `json:"type" binding:"required"`
	RequiresSavepoint bool            `json:"requiresSavepoint"`
}

type NestedTransactionsRequest struct {
	Operations []NestedOperationRequest `json:"operations" binding:"required,min=1,dive"`
	UserID     int64                    `json:"userid"`
}

type NestedTransactionsResponse struct {
	Message string                  `json:"message"`
	Results *ledgersvc.NestedResult `json:"results"`
}

type BatchOperationRequest struct {
	AccountNo int64           `json:"accountno"`
	Amount    decimal.Decimal `json:"amount"`
}

type BatchProcessingRequest struct {
	Operations []BatchOperationRequest `json:"operations" binding:"required,min=1,dive"`
	UserID     int64                   `json:"userid"`
}

type BatchProcessingResponse struct {
	Message      string                 `json:"message"`
	BatchResults *ledgersvc.BatchResult `json:"batchResults"`
}

// ListQuery holds the optional row limit of list endpoints
type ListQuery struct {
	Limit int `form:"limit" binding:"min=0"`
}

type AccountListQuery struct {
	Status string `form:"status"`
}

type AccountTransactionsQuery struct {
	Limit     int    `form:"limit" binding:"min=0"`
	Direction string `form:"direction"`
}

type AuditLogQuery struct {
	Limit  int    `form:"limit" binding:"min=0"`
	Search string `form:"search"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

func (r SavepointDemoRequest) toOperations() []ledgersvc.SavepointOperation {
	ops := make([]ledgersvc.SavepointOperation, 0, len(r.Operations))
	for _, op := range r.Operations {
		ops = append(ops, ledgersvc.SavepointOperation{
			Type:       ledger.Direction(op.Type),
			Amount:     op.Amount,
			MinBalance: op.MinBalance,
		})
	}
	return ops
}

func (r NestedTransactionsRequest) toOperations() []ledgersvc.NestedOperation {
	ops := make([]ledgersvc.NestedOperation, 0, len(r.Operations))
	for _, op := range r.Operations {
		ops = append(ops, ledgersvc.NestedOperation{
			AccountNo:         op.AccountNo,
			Amount:            op.Amount,
			Type:              shared.EntryType(op.Type),
			RequiresSavepoint: op.RequiresSavepoint,
		})
	}
	return ops
}

func (r BatchProcessingRequest) toItems() []ledgersvc.BatchItem {
	items := make([]ledgersvc.BatchItem, 0, len(r.Operations))
	for _, op := range r.Operations {
		items = append(items, ledgersvc.BatchItem{AccountNo: op.AccountNo, Amount: op.Amount})
	}
	return items
}
