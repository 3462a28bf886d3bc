package audit

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Action tags written to the audit log
const (
	ActionOpenAccount           = "OPEN_ACCOUNT"
	ActionUpdateAccountStatus   = "UPDATE_ACCOUNT_STATUS"
	ActionDeposit               = "DEPOSIT"
	ActionWithdrawal            = "WITHDRAWAL"
	ActionTransfer              = "TRANSFER"
	ActionAtomicTransferSuccess = "ATOMIC_TRANSFER_SUCCESS"
	ActionAtomicTransferFailure = "ATOMIC_TRANSFER_ROLLBACK"
	ActionCustomerTransfer      = "CUSTOMER_TRANSFER"
	ActionSavepointDemo         = "SAVEPOINT_DEMO"
	ActionNestedTransactions    = "NESTED_TRANSACTIONS"
	ActionBatchProcessing       = "BATCH_PROCESSING"
	ActionSelfTest              = "TCL_TEST_SUITE"

	rollbackSuffix = "_ROLLBACK"
	tclSuffix      = "_TCL"
)

// RollbackAction derives the tag recorded when the operation behind action was rolled back
func RollbackAction(action string) string {
	return action + rollbackSuffix
}

// TCLAction is the tag of a committed basic transaction of the given entry type
func TCLAction(entryType string) string {
	return strings.ToUpper(entryType) + tclSuffix
}

// Entry is an append-only audit record
type Entry struct {
	ID          int64     `json:"logid"`
	ActorID     int64     `json:"userid"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewEntry builds an audit record attributed to actorID
func NewEntry(actorID int64, action, description string) *Entry {
	return &Entry{
		ActorID:     actorID,
		Action:      action,
		Description: description,
		CreatedAt:   time.Now(),
	}
}

// ListFilter narrows audit log reads
type ListFilter struct {
	Limit  int
	Search string // case-insensitive match on action or description
}

// Repository persists audit records
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter ListFilter) ([]*Entry, error)
	WithTx(tx pgx.Tx) Repository
}
