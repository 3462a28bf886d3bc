package service

import (
	"context"

	"github.com/core-banking-ledger/internal/domain/account"
	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TxRunner executes fn inside one top-level transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// AccountLedger mutates single accounts
type AccountLedger interface {
	OpenAccount(ctx context.Context, actor shared.Actor, req OpenAccountRequest) (*account.Account, error)
	Deposit(ctx context.Context, actor shared.Actor, accountNo int64, amount decimal.Decimal) (*BalanceChange, error)
	Withdraw(ctx context.Context, actor shared.Actor, accountNo int64, amount decimal.Decimal) (*BalanceChange, error)
	UpdateStatus(ctx context.Context, actor shared.Actor, accountNo int64, status string) (account.Status, error)
	BasicTransaction(ctx context.Context, actor shared.Actor, req BasicTransactionRequest) (*BasicTransactionResult, error)
}

// TransferCoordinator moves money between two accounts
type TransferCoordinator interface {
	Transfer(ctx context.Context, actor shared.Actor, from, to int64, amount decimal.Decimal) (*TransferResult, error)
	AtomicTransfer(ctx context.Context, actor shared.Actor, from, to int64, amount decimal.Decimal) (*TransferResult, error)
	CustomerTransfer(ctx context.Context, customer shared.Actor, from, to int64, amount decimal.Decimal) (*TransferResult, error)
}

// SavepointOrchestrator runs multi-step sequences with per-step savepoints.
// On failure the partial result collected so far is returned alongside the error.
type SavepointOrchestrator interface {
	RunSavepointSequence(ctx context.Context, actor shared.Actor, accountNo int64, ops []SavepointOperation) (*SavepointResult, error)
	RunNested(ctx context.Context, actor shared.Actor, ops []NestedOperation) (*NestedResult, error)
}

// BatchRunner applies independent signed amounts, isolating each item behind its own savepoint
type BatchRunner interface {
	RunBatch(ctx context.Context, actor shared.Actor, items []BatchItem) (*BatchResult, error)
}

// SelfTester runs the live commit/rollback/savepoint checks
type SelfTester interface {
	RunSelfTest(ctx context.Context) (*SelfTestReport, error)
}

// Ledger is the full engine surface
type Ledger interface {
	AccountLedger
	TransferCoordinator
	SavepointOrchestrator
	BatchRunner
	SelfTester
}

// Validator rejects malformed requests before a transaction is opened
type Validator interface {
	ValidateActor(actor shared.Actor) error
	ValidateAmount(accountNo int64, amount decimal.Decimal) error
	ValidateTransfer(from, to int64, amount decimal.Decimal) error
	ValidateOpeningBalance(amount decimal.Decimal) error
	ParseStatus(raw string) (account.Status, error)
	ValidateOperationCount(n int) error
	ValidateStep(step int, accountNo int64, amount decimal.Decimal) error
}

// AccountManager performs row-level account work inside a caller's transaction
type AccountManager interface {
	// Open checks the customer and branch references and inserts the account
	Open(ctx context.Context, tx pgx.Tx, acc *account.Account) error
	// Lock takes the row lock on one account
	Lock(ctx context.Context, tx pgx.Tx, accountNo int64) (*account.Account, error)
	// LockMany takes row locks in ascending account number order
	LockMany(ctx context.Context, tx pgx.Tx, accountNos ...int64) (map[int64]*account.Account, error)
	// Apply adds a signed delta and returns the new balance
	Apply(ctx context.Context, tx pgx.Tx, accountNo int64, delta decimal.Decimal) (decimal.Decimal, error)
	Balance(ctx context.Context, tx pgx.Tx, accountNo int64) (decimal.Decimal, error)
	SetStatus(ctx context.Context, tx pgx.Tx, accountNo int64, status account.Status) error
	CountNegative(ctx context.Context, tx pgx.Tx, accountNos []int64) (int, error)
}

// Recorder appends transaction log, outbox and audit rows
type Recorder interface {
	// RecordEntry writes the log entry and its outbox event in tx
	RecordEntry(ctx context.Context, tx pgx.Tx, entry *ledger.Entry) error
	RecordAudit(ctx context.Context, tx pgx.Tx, actor shared.Actor, action, description string) error
	// RecordRollbackAudit writes outside any transaction after a rollback. Failures are only logged.
	RecordRollbackAudit(ctx context.Context, actor shared.Actor, action, description string)
}
