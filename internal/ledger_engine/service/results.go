package service

import (
	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OpenAccountRequest carries the fields of a new account
type OpenAccountRequest struct {
	CustomerID     int64
	BranchID       int64
	Type           string
	OpeningBalance decimal.Decimal
}

// BalanceChange is the result of a single-account deposit or withdrawal
type BalanceChange struct {
	AccountNo       int64           `json:"accountno"`
	Amount          decimal.Decimal `json:"amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	Balance         decimal.Decimal `json:"balance"`
}

// BasicTransactionRequest is a deposit or withdrawal run through the TCL showcase
type BasicTransactionRequest struct {
	AccountNo int64
	Amount    decimal.Decimal
	Type      shared.EntryType
}

type BasicTransactionResult struct {
	Message     string                    `json:"message"`
	Transaction shared.TransactionOutcome `json:"transaction"`
}

type TransferResult struct {
	FromAccount int64                     `json:"fromAccount"`
	ToAccount   int64                     `json:"toAccount"`
	Amount      decimal.Decimal           `json:"amount"`
	FromBalance decimal.Decimal           `json:"fromBalance"`
	ToBalance   decimal.Decimal           `json:"toBalance"`
	Transaction shared.TransactionOutcome `json:"transaction"`
}

// Final states of a multi-step run
const (
	FinalStateCommitted  = "committed"
	FinalStateRolledBack = "rolled back"
)

// SavepointOperation is one step of a savepoint sequence. MinBalance, when set,
// raises the floor the post-step balance is checked against; the floor is never below zero.
type SavepointOperation struct {
	Type       ledger.Direction
	Amount     decimal.Decimal
	MinBalance *decimal.Decimal
}

// Delta returns the signed balance change of the step
func (o SavepointOperation) Delta() decimal.Decimal {
	if o.Type == ledger.DirectionDebit {
		return o.Amount.Neg()
	}
	return o.Amount
}

type SavepointStepResult struct {
	Step         int               `json:"step"`
	Type         ledger.Direction  `json:"type"`
	Amount       decimal.Decimal   `json:"amount"`
	BalanceAfter decimal.Decimal   `json:"balanceAfter"`
	Savepoint    string            `json:"savepoint"`
	Status       shared.StepStatus `json:"status"`
	Reason       string            `json:"reason,omitempty"`
}

type SavepointResult struct {
	AccountNo          int64                 `json:"accountno"`
	InitialBalance     decimal.Decimal       `json:"initialBalance"`
	FinalBalance       decimal.Decimal       `json:"finalBalance"`
	Operations         []SavepointStepResult `json:"operations"`
	SavepointsCreated  int                   `json:"savepointsCreated"`
	RollbacksPerformed int                   `json:"rollbacksPerformed"`
	FinalState         string                `json:"finalState"`
}

// NestedOperation is one sub-transaction. Amount is signed.
type NestedOperation struct {
	AccountNo         int64
	Amount            decimal.Decimal
	Type              shared.EntryType
	RequiresSavepoint bool
}

type NestedStepResult struct {
	Step      int               `json:"step"`
	Account   int64             `json:"account"`
	Operation shared.EntryType  `json:"operation"`
	Amount    decimal.Decimal   `json:"amount"`
	Status    shared.StepStatus `json:"status"`
	Error     string            `json:"error,omitempty"`
	Savepoint *string           `json:"savepoint"`
}

type NestedResult struct {
	SubTransactions []NestedStepResult `json:"subTransactions"`
	FinalState      string             `json:"finalState"`
}

// BatchItem is one signed balance change. Positive amounts are deposits.
type BatchItem struct {
	AccountNo int64
	Amount    decimal.Decimal
}

type BatchItemResult struct {
	AccountNo int64             `json:"accountno"`
	Operation shared.EntryType  `json:"operation"`
	Amount    decimal.Decimal   `json:"amount"`
	Status    shared.StepStatus `json:"status"`
	Balance   *decimal.Decimal  `json:"balance,omitempty"`
	Error     string            `json:"error,omitempty"`
	Savepoint string            `json:"savepoint"`
}

type BatchResult struct {
	Processed  int               `json:"processed"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	Details    []BatchItemResult `json:"details"`
}

// Self test verdicts
const (
	TestPassed = "PASSED"
	TestFailed = "FAILED"
)

type SelfTestCase struct {
	Test        string `json:"test"`
	Result      string `json:"result"`
	Description string `json:"description"`
}

type SelfTestSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

type SelfTestReport struct {
	Results []SelfTestCase  `json:"results"`
	Summary SelfTestSummary `json:"summary"`
}

func (r *SelfTestReport) add(name string, passed bool, description string) {
	verdict := TestFailed
	if passed {
		verdict = TestPassed
		r.Summary.Passed++
	} else {
		r.Summary.Failed++
	}
	r.Summary.Total++
	r.Results = append(r.Results, SelfTestCase{Test: name, Result: verdict, Description: description})
}
