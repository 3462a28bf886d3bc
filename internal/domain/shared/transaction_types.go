package shared

// EntryType classifies a transaction log entry
type EntryType string

const (
	EntryTypeDeposit    EntryType = "deposit"
	EntryTypeWithdrawal EntryType = "withdrawal"
	EntryTypeTransfer   EntryType = "transfer"
	EntryTypeBatch      EntryType = "batch"
)

// Valid reports whether t is one of the known entry types
func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeDeposit, EntryTypeWithdrawal, EntryTypeTransfer, EntryTypeBatch:
		return true
	}
	return false
}

// StepStatus is the outcome of one step of a multi-step ledger run
type StepStatus string

const (
	StepStatusCompleted  StepStatus = "completed"
	StepStatusSuccess    StepStatus = "success"
	StepStatusRolledBack StepStatus = "rolled back"
	StepStatusFailed     StepStatus = "failed"
	StepStatusError      StepStatus = "error"
)

// TransactionOutcome describes how a top-level transaction ended
type TransactionOutcome string

const (
	OutcomeCommitted  TransactionOutcome = "COMMITTED"
	OutcomeRolledBack TransactionOutcome = "ROLLED BACK"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
