package ledger

import (
	"time"

	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Direction tells whether an entry added to or took from the account balance
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// Entry is an immutable transaction log row. Amount is always positive;
// Direction carries the sign of the balance change it records.
type Entry struct {
	ID               int64            `json:"logid"`
	AccountNo        int64            `json:"accountno"`
	Type             shared.EntryType `json:"type"`
	Direction        Direction        `json:"direction"`
	Amount           decimal.Decimal  `json:"amount"`
	ReferenceAccount *int64           `json:"reference_account,omitempty"`
	PerformedBy      int64            `json:"performed_by"`
	CreatedAt        time.Time        `json:"created_at"`
}

// ValidPrecision reports whether amount fits the two-decimal money columns
func ValidPrecision(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}

// NewEntry builds a log entry for a signed balance change. The sign of delta picks the direction.
func NewEntry(accountNo int64, entryType shared.EntryType, delta decimal.Decimal, actor shared.Actor) *Entry {
	direction := DirectionCredit
	if delta.IsNegative() {
		direction = DirectionDebit
	}
	return &Entry{
		AccountNo:   accountNo,
		Type:        entryType,
		Direction:   direction,
		Amount:      delta.Abs(),
		PerformedBy: actor.ID,
		CreatedAt:   time.Now(),
	}
}

// WithReference sets the counterpart account of a transfer entry
func (e *Entry) WithReference(accountNo int64) *Entry {
	ref := accountNo
	e.ReferenceAccount = &ref
	return e
}

// SignedAmount returns the balance change this entry recorded
func (e *Entry) SignedAmount() decimal.Decimal {
	if e.Direction == DirectionDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}
