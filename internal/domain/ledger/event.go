package ledger

import (
	"time"

	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is the published form of a committed transaction log entry.
// It travels through the outbox and Kafka and is mirrored into MongoDB.
type Event struct {
	EventID          uuid.UUID        `json:"event_id"`
	LogID            int64            `json:"log_id"`
	AccountNo        int64            `json:"accountno"`
	Type             shared.EntryType `json:"type"`
	Direction        Direction        `json:"direction"`
	Amount           decimal.Decimal  `json:"amount"`
	ReferenceAccount *int64           `json:"reference_account,omitempty"`
	PerformedBy      int64            `json:"performed_by"`
	CorrelationID    string           `json:"correlation_id,omitempty"`
	OccurredAt       time.Time        `json:"occurred_at"`
}

// NewEvent derives an event from a persisted entry
func NewEvent(entry *Entry, correlationID string) *Event {
	return &Event{
		EventID:          uuid.New(),
		LogID:            entry.ID,
		AccountNo:        entry.AccountNo,
		Type:             entry.Type,
		Direction:        entry.Direction,
		Amount:           entry.Amount,
		ReferenceAccount: entry.ReferenceAccount,
		PerformedBy:      entry.PerformedBy,
		CorrelationID:    correlationID,
		OccurredAt:       entry.CreatedAt,
	}
}
