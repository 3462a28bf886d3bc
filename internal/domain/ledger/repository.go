package ledger

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository persists the transaction log
type Repository interface {
	// Create inserts the entry and fills in its ID and CreatedAt
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context, limit int) ([]*Entry, error)
	ListByAccount(ctx context.Context, accountNo int64, direction Direction, limit int) ([]*Entry, error)
	WithTx(tx pgx.Tx) Repository
}

// MirrorRepository stores the read-side copy of published ledger events
type MirrorRepository interface {
	// Upsert stores the event keyed by its log id so redelivered events are harmless
	Upsert(ctx context.Context, event *Event) error
	GetByLogID(ctx context.Context, logID int64) (*Event, error)
	GetByAccount(ctx context.Context, accountNo int64, limit, offset int) ([]*Event, error)
	CountByAccount(ctx context.Context, accountNo int64) (int64, error)
}

// ErrEventNotFound indicates a missing mirrored event
type ErrEventNotFound struct {
	LogID int64
}

func (e ErrEventNotFound) Error() string {
	return "ledger event not found"
}

// Is implements the errors.Is interface for ErrEventNotFound
func (e ErrEventNotFound) Is(target error) bool {
	t, ok := target.(ErrEventNotFound)
	if !ok {
		return false
	}
	if t.LogID == 0 {
		return true
	}
	return e.LogID == t.LogID
}
