// Package probe describes the scratch row the live transaction self test mutates.
// It is isolated from accounts so running the self test never moves customer money.
package probe

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository reads and moves the probe counter
type Repository interface {
	Counter(ctx context.Context) (decimal.Decimal, error)
	// Add applies delta and returns the counter as seen by the current transaction
	Add(ctx context.Context, delta decimal.Decimal) (decimal.Decimal, error)
	WithTx(tx pgx.Tx) Repository
}
