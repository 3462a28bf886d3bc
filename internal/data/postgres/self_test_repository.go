package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/core-banking-ledger/internal/domain/probe"
	"github.com/core-banking-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// probeRowID is the row seeded by the initial migration
const probeRowID = 1

// ErrProbeMissing is returned when the seeded probe row has been removed
var ErrProbeMissing = errors.New("self test probe row is missing")

// SelfTestRepository implements probe.Repository on the tcl_self_test table
type SelfTestRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSelfTestRepository creates a new PostgreSQL probe repository
func NewSelfTestRepository(logger *slog.Logger, db persistence.Querier) probe.Repository {
	return &SelfTestRepository{
		querier: db,
		logger:  logger,
	}
}

func (r *SelfTestRepository) WithTx(tx pgx.Tx) probe.Repository {
	return &SelfTestRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func (r *SelfTestRepository) Counter(ctx context.Context) (decimal.Decimal, error) {
	var counter decimal.Decimal
	err := r.querier.QueryRow(ctx, `SELECT counter FROM tcl_self_test WHERE probe_id = $1`, probeRowID).Scan(&counter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrProbeMissing
		}
		r.logger.Error("Failed to read probe counter", "error", err)
		return decimal.Zero, fmt.Errorf("failed to read probe counter: %w", err)
	}
	return counter, nil
}

func (r *SelfTestRepository) Add(ctx context.Context, delta decimal.Decimal) (decimal.Decimal, error) {
	var counter decimal.Decimal
	err := r.querier.QueryRow(ctx,
		`UPDATE tcl_self_test SET counter = counter + $1 WHERE probe_id = $2 RETURNING counter`,
		delta, probeRowID,
	).Scan(&counter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrProbeMissing
		}
		r.logger.Error("Failed to move probe counter", "error", err)
		return decimal.Zero, fmt.Errorf("failed to move probe counter: %w", err)
	}
	return counter, nil
}
