package persistence

import (
	"context"
	"errors"

	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes that indicate contention or timeouts rather than bad input
const (
	codeDeadlockDetected     = "40P01"
	codeSerializationFailure = "40001"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

// ClassifyError maps an error coming out of the store onto the ledger taxonomy.
// Errors already in the taxonomy pass through unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	var le *shared.LedgerError
	if errors.As(err, &le) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeDeadlockDetected:
			return shared.StoreFailure("Deadlock detected, transaction rolled back", err)
		case codeSerializationFailure:
			return shared.StoreFailure("Concurrent update conflict, transaction rolled back", err)
		case codeLockNotAvailable:
			return shared.StoreFailure("Timed out waiting for account lock", err)
		case codeQueryCanceled:
			return shared.StoreFailure("Statement timed out", err)
		}
		return shared.StoreFailure(pgErr.Message, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return shared.StoreFailure("Operation cancelled before completion", err)
	}

	return shared.StoreFailure(err.Error(), err)
}
