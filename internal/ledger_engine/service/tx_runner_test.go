package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresTxRunner_InTx(t *testing.T) {
	t.Run("commits and scopes timeouts to the transaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec("set_config").WithArgs("5000", "2000").WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectExec("UPDATE accounts").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		runner := NewPostgresTxRunner(mock, 5*time.Second, 2*time.Second, slog.Default())
		err = runner.InTx(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
			_, err := tx.Exec(ctx, "UPDATE accounts SET balance = balance + 1 WHERE accountno = 1")
			return err
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ledger errors roll back and pass through", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		want := shared.NewLedgerError(shared.KindInsufficientFunds, "Insufficient funds")
		runner := NewPostgresTxRunner(mock, 0, 0, slog.Default())
		err = runner.InTx(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
			return want
		})

		assert.Same(t, want, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deadlocks become store failures", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE accounts").WillReturnError(&pgconn.PgError{Code: "40P01"})
		mock.ExpectRollback()

		runner := NewPostgresTxRunner(mock, 0, 0, slog.Default())
		err = runner.InTx(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
			_, err := tx.Exec(ctx, "UPDATE accounts SET balance = 0")
			return err
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrStoreFailure)
		assert.Equal(t, "Deadlock detected, transaction rolled back", err.Error())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin().WillReturnError(errors.New("too many clients"))

		runner := NewPostgresTxRunner(mock, 0, 0, slog.Default())
		called := false
		err = runner.InTx(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
			called = true
			return nil
		})

		assert.False(t, called)
		assert.ErrorIs(t, err, shared.ErrStoreFailure)
	})

	t.Run("panic rolls back and propagates", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		runner := NewPostgresTxRunner(mock, 0, 0, slog.Default())
		assert.Panics(t, func() {
			_ = runner.InTx(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
				panic("boom")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
