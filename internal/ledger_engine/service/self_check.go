package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/core-banking-ledger/internal/domain/audit"
	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/core-banking-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// errForcedRollback makes the runner roll the probe transaction back on purpose
var errForcedRollback = errors.New("forced rollback")

var (
	probeStep = decimal.NewFromInt(1)
	probeHalf = decimal.NewFromInt(50)
)

// RunSelfTest exercises commit, rollback and savepoint rollback against the probe row.
// Account balances are never touched.
func (e *Engine) RunSelfTest(ctx context.Context) (*SelfTestReport, error) {
	logger := e.loggerFor(ctx, "self_test")
	report := &SelfTestReport{Results: make([]SelfTestCase, 0, 3)}

	before, err := e.probes.Counter(ctx)
	if err != nil {
		return nil, shared.StoreFailure("Self test probe is unavailable", err)
	}

	// Basic COMMIT
	err = e.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := e.probes.WithTx(tx).Add(ctx, probeStep)
		return err
	})
	after, readErr := e.probes.Counter(ctx)
	passed, description := expectCounter(err, readErr, after, before.Add(probeStep), "COMMIT persisted the update")
	report.add("Basic COMMIT", passed, description)
	before = after

	// Basic ROLLBACK
	err = e.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := e.probes.WithTx(tx).Add(ctx, probeStep); err != nil {
			return err
		}
		return errForcedRollback
	})
	if errors.Is(err, errForcedRollback) {
		err = nil
	} else if err == nil {
		err = errors.New("transaction committed instead of rolling back")
	}
	after, readErr = e.probes.Counter(ctx)
	passed, description = expectCounter(err, readErr, after, before, "ROLLBACK reverted the update")
	report.add("Basic ROLLBACK", passed, description)
	before = after

	// SAVEPOINT and Partial Rollback
	err = e.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		probes := e.probes.WithTx(tx)
		if _, err := probes.Add(ctx, probeHalf); err != nil {
			return err
		}
		name := persistence.SavepointName(persistence.SavepointProbe, 0)
		if err := persistence.CreateSavepoint(ctx, tx, name); err != nil {
			return err
		}
		if _, err := probes.Add(ctx, probeHalf); err != nil {
			return err
		}
		if err := persistence.RollbackToSavepoint(ctx, tx, name); err != nil {
			return shared.RollbackFailure(err)
		}
		inside, err := probes.Counter(ctx)
		if err != nil {
			return err
		}
		if !inside.Equal(before.Add(probeHalf)) {
			return fmt.Errorf("savepoint rollback left %s, expected %s", inside, before.Add(probeHalf))
		}
		return nil
	})
	after, readErr = e.probes.Counter(ctx)
	passed, description = expectCounter(err, readErr, after, before.Add(probeHalf), "Only the update before the savepoint was kept")
	report.add("SAVEPOINT and Partial Rollback", passed, description)

	summary := fmt.Sprintf("TCL test suite: %d passed, %d failed", report.Summary.Passed, report.Summary.Failed)
	if err := e.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return e.recorder.RecordAudit(ctx, tx, e.systemActor, audit.ActionSelfTest, summary)
	}); err != nil {
		logger.Warn("Failed to audit self test", "error", err)
	}

	logger.Info("Self test finished", "passed", report.Summary.Passed, "failed", report.Summary.Failed)
	return report, nil
}

func expectCounter(txErr, readErr error, got, want decimal.Decimal, success string) (bool, string) {
	switch {
	case txErr != nil:
		return false, messageOf(txErr)
	case readErr != nil:
		return false, readErr.Error()
	case !got.Equal(want):
		return false, fmt.Sprintf("expected counter %s, got %s", want, got)
	}
	return true, success
}
