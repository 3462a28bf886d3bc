package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/core-banking-ledger/internal/domain/account"
	"github.com/core-banking-ledger/internal/domain/audit"
	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/core-banking-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const negativeBalanceMessage = "Negative balances detected - rolling back entire transaction"

// RunSavepointSequence applies ops to one account, each step behind its own savepoint.
// A step that leaves the balance below its floor is undone alone; the rest of the sequence commits.
func (e *Engine) RunSavepointSequence(
	ctx context.Context,
	actor shared.Actor,
	accountNo int64,
	ops []SavepointOperation,
) (*SavepointResult, error) {
	logger := e.loggerFor(ctx, "savepoint_sequence").With("account_no", accountNo)

	if err := e.validator.ValidateActor(actor); err != nil {
		return nil, err
	}
	if err := e.validator.ValidateOperationCount(len(ops)); err != nil {
		return nil, err
	}
	for i, op := range ops {
		if op.Type != ledger.DirectionCredit && op.Type != ledger.DirectionDebit {
			return nil, invalidRequest(fmt.Sprintf("Operation %d: type must be credit or debit", i+1))
		}
		if !op.Amount.IsPositive() {
			return nil, shared.NewLedgerError(shared.KindInvalidAmount, fmt.Sprintf("Operation %d: amount must be positive", i+1))
		}
		if err := e.validator.ValidateStep(i+1, accountNo, op.Delta()); err != nil {
			return nil, err
		}
	}

	result := &SavepointResult{AccountNo: accountNo}
	err := e.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		result.Operations = make([]SavepointStepResult, 0, len(ops))
		result.SavepointsCreated, result.RollbacksPerformed = 0, 0

		acc, err := e.accounts.Lock(ctx, tx, accountNo)
		if err != nil {
			return err
		}
		if !acc.IsActive() {
			return notActive("Account is not active")
		}
		result.InitialBalance = acc.Balance
		current := acc.Balance

		for i, op := range ops {
			step, err := e.savepointStep(ctx, tx, logger, accountNo, i, op, result)
			if err != nil {
				return err
			}
			current = step.BalanceAfter
			result.Operations = append(result.Operations, step)
		}
		result.FinalBalance = current

		// A step whose rollback failed leaves its delta in place; never commit it below zero
		if current.IsNegative() {
			return insufficientFunds(negativeBalanceMessage)
		}

		if net := netOfApplied(result.Operations); !net.IsZero() {
			entry := ledger.NewEntry(accountNo, shared.EntryTypeBatch, net, actor)
			if err := e.recorder.RecordEntry(ctx, tx, entry); err != nil {
				return err
			}
		}

		description := fmt.Sprintf("SAVEPOINT demo: %d savepoints, %d rollbacks", result.SavepointsCreated, result.RollbacksPerformed)
		return e.recorder.RecordAudit(ctx, tx, actor, audit.ActionSavepointDemo, description)
	})
	if err != nil {
		result.FinalState = FinalStateRolledBack
		description := fmt.Sprintf("SAVEPOINT demo on account %d rolled back: %s", accountNo, messageOf(err))
		return result, e.rolledBack(ctx, logger, actor, audit.RollbackAction(audit.ActionSavepointDemo), description, err)
	}

	result.FinalState = FinalStateCommitted
	logger.Info("Savepoint sequence committed",
		"savepoints", result.SavepointsCreated,
		"rollbacks", result.RollbacksPerformed,
		"final_balance", result.FinalBalance.String())
	return result, nil
}

func (e *Engine) savepointStep(
	ctx context.Context,
	tx pgx.Tx,
	logger *slog.Logger,
	accountNo int64,
	index int,
	op SavepointOperation,
	result *SavepointResult,
) (SavepointStepResult, error) {
	name := persistence.SavepointName(persistence.SavepointStep, index)
	step := SavepointStepResult{
		Step:      index + 1,
		Type:      op.Type,
		Amount:    op.Amount,
		Savepoint: name,
		Status:    shared.StepStatusCompleted,
	}

	if err := persistence.CreateSavepoint(ctx, tx, name); err != nil {
		return step, err
	}
	result.SavepointsCreated++

	if _, err := e.accounts.Apply(ctx, tx, accountNo, op.Delta()); err != nil {
		return step, err
	}
	balance, err := e.accounts.Balance(ctx, tx, accountNo)
	if err != nil {
		return step, err
	}
	step.BalanceAfter = balance

	floor := decimal.Zero
	if op.MinBalance != nil && op.MinBalance.GreaterThan(floor) {
		floor = *op.MinBalance
	}
	if !balance.LessThan(floor) {
		return step, persistence.ReleaseSavepoint(ctx, tx, name)
	}

	if err := persistence.RollbackToSavepoint(ctx, tx, name); err != nil {
		logger.Error("Failed to roll back step", "step", step.Step, "savepoint", name, "error", err)
		step.Status = shared.StepStatusError
		step.Reason = shared.RollbackFailure(err).Message
		return step, nil
	}
	result.RollbacksPerformed++
	step.Status = shared.StepStatusRolledBack
	step.Reason = fmt.Sprintf("Balance (%s) below minimum (%s)", money(balance), money(floor))

	if step.BalanceAfter, err = e.accounts.Balance(ctx, tx, accountNo); err != nil {
		return step, err
	}
	logger.Debug("Step rolled back to savepoint", "step", step.Step, "savepoint", name)
	return step, nil
}

// netOfApplied sums the deltas still present in the balance: completed steps and
// steps whose rollback failed
func netOfApplied(steps []SavepointStepResult) decimal.Decimal {
	net := decimal.Zero
	for _, s := range steps {
		if s.Status == shared.StepStatusRolledBack {
			continue
		}
		if s.Type == ledger.DirectionDebit {
			net = net.Sub(s.Amount)
		} else {
			net = net.Add(s.Amount)
		}
	}
	return net
}

// RunNested applies signed sub-operations across accounts in one transaction.
// Only steps that ask for a savepoint get step-local rollback; any other failure aborts everything.
func (e *Engine) RunNested(ctx context.Context, actor shared.Actor, ops []NestedOperation) (*NestedResult, error) {
	logger := e.loggerFor(ctx, "nested_transactions")

	if err := e.validator.ValidateActor(actor); err != nil {
		return nil, err
	}
	if err := e.validator.ValidateOperationCount(len(ops)); err != nil {
		return nil, err
	}
	accountNos := make([]int64, 0, len(ops))
	for i, op := range ops {
		if !op.Type.Valid() {
			return nil, invalidRequest(fmt.Sprintf("Operation %d: invalid type %q", i+1, op.Type))
		}
		if err := e.validator.ValidateStep(i+1, op.AccountNo, op.Amount); err != nil {
			return nil, err
		}
		if err := checkNestedSign(i+1, op); err != nil {
			return nil, err
		}
		accountNos = append(accountNos, op.AccountNo)
	}

	result := &NestedResult{}
	err := e.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		result.SubTransactions = make([]NestedStepResult, 0, len(ops))

		locked, err := e.accounts.LockMany(ctx, tx, accountNos...)
		if err != nil {
			return err
		}

		rolledBackSteps := 0
		for i, op := range ops {
			step := NestedStepResult{
				Step:      i + 1,
				Account:   op.AccountNo,
				Operation: op.Type,
				Amount:    op.Amount,
				Status:    shared.StepStatusCompleted,
			}
			if op.RequiresSavepoint {
				name := persistence.SavepointName(persistence.SavepointNested, i)
				if err := persistence.CreateSavepoint(ctx, tx, name); err != nil {
					return err
				}
				step.Savepoint = &name
			}

			if stepErr := e.nestedStep(ctx, tx, actor, locked[op.AccountNo], op); stepErr != nil {
				step.Error = messageOf(stepErr)
				if step.Savepoint == nil {
					step.Status = shared.StepStatusFailed
					result.SubTransactions = append(result.SubTransactions, step)
					return stepErr
				}
				if rbErr := persistence.RollbackToSavepoint(ctx, tx, *step.Savepoint); rbErr != nil {
					logger.Error("Failed to roll back to savepoint", "savepoint", *step.Savepoint, "error", rbErr)
					step.Status = shared.StepStatusError
					result.SubTransactions = append(result.SubTransactions, step)
					return shared.RollbackFailure(rbErr)
				}
				step.Status = shared.StepStatusRolledBack
				rolledBackSteps++
			}
			result.SubTransactions = append(result.SubTransactions, step)
		}

		negatives, err := e.accounts.CountNegative(ctx, tx, accountNos)
		if err != nil {
			return err
		}
		if negatives > 0 {
			return insufficientFunds(negativeBalanceMessage)
		}

		description := fmt.Sprintf("Nested transactions: %d sub-transactions, %d rolled back", len(ops), rolledBackSteps)
		return e.recorder.RecordAudit(ctx, tx, actor, audit.ActionNestedTransactions, description)
	})
	if err != nil {
		result.FinalState = FinalStateRolledBack
		description := "Nested transactions rolled back: " + messageOf(err)
		return result, e.rolledBack(ctx, logger, actor, audit.RollbackAction(audit.ActionNestedTransactions), description, err)
	}

	result.FinalState = FinalStateCommitted
	logger.Info("Nested transactions committed", "steps", len(ops))
	return result, nil
}

// checkNestedSign keeps a deposit from debiting and a withdrawal from crediting
func checkNestedSign(step int, op NestedOperation) error {
	switch {
	case op.Type == shared.EntryTypeDeposit && op.Amount.IsNegative():
		return shared.NewLedgerError(shared.KindInvalidAmount, fmt.Sprintf("Operation %d: deposit amount must be positive", step))
	case op.Type == shared.EntryTypeWithdrawal && op.Amount.IsPositive():
		return shared.NewLedgerError(shared.KindInvalidAmount, fmt.Sprintf("Operation %d: withdrawal amount must be negative", step))
	}
	return nil
}

func (e *Engine) nestedStep(ctx context.Context, tx pgx.Tx, actor shared.Actor, acc *account.Account, op NestedOperation) error {
	if acc == nil {
		return shared.NewLedgerError(shared.KindNotFound, "Account not found")
	}
	if !acc.IsActive() {
		return notActive("Account is not active")
	}
	if _, err := e.accounts.Apply(ctx, tx, op.AccountNo, op.Amount); err != nil {
		return err
	}
	return e.recorder.RecordEntry(ctx, tx, ledger.NewEntry(op.AccountNo, op.Type, op.Amount, actor))
}
