package service

import (
	"context"
	"fmt"

	"github.com/core-banking-ledger/internal/domain/account"
	"github.com/core-banking-ledger/internal/domain/audit"
	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/core-banking-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// RunBatch applies every item behind its own savepoint. A failing item is rolled back
// to its savepoint and reported; the remaining items still commit.
func (e *Engine) RunBatch(ctx context.Context, actor shared.Actor, items []BatchItem) (*BatchResult, error) {
	logger := e.loggerFor(ctx, "batch_processing")

	if err := e.validator.ValidateActor(actor); err != nil {
		return nil, err
	}
	if err := e.validator.ValidateOperationCount(len(items)); err != nil {
		return nil, err
	}
	accountNos := make([]int64, 0, len(items))
	for _, item := range items {
		accountNos = append(accountNos, item.AccountNo)
	}

	result := &BatchResult{}
	err := e.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		*result = BatchResult{Details: make([]BatchItemResult, 0, len(items))}

		locked, err := e.accounts.LockMany(ctx, tx, accountNos...)
		if err != nil {
			return err
		}

		for i, item := range items {
			name := persistence.SavepointName(persistence.SavepointBatch, i)
			entryType := shared.EntryTypeDeposit
			if item.Amount.IsNegative() {
				entryType = shared.EntryTypeWithdrawal
			}
			detail := BatchItemResult{
				AccountNo: item.AccountNo,
				Operation: entryType,
				Amount:    item.Amount,
				Savepoint: name,
				Status:    shared.StepStatusSuccess,
			}

			if err := persistence.CreateSavepoint(ctx, tx, name); err != nil {
				return err
			}

			balance, itemErr := e.batchItem(ctx, tx, actor, locked[item.AccountNo], item, entryType)
			result.Processed++
			if itemErr == nil {
				if err := persistence.ReleaseSavepoint(ctx, tx, name); err != nil {
					return err
				}
				result.Successful++
				detail.Balance = &balance
				result.Details = append(result.Details, detail)
				continue
			}

			result.Failed++
			detail.Status = shared.StepStatusFailed
			detail.Error = messageOf(itemErr)
			if rbErr := persistence.RollbackToSavepoint(ctx, tx, name); rbErr != nil {
				logger.Error("Failed to roll back batch item", "savepoint", name, "error", rbErr)
				detail.Status = shared.StepStatusError
				detail.Error = fmt.Sprintf("%s; %s", detail.Error, shared.RollbackFailure(rbErr).Message)
			}
			logger.Debug("Batch item failed", "index", i, "account_no", item.AccountNo, "reason", detail.Error)
			result.Details = append(result.Details, detail)
		}

		// Only reachable when an item's rollback failed and left its delta behind
		negatives, err := e.accounts.CountNegative(ctx, tx, accountNos)
		if err != nil {
			return err
		}
		if negatives > 0 {
			return insufficientFunds(negativeBalanceMessage)
		}

		description := fmt.Sprintf("Batch processing: %d successful, %d failed out of %d total",
			result.Successful, result.Failed, result.Processed)
		return e.recorder.RecordAudit(ctx, tx, actor, audit.ActionBatchProcessing, description)
	})
	if err != nil {
		description := "Batch processing rolled back: " + messageOf(err)
		return result, e.rolledBack(ctx, logger, actor, audit.RollbackAction(audit.ActionBatchProcessing), description, err)
	}

	logger.Info("Batch committed", "successful", result.Successful, "failed", result.Failed)
	return result, nil
}

func (e *Engine) batchItem(
	ctx context.Context,
	tx pgx.Tx,
	actor shared.Actor,
	acc *account.Account,
	item BatchItem,
	entryType shared.EntryType,
) (decimal.Decimal, error) {
	if item.Amount.IsZero() || !ledger.ValidPrecision(item.Amount) {
		return decimal.Zero, shared.NewLedgerError(shared.KindInvalidAmount, "Invalid amount")
	}
	if acc == nil {
		return decimal.Zero, shared.NewLedgerError(shared.KindNotFound, "Account not found")
	}
	if !acc.IsActive() {
		return decimal.Zero, notActive("Account not active")
	}

	balance, err := e.accounts.Apply(ctx, tx, item.AccountNo, item.Amount)
	if err != nil {
		return decimal.Zero, err
	}
	if balance.IsNegative() {
		return decimal.Zero, insufficientFunds("Insufficient funds")
	}
	if err := e.recorder.RecordEntry(ctx, tx, ledger.NewEntry(item.AccountNo, entryType, item.Amount, actor)); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}
