package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/core-banking-ledger/internal/domain/account"
	"github.com/core-banking-ledger/internal/domain/audit"
	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// OpenAccount creates an active account and records its opening deposit
func (e *Engine) OpenAccount(ctx context.Context, actor shared.Actor, req OpenAccountRequest) (*account.Account, error) {
	logger := e.loggerFor(ctx, "open_account")

	if err := e.validator.ValidateActor(actor); err != nil {
		return nil, err
	}
	accountType, err := account.ParseType(req.Type)
	if err != nil {
		return nil, invalidRequest("Invalid account type")
	}
	if err := e.validator.ValidateOpeningBalance(req.OpeningBalance); err != nil {
		return nil, err
	}
	acc, err := account.NewAccount(req.CustomerID, req.BranchID, accountType, req.OpeningBalance)
	if err != nil {
		if errors.Is(err, account.ErrMissingReferences) {
			return nil, invalidRequest("Customer ID and branch ID are required")
		}
		return nil, shared.NewLedgerError(shared.KindInvalidAmount, "Opening balance cannot be negative")
	}

	err = e.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := e.accounts.Open(ctx, tx, acc); err != nil {
			return err
		}
		if acc.Balance.IsPositive() {
			entry := ledger.NewEntry(acc.Number, shared.EntryTypeDeposit, acc.Balance, actor)
			if err := e.recorder.RecordEntry(ctx, tx, entry); err != nil {
				return err
			}
		}
		description := fmt.Sprintf("Opened %s account %d for customer %d with initial balance %s",
			acc.Type, acc.Number, acc.CustomerID, money(acc.Balance))
		return e.recorder.RecordAudit(ctx, tx, actor, audit.ActionOpenAccount, description)
	})
	if err != nil {
		description := fmt.Sprintf("Opening account for customer %d failed: %s", req.CustomerID, messageOf(err))
		return nil, e.rolledBack(ctx, logger, actor, audit.RollbackAction(audit.ActionOpenAccount), description, err)
	}

	logger.Info("Account opened", "account_no", acc.Number, "customer_id", acc.CustomerID)
	return acc, nil
}

// Deposit credits an active account
func (e *Engine) Deposit(ctx context.Context, actor shared.Actor, accountNo int64, amount decimal.Decimal) (*BalanceChange, error) {
	return e.applySingle(ctx, actor, accountNo, amount, shared.EntryTypeDeposit)
}

// Withdraw debits an active account, checking the balance under the row lock
func (e *Engine) Withdraw(ctx context.Context, actor shared.Actor, accountNo int64, amount decimal.Decimal) (*BalanceChange, error) {
	return e.applySingle(ctx, actor, accountNo, amount, shared.EntryTypeWithdrawal)
}

func (e *Engine) applySingle(
	ctx context.Context,
	actor shared.Actor,
	accountNo int64,
	amount decimal.Decimal,
	entryType shared.EntryType,
) (*BalanceChange, error) {
	logger := e.loggerFor(ctx, string(entryType)).With("account_no", accountNo)

	if err := e.validator.ValidateActor(actor); err != nil {
		return nil, err
	}
	if err := e.validator.ValidateAmount(accountNo, amount); err != nil {
		return nil, err
	}

	action, delta := audit.ActionDeposit, amount
	if entryType == shared.EntryTypeWithdrawal {
		action, delta = audit.ActionWithdrawal, amount.Neg()
	}

	var change *BalanceChange
	err := e.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		acc, err := e.accounts.Lock(ctx, tx, accountNo)
		if err != nil {
			return err
		}
		if !acc.IsActive() {
			return notActive("Account is not active")
		}
		if entryType == shared.EntryTypeWithdrawal && !acc.CanWithdraw(amount) {
			return insufficientFunds("Insufficient funds")
		}

		balance, err := e.accounts.Apply(ctx, tx, accountNo, delta)
		if err != nil {
			return err
		}
		if err := e.recorder.RecordEntry(ctx, tx, ledger.NewEntry(accountNo, entryType, delta, actor)); err != nil {
			return err
		}

		description := fmt.Sprintf("Deposited %s to account %d", money(amount), accountNo)
		if entryType == shared.EntryTypeWithdrawal {
			description = fmt.Sprintf("Withdrew %s from account %d", money(amount), accountNo)
		}
		if err := e.recorder.RecordAudit(ctx, tx, actor, action, description); err != nil {
			return err
		}

		change = &BalanceChange{
			AccountNo:       accountNo,
			Amount:          amount,
			PreviousBalance: acc.Balance,
			Balance:         balance,
		}
		return nil
	})
	if err != nil {
		description := fmt.Sprintf("%s of %s on account %d rolled back: %s", entryType, money(amount), accountNo, messageOf(err))
		return nil, e.rolledBack(ctx, logger, actor, audit.RollbackAction(action), description, err)
	}

	logger.Info("Balance updated", "amount", amount.String(), "balance", change.Balance.String())
	return change, nil
}

// UpdateStatus moves an account to a new lifecycle status. No log entry is written.
func (e *Engine) UpdateStatus(ctx context.Context, actor shared.Actor, accountNo int64, rawStatus string) (account.Status, error) {
	logger := e.loggerFor(ctx, "update_status").With("account_no", accountNo)

	if err := e.validator.ValidateActor(actor); err != nil {
		return "", err
	}
	status, err := e.validator.ParseStatus(rawStatus)
	if err != nil {
		return "", err
	}

	err = e.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := e.accounts.SetStatus(ctx, tx, accountNo, status); err != nil {
			return err
		}
		description := fmt.Sprintf("Changed account %d status to %s", accountNo, status)
		return e.recorder.RecordAudit(ctx, tx, actor, audit.ActionUpdateAccountStatus, description)
	})
	if err != nil {
		description := fmt.Sprintf("Changing account %d status to %s failed: %s", accountNo, status, messageOf(err))
		return "", e.rolledBack(ctx, logger, actor, audit.RollbackAction(audit.ActionUpdateAccountStatus), description, err)
	}

	logger.Info("Account status updated", "status", status)
	return status, nil
}

// BasicTransaction is the TCL showcase deposit/withdrawal. The balance is checked after the update
// so an overdraft is caught by the post-condition and undone by the rollback.
func (e *Engine) BasicTransaction(ctx context.Context, actor shared.Actor, req BasicTransactionRequest) (*BasicTransactionResult, error) {
	logger := e.loggerFor(ctx, "basic_transaction").With("account_no", req.AccountNo)

	if err := e.validator.ValidateActor(actor); err != nil {
		return nil, err
	}
	if req.Type != shared.EntryTypeDeposit && req.Type != shared.EntryTypeWithdrawal {
		return nil, invalidRequest("Type must be deposit or withdrawal")
	}
	if err := e.validator.ValidateAmount(req.AccountNo, req.Amount); err != nil {
		return nil, err
	}

	delta := req.Amount
	if req.Type == shared.EntryTypeWithdrawal {
		delta = req.Amount.Neg()
	}
	summary := fmt.Sprintf("%s of %s to account %d", req.Type, money(req.Amount), req.AccountNo)

	err := e.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		acc, err := e.accounts.Lock(ctx, tx, req.AccountNo)
		if err != nil {
			return err
		}
		if !acc.IsActive() {
			return notActive("Account is not active")
		}
		balance, err := e.accounts.Apply(ctx, tx, req.AccountNo, delta)
		if err != nil {
			return err
		}
		if balance.IsNegative() {
			return insufficientFunds("Insufficient funds - transaction will be rolled back")
		}
		if err := e.recorder.RecordEntry(ctx, tx, ledger.NewEntry(req.AccountNo, req.Type, delta, actor)); err != nil {
			return err
		}
		return e.recorder.RecordAudit(ctx, tx, actor, audit.TCLAction(string(req.Type)), summary+" - COMMITTED")
	})
	if err != nil {
		result := &BasicTransactionResult{Message: messageOf(err), Transaction: shared.OutcomeRolledBack}
		action := audit.RollbackAction(strings.ToUpper(string(req.Type)))
		return result, e.rolledBack(ctx, logger, actor, action, summary+" - ROLLED BACK: "+messageOf(err), err)
	}

	return &BasicTransactionResult{
		Message:     fmt.Sprintf("%s completed successfully", req.Type),
		Transaction: shared.OutcomeCommitted,
	}, nil
}
