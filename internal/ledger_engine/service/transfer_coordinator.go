package service

import (
	"context"
	"fmt"

	"github.com/core-banking-ledger/internal/domain/account"
	"github.com/core-banking-ledger/internal/domain/audit"
	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// transferVariant holds what differs between the three transfer entry points.
// The locking protocol and validation order are shared.
type transferVariant struct {
	name           string
	action         string
	rollbackAction string
	sourceMissing  string
	sourceInactive string
	destMissing    string
	destInactive   string
	insufficient   string
	// owner, when non-zero, must own the source account
	owner       int64
	success     func(from, to int64, amount decimal.Decimal) string
	failure     func(from, to int64, amount decimal.Decimal, reason string) string
	invalidCopy string
}

var plainTransfer = transferVariant{
	name:           "transfer",
	action:         audit.ActionTransfer,
	rollbackAction: audit.RollbackAction(audit.ActionTransfer),
	sourceMissing:  "Sender account not found",
	sourceInactive: "Sender account is not active",
	destMissing:    "Receiver account not found",
	destInactive:   "Receiver account is not active",
	insufficient:   "Insufficient funds",
	success: func(from, to int64, amount decimal.Decimal) string {
		return fmt.Sprintf("Transferred %s from account %d to %d", money(amount), from, to)
	},
	failure: func(from, to int64, amount decimal.Decimal, reason string) string {
		return fmt.Sprintf("Transfer of %s from account %d to %d rolled back: %s", money(amount), from, to, reason)
	},
}

var atomicTransfer = transferVariant{
	name:           "atomic_transfer",
	action:         audit.ActionAtomicTransferSuccess,
	rollbackAction: audit.ActionAtomicTransferFailure,
	sourceMissing:  "Sender account not found",
	sourceInactive: "Sender account inactive",
	destMissing:    "Receiver account not found",
	destInactive:   "Receiver account inactive",
	insufficient:   "Insufficient funds",
	success: func(from, to int64, amount decimal.Decimal) string {
		return fmt.Sprintf("Atomic transfer: %s from %d to %d - COMMITTED", money(amount), from, to)
	},
	failure: func(_, _ int64, _ decimal.Decimal, reason string) string {
		return "Atomic transfer rolled back: " + reason
	},
}

func customerTransfer(customerID int64) transferVariant {
	return transferVariant{
		name:           "customer_transfer",
		action:         audit.ActionCustomerTransfer,
		rollbackAction: audit.RollbackAction(audit.ActionCustomerTransfer),
		sourceMissing:  "Source account not found or access denied",
		sourceInactive: "Source account is not active",
		destMissing:    "Destination account not found",
		destInactive:   "Destination account is not active",
		insufficient:   "Insufficient funds in source account",
		owner:          customerID,
		invalidCopy:    "Transfer amount must be positive",
		success: func(from, to int64, amount decimal.Decimal) string {
			return fmt.Sprintf("Customer %d transferred %s from account %d to %d", customerID, money(amount), from, to)
		},
		failure: func(from, to int64, amount decimal.Decimal, reason string) string {
			return fmt.Sprintf("Customer %d transfer of %s from account %d to %d rolled back: %s",
				customerID, money(amount), from, to, reason)
		},
	}
}

// Transfer moves amount from one account to another
func (e *Engine) Transfer(ctx context.Context, actor shared.Actor, from, to int64, amount decimal.Decimal) (*TransferResult, error) {
	return e.transfer(ctx, actor, actor, from, to, amount, plainTransfer)
}

// AtomicTransfer is the TCL showcase transfer; it differs from Transfer only in its audit trail
func (e *Engine) AtomicTransfer(ctx context.Context, actor shared.Actor, from, to int64, amount decimal.Decimal) (*TransferResult, error) {
	return e.transfer(ctx, actor, actor, from, to, amount, atomicTransfer)
}

// CustomerTransfer lets a customer move money out of an account they own to any active account.
// The log and audit rows are attributed to the system actor.
func (e *Engine) CustomerTransfer(ctx context.Context, customer shared.Actor, from, to int64, amount decimal.Decimal) (*TransferResult, error) {
	if customer.Role != shared.RoleCustomer || customer.ID <= 0 {
		return nil, invalidRequest("A customer identity is required")
	}
	return e.transfer(ctx, e.systemActor, customer, from, to, amount, customerTransfer(customer.ID))
}

func (e *Engine) transfer(
	ctx context.Context,
	actor shared.Actor,
	caller shared.Actor,
	from, to int64,
	amount decimal.Decimal,
	variant transferVariant,
) (*TransferResult, error) {
	logger := e.loggerFor(ctx, variant.name).With("from_account", from, "to_account", to, "caller", caller.String())

	if err := e.validator.ValidateActor(actor); err != nil {
		return nil, err
	}
	if err := e.validator.ValidateTransfer(from, to, amount); err != nil {
		if variant.invalidCopy != "" && shared.KindOf(err) == shared.KindInvalidAmount {
			return nil, shared.NewLedgerError(shared.KindInvalidAmount, variant.invalidCopy)
		}
		return nil, err
	}

	result := &TransferResult{FromAccount: from, ToAccount: to, Amount: amount}
	err := e.runner.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		locked, err := e.accounts.LockMany(ctx, tx, from, to)
		if err != nil {
			return err
		}
		source, dest := locked[from], locked[to]
		if err := variant.check(source, dest, amount); err != nil {
			return err
		}

		if result.FromBalance, err = e.accounts.Apply(ctx, tx, from, amount.Neg()); err != nil {
			return err
		}
		if result.ToBalance, err = e.accounts.Apply(ctx, tx, to, amount); err != nil {
			return err
		}

		debit := ledger.NewEntry(from, shared.EntryTypeTransfer, amount.Neg(), actor).WithReference(to)
		if err := e.recorder.RecordEntry(ctx, tx, debit); err != nil {
			return err
		}
		credit := ledger.NewEntry(to, shared.EntryTypeTransfer, amount, actor).WithReference(from)
		if err := e.recorder.RecordEntry(ctx, tx, credit); err != nil {
			return err
		}

		return e.recorder.RecordAudit(ctx, tx, actor, variant.action, variant.success(from, to, amount))
	})
	if err != nil {
		result.Transaction = shared.OutcomeRolledBack
		result.FromBalance, result.ToBalance = decimal.Zero, decimal.Zero
		description := variant.failure(from, to, amount, messageOf(err))
		return result, e.rolledBack(ctx, logger, actor, variant.rollbackAction, description, err)
	}

	result.Transaction = shared.OutcomeCommitted
	logger.Info("Transfer committed", "amount", amount.String())
	return result, nil
}

// check validates the locked rows in a fixed order: source exists, source active,
// destination exists, destination active, then funds
func (v transferVariant) check(source, dest *account.Account, amount decimal.Decimal) error {
	if source == nil || (v.owner != 0 && source.CustomerID != v.owner) {
		return shared.NewLedgerError(shared.KindNotFound, v.sourceMissing)
	}
	if !source.IsActive() {
		return notActive(v.sourceInactive)
	}
	if dest == nil {
		return shared.NewLedgerError(shared.KindNotFound, v.destMissing)
	}
	if !dest.IsActive() {
		return notActive(v.destInactive)
	}
	if !source.CanWithdraw(amount) {
		return insufficientFunds(v.insufficient)
	}
	return nil
}
