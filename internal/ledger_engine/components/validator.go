package components

import (
	"fmt"

	"github.com/core-banking-ledger/internal/domain/account"
	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/core-banking-ledger/internal/ledger_engine/service"
	"github.com/shopspring/decimal"
)

// ValidatorImpl implements the Validator interface
type ValidatorImpl struct {
	maxOperations int
}

// NewValidator creates a validator that caps multi-step requests at maxOperations (0 means no cap)
func NewValidator(maxOperations int) service.Validator {
	return &ValidatorImpl{maxOperations: maxOperations}
}

func (v *ValidatorImpl) ValidateActor(actor shared.Actor) error {
	if !actor.Valid() {
		return shared.NewLedgerError(shared.KindInvalidRequest, "An actor is required for ledger writes")
	}
	return nil
}

func (v *ValidatorImpl) ValidateAmount(accountNo int64, amount decimal.Decimal) error {
	if accountNo <= 0 || !validMoney(amount) {
		return shared.NewLedgerError(shared.KindInvalidAmount, "Valid account number and positive amount are required")
	}
	return nil
}

// ValidateTransfer checks the same-account rule before the amount
func (v *ValidatorImpl) ValidateTransfer(from, to int64, amount decimal.Decimal) error {
	if from == to {
		return shared.NewLedgerError(shared.KindSameAccount, "Cannot transfer to the same account")
	}
	if from <= 0 || to <= 0 || !validMoney(amount) {
		return shared.NewLedgerError(shared.KindInvalidAmount, "Valid account numbers and positive amount are required")
	}
	return nil
}

func (v *ValidatorImpl) ValidateOpeningBalance(amount decimal.Decimal) error {
	if amount.IsNegative() || !ledger.ValidPrecision(amount) {
		return shared.NewLedgerError(shared.KindInvalidAmount, "Opening balance must be zero or a positive amount")
	}
	return nil
}

func (v *ValidatorImpl) ParseStatus(raw string) (account.Status, error) {
	status, err := account.ParseStatus(raw)
	if err != nil {
		return "", shared.NewLedgerError(shared.KindInvalidStatus, "Invalid status")
	}
	return status, nil
}

func (v *ValidatorImpl) ValidateOperationCount(n int) error {
	if n == 0 {
		return shared.NewLedgerError(shared.KindInvalidRequest, "At least one operation is required")
	}
	if v.maxOperations > 0 && n > v.maxOperations {
		return shared.NewLedgerError(shared.KindInvalidRequest, fmt.Sprintf("Too many operations (max %d)", v.maxOperations))
	}
	return nil
}

// ValidateStep checks one signed sub-operation; step is 1-based for messages
func (v *ValidatorImpl) ValidateStep(step int, accountNo int64, amount decimal.Decimal) error {
	if accountNo <= 0 {
		return shared.NewLedgerError(shared.KindInvalidRequest, fmt.Sprintf("Operation %d: account number is required", step))
	}
	if amount.IsZero() || !ledger.ValidPrecision(amount) {
		return shared.NewLedgerError(shared.KindInvalidAmount,
			fmt.Sprintf("Operation %d: amount must be non-zero with at most two decimal places", step))
	}
	return nil
}

func validMoney(amount decimal.Decimal) bool {
	return amount.IsPositive() && ledger.ValidPrecision(amount)
}
