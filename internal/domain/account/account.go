package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNegativeOpening     = errors.New("opening balance cannot be negative")
	ErrMissingReferences   = errors.New("customer ID and branch ID are required")
	ErrInvalidAccountType  = errors.New("invalid account type")
	ErrInvalidStatusString = errors.New("invalid status")
)

// Type is the product type of an account
type Type string

const (
	TypeSaving  Type = "saving"
	TypeCurrent Type = "current"
	TypeFixed   Type = "fixed"
)

// Status is the lifecycle state of an account
type Status string

const (
	StatusActive    Status = "active"
	StatusClosed    Status = "closed"
	StatusSuspended Status = "suspended"
)

// ParseStatus validates a requested status transition target
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusActive, StatusClosed, StatusSuspended:
		return s, nil
	}
	return "", ErrInvalidStatusString
}

// ParseType validates an account type, defaulting to saving when empty
func ParseType(raw string) (Type, error) {
	if raw == "" {
		return TypeSaving, nil
	}
	switch t := Type(raw); t {
	case TypeSaving, TypeCurrent, TypeFixed:
		return t, nil
	}
	return "", ErrInvalidAccountType
}

// Account represents a bank account row
type Account struct {
	Number     int64           `json:"accountno"`
	CustomerID int64           `json:"customerid"`
	BranchID   int64           `json:"branchid"`
	Type       Type            `json:"type"`
	Balance    decimal.Decimal `json:"balance"`
	Status     Status          `json:"status"`
	OpenedAt   time.Time       `json:"opened_at"`
}

// NewAccount prepares an account for insertion; the number is assigned by the store
func NewAccount(customerID, branchID int64, accountType Type, openingBalance decimal.Decimal) (*Account, error) {
	if customerID <= 0 || branchID <= 0 {
		return nil, ErrMissingReferences
	}
	if openingBalance.IsNegative() {
		return nil, ErrNegativeOpening
	}
	if accountType == "" {
		accountType = TypeSaving
	}

	return &Account{
		CustomerID: customerID,
		BranchID:   branchID,
		Type:       accountType,
		Balance:    openingBalance,
		Status:     StatusActive,
		OpenedAt:   time.Now(),
	}, nil
}

// IsActive reports whether the account accepts balance changes
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// CanWithdraw checks the locked balance against amount
func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}
