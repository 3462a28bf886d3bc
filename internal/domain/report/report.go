package report

import (
	"context"

	"github.com/shopspring/decimal"
)

// Summary aggregates headline figures across the ledger
type Summary struct {
	Customers      int64           `json:"customers"`
	Accounts       int64           `json:"accounts"`
	ActiveAccounts int64           `json:"activeAccounts"`
	Transactions   int64           `json:"transactions"`
	TotalBalance   decimal.Decimal `json:"totalBalance"`
}

// Repository reads report figures
type Repository interface {
	Summary(ctx context.Context) (*Summary, error)
}
