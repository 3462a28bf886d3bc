package service

import (
	"context"
	"errors"
	"testing"

	"github.com/core-banking-ledger/internal/domain/audit"
	"github.com/core-banking-ledger/internal/domain/report"
	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportServiceImpl_AuditLog(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		limit          int
		search         string
		expectedFilter audit.ListFilter
	}{
		{"defaults", 0, "", audit.ListFilter{Limit: 100}},
		{"search is trimmed", 10, "  transfer ", audit.ListFilter{Limit: 10, Search: "transfer"}},
		{"limit is capped", 5000, "", audit.ListFilter{Limit: 250}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auditRepo := new(MockAuditRepository)
			service := NewReportService(auditRepo, new(MockReportRepository), 250)

			auditRepo.On("List", ctx, tt.expectedFilter).Return([]*audit.Entry{}, nil).Once()

			_, err := service.AuditLog(ctx, tt.limit, tt.search)

			require.NoError(t, err)
			auditRepo.AssertExpectations(t)
		})
	}
}

func TestReportServiceImpl_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		reportRepo := new(MockReportRepository)
		service := NewReportService(new(MockAuditRepository), reportRepo, 0)
		summary := &report.Summary{Customers: 3, ActiveAccounts: 4, Transactions: 12, TotalBalance: decimal.RequireFromString("1500.00")}

		reportRepo.On("Summary", ctx).Return(summary, nil).Once()

		got, err := service.Summary(ctx)

		require.NoError(t, err)
		assert.Equal(t, summary, got)
	})

	t.Run("StoreError", func(t *testing.T) {
		reportRepo := new(MockReportRepository)
		service := NewReportService(new(MockAuditRepository), reportRepo, 0)

		reportRepo.On("Summary", ctx).Return(nil, errors.New("relation does not exist")).Once()

		_, err := service.Summary(ctx)

		assert.ErrorIs(t, err, shared.ErrStoreFailure)
	})
}
