package service

import (
	"context"
	"strings"

	"github.com/core-banking-ledger/internal/domain/audit"
	"github.com/core-banking-ledger/internal/domain/report"
	"github.com/core-banking-ledger/internal/domain/shared"
)

const defaultAuditLimit = 100

// ReportServiceImpl implements the ReportService interface
type ReportServiceImpl struct {
	auditRepo  audit.Repository
	reportRepo report.Repository
	maxLimit   int
}

// NewReportService creates a new report service. Audit reads are capped at maxLimit rows.
func NewReportService(auditRepo audit.Repository, reportRepo report.Repository, maxLimit int) ReportService {
	if maxLimit <= 0 {
		maxLimit = 500
	}
	return &ReportServiceImpl{
		auditRepo:  auditRepo,
		reportRepo: reportRepo,
		maxLimit:   maxLimit,
	}
}

// AuditLog lists audit entries, newest first, optionally matching search
func (s *ReportServiceImpl) AuditLog(ctx context.Context, limit int, search string) ([]*audit.Entry, error) {
	entries, err := s.auditRepo.List(ctx, audit.ListFilter{
		Limit:  clampLimit(limit, defaultAuditLimit, s.maxLimit),
		Search: strings.TrimSpace(search),
	})
	if err != nil {
		return nil, shared.StoreFailure("failed to read audit log", err)
	}
	return entries, nil
}

// Summary returns headline figures
func (s *ReportServiceImpl) Summary(ctx context.Context) (*report.Summary, error) {
	summary, err := s.reportRepo.Summary(ctx)
	if err != nil {
		return nil, shared.StoreFailure("failed to build summary", err)
	}
	return summary, nil
}
