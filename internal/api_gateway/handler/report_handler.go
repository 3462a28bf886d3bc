package handler

import (
	"log/slog"

	"github.com/core-banking-ledger/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the audit log and summary figures
type ReportHandler struct {
	reportService service.ReportService
	logger        *slog.Logger
}

func NewReportHandler(logger *slog.Logger, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

func (h *ReportHandler) AuditLog(c *gin.Context) {
	var query AuditLogQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	entries, err := h.reportService.AuditLog(c.Request.Context(), query.Limit, query.Search)
	if err != nil {
		h.logger.Error("Failed to read audit log", "error", err)
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, entries)
}

func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reportService.Summary(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build summary", "error", err)
		RespondLedgerError(c, err)
		return
	}

	RespondOK(c, summary)
}
