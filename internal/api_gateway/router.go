package api_gateway

import (
	"log/slog"

	"github.com/core-banking-ledger/internal/api_gateway/handler"
	"github.com/core-banking-ledger/internal/api_gateway/middleware"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// handlers groups everything the router mounts
type handlers struct {
	accounts     *handler.AccountHandler
	transactions *handler.TransactionHandler
	tcl          *handler.TCLHandler
	customer     *handler.CustomerHandler
	reports      *handler.ReportHandler
	health       *handler.HealthHandler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	h handlers,
	allowedOrigins []string,
	rateLimiter *limiter.Limiter,
	systemActorID int64,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(allowedOrigins))

	// Health check endpoint for monitoring, outside the rate limit
	r.GET("/health", h.health.Health)

	v1 := r.Group("/api/v1")
	if rateLimiter != nil {
		v1.Use(middleware.RateLimit(logger, rateLimiter))
	}
	v1.Use(middleware.Actor(systemActorID))
	{
		accounts := v1.Group("/accounts")
		{
			accounts.POST("/open", h.accounts.Open)
			accounts.GET("", h.accounts.List)
			accounts.GET("/:id", h.accounts.Get)
			accounts.PATCH("/:id/status", h.accounts.UpdateStatus)
			accounts.GET("/:id/transactions", h.accounts.Transactions)
			accounts.GET("/:id/statement", h.accounts.Statement)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.POST("/deposit", h.transactions.Deposit)
			transactions.POST("/withdraw", h.transactions.Withdraw)
			transactions.POST("/transfer", h.transactions.Transfer)
			transactions.GET("", h.transactions.List)
		}

		tcl := v1.Group("/tcl")
		{
			tcl.POST("/basic-transaction", h.tcl.BasicTransaction)
			tcl.POST("/atomic-transfer", h.tcl.AtomicTransfer)
			tcl.POST("/savepoint-demo", h.tcl.SavepointDemo)
			tcl.POST("/nested-transactions", h.tcl.NestedTransactions)
			tcl.POST("/batch-processing", h.tcl.BatchProcessing)
			tcl.GET("/test-suite", h.tcl.TestSuite)
		}

		customer := v1.Group("/customer", middleware.RequireCustomer())
		{
			customer.POST("/transfer", h.customer.Transfer)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/audit-log", h.reports.AuditLog)
			reports.GET("/summary", h.reports.Summary)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		handler.RespondNotFound(c, "Route not found")
	})
}
