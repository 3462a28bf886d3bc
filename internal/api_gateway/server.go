package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/core-banking-ledger/internal/api_gateway/handler"
	"github.com/core-banking-ledger/internal/api_gateway/middleware"
	"github.com/core-banking-ledger/internal/api_gateway/service"
	"github.com/core-banking-ledger/internal/config"
	ledgersvc "github.com/core-banking-ledger/internal/ledger_engine/service"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// Dependencies are the services the HTTP surface is built on
type Dependencies struct {
	Ledger             ledgersvc.Ledger
	AccountService     service.AccountService
	TransactionService service.TransactionService
	ReportService      service.ReportService
	HealthChecks       map[string]handler.Pinger
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger          *slog.Logger
	httpServer      *http.Server
	httpRouter      *gin.Engine
	shutdownTimeout time.Duration
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, deps Dependencies) (*Server, error) {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	var rateLimiter *limiter.Limiter
	if cfg.Server.RateLimit != "" {
		var err error
		if rateLimiter, err = middleware.NewIPLimiter(cfg.Server.RateLimit); err != nil {
			return nil, err
		}
	}

	h := handlers{
		accounts:     handler.NewAccountHandler(log, deps.Ledger, deps.AccountService, deps.TransactionService),
		transactions: handler.NewTransactionHandler(log, deps.Ledger, deps.Ledger, deps.TransactionService),
		tcl:          handler.NewTCLHandler(log, deps.Ledger),
		customer:     handler.NewCustomerHandler(log, deps.Ledger),
		reports:      handler.NewReportHandler(log, deps.ReportService),
		health:       handler.NewHealthHandler(log, cfg.Server.ReadTimeout, deps.HealthChecks),
	}
	setupRouter(log, httpRouter, h, cfg.Server.CORSAllowedOrigins, rateLimiter, cfg.Ledger.SystemActorID)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:          log,
		httpServer:      httpServer,
		httpRouter:      httpRouter,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server, waiting at most the shutdown timeout for in-flight requests
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
