package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/core-banking-ledger/internal/config"
	"github.com/core-banking-ledger/internal/domain/outbox"
	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/core-banking-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// Poller relays pending outbox messages to Kafka.
// Each batch is claimed and updated inside one transaction, so concurrent relays skip each other's rows.
type Poller struct {
	db               persistence.TxBeginner
	outboxRepo       outbox.Repository
	ledgerPublisher  LedgerPublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	db persistence.TxBeginner,
	outboxRepo outbox.Repository,
	ledgerPublisher LedgerPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		db:               db,
		outboxRepo:       outboxRepo,
		ledgerPublisher:  ledgerPublisher,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start begins polling until context is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting Outbox Poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox Poller stopping due to context cancellation.")
			return
		case <-ticker.C:
			if err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Error during batch processing of pending outbox messages", "error", err)
			}
		}
	}
}

func (p *Poller) processPendingMessages(ctx context.Context) error {
	return persistence.ExecuteTx(ctx, p.db, func(tx pgx.Tx) error {
		repo := p.outboxRepo.WithTx(tx)

		messages, err := repo.GetPending(ctx, p.batchSize)
		if err != nil {
			return fmt.Errorf("failed to get pending outbox messages: %w", err)
		}
		if len(messages) == 0 {
			p.logger.Debug("No pending outbox messages found.")
			return nil
		}

		p.logger.Info("Fetched pending outbox messages", "count", len(messages))
		for _, msg := range messages {
			p.relay(ctx, repo, msg)
		}
		return nil
	})
}

// relay publishes one message and records the outcome; failures never stop the batch
func (p *Poller) relay(ctx context.Context, repo outbox.Repository, msg *outbox.Message) {
	logger := p.logger.With("outbox_id", msg.ID, "event_id", msg.EventID.String())

	err := p.ledgerPublisher.PublishToLedger(ctx, msg)
	if err == nil {
		if errUpdate := repo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusProcessed); errUpdate != nil {
			logger.Error("Failed to mark outbox message as PROCESSED", "error", errUpdate)
			return
		}
		logger.Debug("Outbox message published and marked as PROCESSED")
		return
	}

	if errors.Is(err, ErrUndecodablePayload) {
		logger.Error("Outbox message can never be published, marking as FAILED_TO_PUBLISH", "error", err)
		if errUpdate := repo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); errUpdate != nil {
			logger.Error("Failed to update outbox status to FAILED_TO_PUBLISH", "error", errUpdate)
		}
		return
	}

	logger.Error("Failed to publish outbox message", "current_attempts", msg.Attempts, "error", err)
	if errInc := repo.IncrementAttempts(ctx, msg.ID); errInc != nil {
		logger.Error("Failed to increment attempts for outbox message", "error", errInc)
		return
	}

	if msg.Attempts+1 >= p.maxRetryAttempts {
		logger.Warn("Max retry attempts reached for outbox message, marking as FAILED_TO_PUBLISH", "attempts_made", msg.Attempts+1)
		if errUpdate := repo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); errUpdate != nil {
			logger.Error("Failed to update outbox status to FAILED_TO_PUBLISH after max retries", "error", errUpdate)
		}
	}
}
