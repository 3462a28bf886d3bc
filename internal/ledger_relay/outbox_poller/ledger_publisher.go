package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/core-banking-ledger/internal/domain/outbox"
	"github.com/core-banking-ledger/internal/platform/messaging/producers"
)

// ErrUndecodablePayload marks an outbox row whose payload can never be published
var ErrUndecodablePayload = errors.New("undecodable outbox payload")

// LedgerPublisher publishes outbox messages to the ledger topic
type LedgerPublisher interface {
	PublishToLedger(ctx context.Context, message *outbox.Message) error
}

// LedgerPublisherImpl implements LedgerPublisher
type LedgerPublisherImpl struct {
	producer producers.EventPublisher
	logger   *slog.Logger
}

// NewLedgerPublisher creates a new publisher
func NewLedgerPublisher(producer producers.EventPublisher, logger *slog.Logger) LedgerPublisher {
	return &LedgerPublisherImpl{
		producer: producer,
		logger:   logger,
	}
}

// PublishToLedger sends the stored event payload as is, keyed by account number
func (p *LedgerPublisherImpl) PublishToLedger(ctx context.Context, message *outbox.Message) error {
	event, err := message.GetEvent()
	if err != nil {
		p.logger.Error("Failed to decode ledger event from outbox payload", "outbox_id", message.ID, "error", err)
		return fmt.Errorf("outbox %d: %w: %v", message.ID, ErrUndecodablePayload, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	headers := map[string]string{
		"event-id":       message.EventID.String(),
		"log-id":         strconv.FormatInt(event.LogID, 10),
		"correlation-id": event.CorrelationID,
	}
	key := strconv.FormatInt(message.AccountNo, 10)
	if err := p.producer.Publish(ctx, key, message.Payload, headers); err != nil {
		return fmt.Errorf("failed to publish outbox %d: %w", message.ID, err)
	}

	logger.Debug("Published ledger event", "outbox_id", message.ID, "log_id", event.LogID, "account_no", message.AccountNo)
	return nil
}
