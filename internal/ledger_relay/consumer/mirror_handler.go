package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/platform/messaging/consumers"
	"github.com/core-banking-ledger/internal/platform/messaging/producers"
)

// MirrorHandler copies ledger events from Kafka into the MongoDB mirror
type MirrorHandler struct {
	mirror       ledger.MirrorRepository
	dlq          producers.DeadLetterPublisher
	logger       *slog.Logger
	upsertTries  int
	retryBackoff time.Duration
}

// NewMirrorHandler creates a new handler. dlq may be nil when no DLQ topic is configured.
func NewMirrorHandler(logger *slog.Logger, mirror ledger.MirrorRepository, dlq producers.DeadLetterPublisher) *MirrorHandler {
	return &MirrorHandler{
		mirror:       mirror,
		dlq:          dlq,
		logger:       logger,
		upsertTries:  3,
		retryBackoff: 500 * time.Millisecond,
	}
}

// HandleMessage stores one event. Returning nil commits the offset.
func (h *MirrorHandler) HandleMessage(ctx context.Context, msg consumers.Message) error {
	var event ledger.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return h.deadLetter(ctx, msg, fmt.Sprintf("Failed to unmarshal ledger event: %s", err.Error()))
	}
	if event.LogID <= 0 || event.AccountNo <= 0 {
		return h.deadLetter(ctx, msg, fmt.Sprintf("Ledger event is missing log id or account number (log_id=%d, accountno=%d)",
			event.LogID, event.AccountNo))
	}

	logger := h.logger.With("log_id", event.LogID, "account_no", event.AccountNo)
	if event.CorrelationID != "" {
		logger = logger.With("correlation_id", event.CorrelationID)
	}

	var err error
	for attempt := 1; attempt <= h.upsertTries; attempt++ {
		if err = h.mirror.Upsert(ctx, &event); err == nil {
			logger.Debug("Mirrored ledger event", "attempt", attempt)
			return nil
		}
		logger.Warn("Failed to mirror ledger event", "attempt", attempt, "error", err)
		if attempt < h.upsertTries {
			select {
			case <-ctx.Done():
				return fmt.Errorf("mirroring log %d interrupted: %w", event.LogID, ctx.Err())
			case <-time.After(h.retryBackoff):
			}
		}
	}

	return h.deadLetter(ctx, msg, fmt.Sprintf("Failed to store ledger event %d: %s", event.LogID, err.Error()))
}

// deadLetter parks msg on the DLQ. The offset is only committed when that succeeds.
func (h *MirrorHandler) deadLetter(ctx context.Context, msg consumers.Message, reason string) error {
	h.logger.Error("Ledger event cannot be mirrored", "offset", msg.Offset, "key", string(msg.Key), "reason", reason)

	if h.dlq == nil {
		return fmt.Errorf("no DLQ configured: %s", reason)
	}

	original := producers.DeadLetter{
		Key:       string(msg.Key),
		Value:     msg.Value,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	}
	if err := h.dlq.PublishToDLQ(ctx, original, reason); err != nil {
		h.logger.Error("Failed to publish message to DLQ", "dlq_error", err, "key", string(msg.Key))
		return fmt.Errorf("dead-lettering offset %d failed: %w", msg.Offset, err)
	}

	h.logger.Info("Published unprocessable message to DLQ", "key", string(msg.Key), "reason", reason)
	return nil
}
