package producers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/core-banking-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// LedgerEventProducer publishes transaction log events for the mirror and other downstream readers.
// Writes are synchronous so the outbox relay only marks a row processed once the broker has it.
type LedgerEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

func NewLedgerEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*LedgerEventProducer, error) {
	if cfg.LedgerTopic == "" {
		return nil, fmt.Errorf("kafka ledger topic is not configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for ledger event producer: %w", err)
	}
	defer conn.Close()

	if err := ensureTopic(conn, cfg.LedgerTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger topic %s exists: %w", cfg.LedgerTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.LedgerTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return newLedgerEventProducer(logger, writer, cfg.LedgerTopic), nil
}

func newLedgerEventProducer(logger *slog.Logger, writer KafkaWriter, topic string) *LedgerEventProducer {
	return &LedgerEventProducer{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

// Publish writes one event. Keying by account number keeps each account's events on one partition, in order.
func (p *LedgerEventProducer) Publish(ctx context.Context, key string, value []byte, headers map[string]string) error {
	msg := kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: toHeaders(headers),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish ledger event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish ledger event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published ledger event", "topic", p.topic, "key", key)
	return nil
}

func (p *LedgerEventProducer) Close() error {
	p.logger.Info("Closing ledger event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
