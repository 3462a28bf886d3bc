package consumers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/core-banking-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// Message is a fetched Kafka record as seen by handlers
type Message struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
}

// MessageHandler returns nil once the message is fully handled, which commits its offset
type MessageHandler func(ctx context.Context, msg Message) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, handler MessageHandler) error
	Close() error
}

// KafkaReader wraps kafka.Reader methods for testing
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer implements Consumer using a consumer-group reader on the ledger topic
type KafkaConsumer struct {
	reader     KafkaReader
	logger     *slog.Logger
	topic      string
	groupID    string
	retryDelay time.Duration
	done       chan struct{}
}

func NewKafkaConsumer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	startOffset := kafka.FirstOffset
	if cfg.StartOffset == kafka.LastOffset {
		startOffset = kafka.LastOffset
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{cfg.Brokers},
		Topic:       cfg.LedgerTopic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: startOffset,
	})
	return newKafkaConsumer(reader, logger, cfg.LedgerTopic, cfg.ConsumerGroup)
}

func newKafkaConsumer(reader KafkaReader, logger *slog.Logger, topic, groupID string) *KafkaConsumer {
	return &KafkaConsumer{
		reader:     reader,
		logger:     logger,
		topic:      topic,
		groupID:    groupID,
		retryDelay: time.Second,
		done:       make(chan struct{}),
	}
}

// Subscribe starts the fetch loop in the background and returns immediately.
// The loop stops when ctx is cancelled; Done is closed once it has.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	if handler == nil {
		return errors.New("message handler is required")
	}
	c.logger.Info("Subscribed to Kafka topic", "topic", c.topic, "group_id", c.groupID)

	go func() {
		defer close(c.done)
		for {
			if ctx.Err() != nil {
				c.logger.Info("Context canceled, stopping consumer", "topic", c.topic, "group_id", c.groupID)
				return
			}

			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				c.logger.Error("Failed to fetch message from Kafka", "topic", c.topic, "group_id", c.groupID, "error", err)
				select {
				case <-ctx.Done():
				case <-time.After(c.retryDelay):
				}
				continue
			}

			c.handle(ctx, msg, handler)
		}
	}()

	return nil
}

func (c *KafkaConsumer) handle(ctx context.Context, msg kafka.Message, handler MessageHandler) {
	logger := c.logger.With(
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"key", string(msg.Key),
	)
	logger.Debug("Received message from Kafka")

	if err := handler(ctx, toMessage(msg)); err != nil {
		// Left uncommitted; the group redelivers it after a rebalance or restart
		logger.Error("Failed to process message, will not commit offset", "error", err)
		return
	}

	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		logger.Error("Failed to commit message after successful processing", "error", err)
		return
	}
	logger.Debug("Message committed successfully")
}

func toMessage(msg kafka.Message) Message {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return Message{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	}
}

// Done is closed when the fetch loop has exited
func (c *KafkaConsumer) Done() <-chan struct{} {
	return c.done
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
