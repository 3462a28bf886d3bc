package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// EventPublisher writes already-encoded ledger events to the ledger topic
type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte, headers map[string]string) error
	Close() error
}

// DeadLetterPublisher handles publishing messages to a Dead Letter Queue
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, original DeadLetter, reason string) error
	Close() error
}

// DeadLetter identifies the message that could not be handled
type DeadLetter struct {
	Key       string
	Value     []byte
	Topic     string
	Partition int
	Offset    int64
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
