package producers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// topicAdmin is the part of *kafka.Conn used to inspect and create topics
type topicAdmin interface {
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	CreateTopics(topics ...kafka.TopicConfig) error
}

var (
	topicReadAttempts = 5
	topicReadBackoff  = 2 * time.Second
)

// ensureTopic creates topic when its partitions cannot be read after a few attempts
func ensureTopic(admin topicAdmin, topic string, numPartitions, replicationFactor int, log *slog.Logger) error {
	var (
		partitions []kafka.Partition
		err        error
	)

	log.Info("Checking if Kafka topic exists", "topic", topic)
	for i := 0; i < topicReadAttempts; i++ {
		partitions, err = admin.ReadPartitions(topic)
		if err == nil && len(partitions) > 0 {
			log.Info("Kafka topic already exists", "topic", topic, "partitions", len(partitions))
			return nil
		}
		log.Warn("Failed to read partitions, retrying...", "topic", topic, "attempt", i+1, "error", err)
		if i < topicReadAttempts-1 {
			time.Sleep(topicReadBackoff)
		}
	}

	topicConfig := kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	}
	if topicConfig.NumPartitions <= 0 {
		topicConfig.NumPartitions = 1
	}
	if topicConfig.ReplicationFactor <= 0 {
		topicConfig.ReplicationFactor = 1
	}

	log.Info("Creating Kafka topic", "topic", topic,
		"partitions", topicConfig.NumPartitions,
		"replication_factor", topicConfig.ReplicationFactor)
	if err := admin.CreateTopics(topicConfig); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topic, err)
	}
	return nil
}

// toHeaders converts a header map into kafka headers, skipping empty values
func toHeaders(values map[string]string) []kafka.Header {
	headers := make([]kafka.Header, 0, len(values))
	for k, v := range values {
		if v == "" {
			continue
		}
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return headers
}
