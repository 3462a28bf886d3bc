// Package config provides configuration structures and validation for the ledger services.
// Values come from an optional .env file layered under environment variables, and the
// resulting structure is validated once at startup.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete configuration shared by the ledger API and the ledger relay.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	Ledger      LedgerConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int           // Port to listen on
	ShutdownTimeout    time.Duration // Grace period for server shutdown
	ReadTimeout        time.Duration // Maximum duration for reading entire request
	WriteTimeout       time.Duration // Maximum duration for writing response
	IdleTimeout        time.Duration // Maximum duration to wait for next request
	CORSAllowedOrigins []string      // Origins allowed by the CORS middleware, "*" allows all
	RateLimit          string        // Per-client rate in limiter format, e.g. "100-M"; empty disables
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	LedgerTopic       string // Topic carrying committed transaction log events
	NumPartitions     int    // Number of partitions for topics
	ReplicationFactor int    // Replication factor for topics
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string // Topic for Dead Letter Queue
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL              string        // Database connection string
	MaxConns         int32         // Maximum number of open connections
	MinConns         int32         // Maximum number of idle connections
	ConnMaxLifetime  time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime  time.Duration // Maximum idle time of a connection
	MigrationsPath   string        // Path to migration files
	StatementTimeout time.Duration // statement_timeout applied to every ledger transaction, 0 keeps the server default
	LockTimeout      time.Duration // lock_timeout applied to every ledger transaction, 0 keeps the server default
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI              string
	Database         string
	Timeout          time.Duration
	MaxPoolSize      uint64
	MinPoolSize      uint64
	MaxConnIdleTime  time.Duration
	MirrorCollection string // Collection holding the mirrored transaction log
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int // Maximum number of retry attempts for outbox messages
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// LedgerConfig contains ledger engine policy
type LedgerConfig struct {
	SystemActorID      int64 // Actor attributed to operations without a resolved caller
	MaxBatchOperations int   // Upper bound on items accepted by batch and multi-step runs
	AuditLogMaxLimit   int   // Upper bound on audit log page size
}

// validate performs validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.LedgerTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_LEDGER_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}
	if c.Kafka.DLQTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC is required")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}
	if c.Postgres.StatementTimeout < 0 {
		validationErrors = append(validationErrors, "POSTGRES_STATEMENT_TIMEOUT must not be negative")
	}
	if c.Postgres.LockTimeout < 0 {
		validationErrors = append(validationErrors, "POSTGRES_LOCK_TIMEOUT must not be negative")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}
	if c.MongoDB.MirrorCollection == "" {
		validationErrors = append(validationErrors, "MONGO_MIRROR_COLLECTION is required")
	}

	// Validate Outbox config
	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	// Validate Ledger config
	if c.Ledger.SystemActorID <= 0 {
		validationErrors = append(validationErrors, "LEDGER_SYSTEM_ACTOR_ID must be greater than 0")
	}
	if c.Ledger.MaxBatchOperations <= 0 {
		validationErrors = append(validationErrors, "LEDGER_MAX_BATCH_OPERATIONS must be greater than 0")
	}
	if c.Ledger.AuditLogMaxLimit <= 0 {
		validationErrors = append(validationErrors, "LEDGER_AUDIT_LOG_MAX_LIMIT must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
