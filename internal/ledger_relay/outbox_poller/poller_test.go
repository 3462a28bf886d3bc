package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/core-banking-ledger/internal/config"
	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/outbox"
	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	m.Called(tx)
	return m
}

// MockLedgerPublisher for testing
type MockLedgerPublisher struct {
	mock.Mock
}

func (m *MockLedgerPublisher) PublishToLedger(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func newOutboxMessage(t *testing.T, id int64, attempts int) *outbox.Message {
	t.Helper()
	entry := ledger.NewEntry(10, shared.EntryTypeDeposit, decimal.NewFromInt(5), shared.SystemActor(1))
	entry.ID = id
	msg, err := outbox.NewMessage(ledger.NewEvent(entry, "corr"))
	require.NoError(t, err)
	msg.ID = id
	msg.Attempts = attempts
	return msg
}

func TestPoller_ProcessPendingMessages(t *testing.T) {
	logger := slog.Default()
	cfg := &config.OutboxConfig{
		PollingInterval:  time.Second,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}

	message1 := newOutboxMessage(t, 1, 0)
	message2 := newOutboxMessage(t, 2, 0)
	exhausted := newOutboxMessage(t, 3, 2)
	broken := &outbox.Message{ID: 4, Payload: []byte("{")}

	tests := []struct {
		name          string
		setupMocks    func(repo *MockOutboxRepo, publisher *MockLedgerPublisher, db pgxmock.PgxPoolIface)
		expectedError string
	}{
		{
			name: "publishes and marks processed",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockLedgerPublisher, db pgxmock.PgxPoolIface) {
				db.ExpectBegin()
				repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{message1, message2}, nil).Once()
				publisher.On("PublishToLedger", mock.Anything, message1).Return(nil).Once()
				publisher.On("PublishToLedger", mock.Anything, message2).Return(nil).Once()
				repo.On("UpdateStatus", mock.Anything, int64(1), shared.OutboxStatusProcessed).Return(nil).Once()
				repo.On("UpdateStatus", mock.Anything, int64(2), shared.OutboxStatusProcessed).Return(nil).Once()
				db.ExpectCommit()
			},
		},
		{
			name: "error getting pending messages",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockLedgerPublisher, db pgxmock.PgxPoolIface) {
				db.ExpectBegin()
				repo.On("GetPending", mock.Anything, 10).Return(nil, errors.New("db error")).Once()
				db.ExpectRollback()
			},
			expectedError: "failed to get pending outbox messages",
		},
		{
			name: "no pending messages",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockLedgerPublisher, db pgxmock.PgxPoolIface) {
				db.ExpectBegin()
				repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{}, nil).Once()
				db.ExpectCommit()
			},
		},
		{
			name: "publish failure counts an attempt and continues",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockLedgerPublisher, db pgxmock.PgxPoolIface) {
				db.ExpectBegin()
				repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{message1, message2}, nil).Once()
				publisher.On("PublishToLedger", mock.Anything, message1).Return(errors.New("broker down")).Once()
				repo.On("IncrementAttempts", mock.Anything, int64(1)).Return(nil).Once()
				publisher.On("PublishToLedger", mock.Anything, message2).Return(nil).Once()
				repo.On("UpdateStatus", mock.Anything, int64(2), shared.OutboxStatusProcessed).Return(nil).Once()
				db.ExpectCommit()
			},
		},
		{
			name: "max retry attempts reached",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockLedgerPublisher, db pgxmock.PgxPoolIface) {
				db.ExpectBegin()
				repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{exhausted}, nil).Once()
				publisher.On("PublishToLedger", mock.Anything, exhausted).Return(errors.New("broker down")).Once()
				repo.On("IncrementAttempts", mock.Anything, int64(3)).Return(nil).Once()
				repo.On("UpdateStatus", mock.Anything, int64(3), shared.OutboxStatusFailedToPublish).Return(nil).Once()
				db.ExpectCommit()
			},
		},
		{
			name: "undecodable payload fails immediately",
			setupMocks: func(repo *MockOutboxRepo, publisher *MockLedgerPublisher, db pgxmock.PgxPoolIface) {
				db.ExpectBegin()
				repo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{broken}, nil).Once()
				publisher.On("PublishToLedger", mock.Anything, broken).
					Return(fmt.Errorf("outbox 4: %w", ErrUndecodablePayload)).Once()
				repo.On("UpdateStatus", mock.Anything, int64(4), shared.OutboxStatusFailedToPublish).Return(nil).Once()
				db.ExpectCommit()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer db.Close()

			repo := &MockOutboxRepo{}
			repo.On("WithTx", mock.Anything)
			publisher := &MockLedgerPublisher{}
			tt.setupMocks(repo, publisher, db)

			poller := NewPoller(cfg, db, repo, publisher, logger)
			err = poller.processPendingMessages(context.Background())

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			publisher.AssertExpectations(t)
			assert.NoError(t, db.ExpectationsWereMet())
			repo.AssertNotCalled(t, "IncrementAttempts", mock.Anything, int64(4))
		})
	}
}

// unavailableDB fails every Begin so each tick logs and moves on
type unavailableDB struct{}

func (unavailableDB) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("connection refused")
}

func TestPoller_StartStopsOnCancel(t *testing.T) {
	cfg := &config.OutboxConfig{PollingInterval: 10 * time.Millisecond, BatchSize: 10, MaxRetryAttempts: 3}
	poller := NewPoller(cfg, unavailableDB{}, &MockOutboxRepo{}, &MockLedgerPublisher{}, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		poller.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
}
