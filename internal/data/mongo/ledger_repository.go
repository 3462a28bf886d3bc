package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/shared"
)

const (
	// LedgerCollectionName is the default name of the mirror collection in MongoDB
	LedgerCollectionName = "ledger_entries"
)

// ledgerEventDocument is the stored shape of a mirrored event.
// Amounts are kept as Decimal128 so statements never pass through float64.
type ledgerEventDocument struct {
	LogID            int64                `bson:"log_id"`
	EventID          string               `bson:"event_id"`
	AccountNo        int64                `bson:"account_no"`
	Type             string               `bson:"type"`
	Direction        string               `bson:"direction"`
	Amount           primitive.Decimal128 `bson:"amount"`
	ReferenceAccount *int64               `bson:"reference_account,omitempty"`
	PerformedBy      int64                `bson:"performed_by"`
	CorrelationID    string               `bson:"correlation_id,omitempty"`
	OccurredAt       time.Time            `bson:"occurred_at"`
	MirroredAt       time.Time            `bson:"mirrored_at"`
}

func toDocument(event *ledger.Event) (*ledgerEventDocument, error) {
	amount, err := primitive.ParseDecimal128(event.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("invalid amount %s: %w", event.Amount.String(), err)
	}
	return &ledgerEventDocument{
		LogID:            event.LogID,
		EventID:          event.EventID.String(),
		AccountNo:        event.AccountNo,
		Type:             string(event.Type),
		Direction:        string(event.Direction),
		Amount:           amount,
		ReferenceAccount: event.ReferenceAccount,
		PerformedBy:      event.PerformedBy,
		CorrelationID:    event.CorrelationID,
		OccurredAt:       event.OccurredAt,
		MirroredAt:       time.Now().UTC(),
	}, nil
}

func (d *ledgerEventDocument) toEvent() (*ledger.Event, error) {
	amount, err := decimal.NewFromString(d.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount for log %d: %w", d.LogID, err)
	}
	eventID, err := uuid.Parse(d.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid stored event id for log %d: %w", d.LogID, err)
	}
	return &ledger.Event{
		EventID:          eventID,
		LogID:            d.LogID,
		AccountNo:        d.AccountNo,
		Type:             shared.EntryType(d.Type),
		Direction:        ledger.Direction(d.Direction),
		Amount:           amount,
		ReferenceAccount: d.ReferenceAccount,
		PerformedBy:      d.PerformedBy,
		CorrelationID:    d.CorrelationID,
		OccurredAt:       d.OccurredAt,
	}, nil
}

var _ ledger.MirrorRepository = (*LedgerRepository)(nil)

// LedgerRepository implements ledger.MirrorRepository for MongoDB
type LedgerRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewLedgerRepository creates a new MongoDB mirror repository over the named collection
func NewLedgerRepository(logger *slog.Logger, db *mongo.Database, collection string) *LedgerRepository {
	if collection == "" {
		collection = LedgerCollectionName
	}
	return &LedgerRepository{
		collection: db.Collection(collection),
		logger:     logger,
	}
}

// EnsureIndexes creates the unique log id index the upsert relies on and the statement index
func (r *LedgerRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "log_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "account_no", Value: 1}, {Key: "log_id", Value: -1}},
		},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, models); err != nil {
		r.logger.Error("Failed to create ledger mirror indexes", "error", err)
		return fmt.Errorf("failed to create ledger mirror indexes: %w", err)
	}
	return nil
}

// Upsert replaces the document for the event's log id, inserting it on first delivery
func (r *LedgerRepository) Upsert(ctx context.Context, event *ledger.Event) error {
	doc, err := toDocument(event)
	if err != nil {
		return err
	}

	filter := bson.M{"log_id": event.LogID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		r.logger.Error("Failed to mirror ledger event",
			"log_id", event.LogID,
			"event_id", event.EventID.String(),
			"error", err)
		return fmt.Errorf("failed to mirror ledger event: %w", err)
	}

	return nil
}

// GetByLogID retrieves a mirrored event; ErrEventNotFound when it was never mirrored
func (r *LedgerRepository) GetByLogID(ctx context.Context, logID int64) (*ledger.Event, error) {
	var doc ledgerEventDocument
	err := r.collection.FindOne(ctx, bson.M{"log_id": logID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.ErrEventNotFound{LogID: logID}
		}
		r.logger.Error("Failed to get mirrored ledger event", "log_id", logID, "error", err)
		return nil, fmt.Errorf("failed to get mirrored ledger event: %w", err)
	}

	return doc.toEvent()
}

// GetByAccount returns a page of an account's statement, newest first
func (r *LedgerRepository) GetByAccount(ctx context.Context, accountNo int64, limit, offset int) ([]*ledger.Event, error) {
	filter := bson.M{"account_no": accountNo}
	opts := options.Find().
		SetSort(bson.D{{Key: "log_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get mirrored ledger events",
			"account_no", accountNo,
			"error", err)
		return nil, fmt.Errorf("failed to get mirrored ledger events: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []ledgerEventDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode mirrored ledger events",
			"account_no", accountNo,
			"error", err)
		return nil, fmt.Errorf("failed to decode mirrored ledger events: %w", err)
	}

	events := make([]*ledger.Event, 0, len(docs))
	for i := range docs {
		event, err := docs[i].toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, nil
}

// CountByAccount counts the mirrored events of an account
func (r *LedgerRepository) CountByAccount(ctx context.Context, accountNo int64) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"account_no": accountNo})
	if err != nil {
		r.logger.Error("Failed to count mirrored ledger events",
			"account_no", accountNo,
			"error", err)
		return 0, fmt.Errorf("failed to count mirrored ledger events: %w", err)
	}

	return count, nil
}
