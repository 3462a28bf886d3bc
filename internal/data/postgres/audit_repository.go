package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/core-banking-ledger/internal/domain/audit"
	"github.com/core-banking-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const defaultAuditListLimit = 100

// AuditRepository implements audit.Repository for PostgreSQL
type AuditRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewAuditRepository creates a new PostgreSQL audit repository
func NewAuditRepository(logger *slog.Logger, db persistence.Querier) audit.Repository {
	return &AuditRepository{
		querier: db,
		logger:  logger,
	}
}

func (r *AuditRepository) WithTx(tx pgx.Tx) audit.Repository {
	return &AuditRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func (r *AuditRepository) Create(ctx context.Context, entry *audit.Entry) error {
	query := `
		INSERT INTO audit_log (user_id, action, description, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING log_id
	`

	err := r.querier.QueryRow(ctx, query,
		entry.ActorID,
		entry.Action,
		entry.Description,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		r.logger.Error("Failed to write audit entry", "action", entry.Action, "user_id", entry.ActorID, "error", err)
		return fmt.Errorf("failed to write audit entry: %w", err)
	}

	return nil
}

// List returns audit entries newest first, optionally matching a search term
func (r *AuditRepository) List(ctx context.Context, filter audit.ListFilter) ([]*audit.Entry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditListLimit
	}

	var (
		query string
		args  []interface{}
	)
	if filter.Search != "" {
		query = `
			SELECT log_id, user_id, action, description, created_at
			FROM audit_log
			WHERE action ILIKE $1 OR description ILIKE $1
			ORDER BY created_at DESC, log_id DESC
			LIMIT $2
		`
		args = []interface{}{"%" + filter.Search + "%", limit}
	} else {
		query = `
			SELECT log_id, user_id, action, description, created_at
			FROM audit_log
			ORDER BY created_at DESC, log_id DESC
			LIMIT $1
		`
		args = []interface{}{limit}
	}

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list audit entries", "error", err)
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Description, &e.CreatedAt); err != nil {
			r.logger.Error("Failed to scan audit entry", "error", err)
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over audit entries: %w", err)
	}

	return entries, nil
}
