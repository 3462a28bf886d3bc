package persistence

import (
	"context"
	"fmt"
	"regexp"
)

// SavepointPrefix is the closed set of savepoint name families
type SavepointPrefix string

const (
	SavepointStep   SavepointPrefix = "sp"
	SavepointNested SavepointPrefix = "nested"
	SavepointBatch  SavepointPrefix = "batch"
	SavepointProbe  SavepointPrefix = "probe"
)

// Savepoint identifiers cannot be bound as parameters, so every name is checked
// against this pattern before it is interpolated into SQL.
var savepointNamePattern = regexp.MustCompile(`^(sp|nested|batch|probe)_[0-9]+$`)

// SavepointName builds the identifier for step index within a family
func SavepointName(prefix SavepointPrefix, index int) string {
	return fmt.Sprintf("%s_%d", prefix, index)
}

// ValidSavepointName reports whether name belongs to the generated alphabet
func ValidSavepointName(name string) bool {
	return savepointNamePattern.MatchString(name)
}

// CreateSavepoint issues SAVEPOINT name
func CreateSavepoint(ctx context.Context, q Querier, name string) error {
	return execSavepoint(ctx, q, "SAVEPOINT "+name, name)
}

// RollbackToSavepoint undoes everything after the savepoint, keeping the enclosing transaction open
func RollbackToSavepoint(ctx context.Context, q Querier, name string) error {
	return execSavepoint(ctx, q, "ROLLBACK TO SAVEPOINT "+name, name)
}

// ReleaseSavepoint forgets the savepoint while keeping its effects
func ReleaseSavepoint(ctx context.Context, q Querier, name string) error {
	return execSavepoint(ctx, q, "RELEASE SAVEPOINT "+name, name)
}

func execSavepoint(ctx context.Context, q Querier, sql, name string) error {
	if !ValidSavepointName(name) {
		return fmt.Errorf("invalid savepoint name %q", name)
	}
	if _, err := q.Exec(ctx, sql); err != nil {
		return fmt.Errorf("%s failed: %w", sql, err)
	}
	return nil
}
