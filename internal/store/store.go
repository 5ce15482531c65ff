// Package store persists simulation records.
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"OptionPrisma/internal/model"
)

// Store owns the persisted form of simulation records. Implementations
// serialize their own access.
type Store interface {
	// Save returns model.ErrDuplicateID when the id is already taken.
	Save(ctx context.Context, rec *model.SimulationRecord) error
	// Get returns model.ErrNotFound when no record has the id.
	Get(ctx context.Context, id string) (*model.SimulationRecord, error)
	// List returns every record in creation order.
	List(ctx context.Context) ([]*model.SimulationRecord, error)
	// Delete reports whether a record was removed.
	Delete(ctx context.Context, id string) (bool, error)
	Close() error
}

// Drivers accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverJSON   = "json"
	DriverMemory = "memory"
)

// Open builds the store named by driver.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return NewSQLiteStore(path)
	case DriverJSON:
		return NewJSONFileStore(path)
	case DriverMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", driver)
}

// OpenRetrying opens driver and, when maxRetries > 0, wraps the store in a
// Retrying decorator.
func OpenRetrying(driver, path string, maxRetries int, logger *zap.Logger) (Store, error) {
	st, err := Open(driver, path)
	if err != nil {
		return nil, err
	}
	if maxRetries > 0 {
		return NewRetrying(st, maxRetries, 0, logger), nil
	}
	return st, nil
}

func duplicate(id string) error {
	return fmt.Errorf("save %s: %w", id, model.ErrDuplicateID)
}

func cloneRecord(rec *model.SimulationRecord) *model.SimulationRecord {
	c := *rec
	if rec.Seed != nil {
		s := *rec.Seed
		c.Seed = &s
	}
	return &c
}
