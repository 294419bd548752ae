// Package store selects and opens the configured persistence backend.
package store

import (
	"context"
	"fmt"

	"hrms.org/internal/auth"
	"hrms.org/internal/config"
	"hrms.org/internal/records"
	"hrms.org/internal/store/memory"
	"hrms.org/internal/store/mongo"
	"hrms.org/internal/store/pg"
)

// Backend persists identities and records.
type Backend interface {
	auth.IdentityStore
	records.Store
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var (
	_ Backend = (*memory.Store)(nil)
	_ Backend = (*pg.Store)(nil)
	_ Backend = (*mongo.Store)(nil)
)

// Open returns the backend named by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return pg.Open(ctx, cfg.DatabaseURL)
	case config.DriverMongo:
		return mongo.Open(ctx, cfg.MongoURL, cfg.DBName)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.StoreDriver)
	}
}
