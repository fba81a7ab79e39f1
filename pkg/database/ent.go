package database

import (
	"context"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/mediconnect/mediconnect_backend/config"
	"github.com/mediconnect/mediconnect_backend/internal/repo"
	"github.com/mediconnect/mediconnect_backend/internal/repo/migrate"
)

// NewDriver opens the main database behind an ent SQL driver.
func NewDriver(cfg config.DatabaseConfig) (*entsql.Driver, error) {
	return NewDriverFromConfig(FromCentralConfig(cfg))
}

func NewDriverFromConfig(cfg Config) (*entsql.Driver, error) {
	db, err := openSQLDB(cfg)
	if err != nil {
		return nil, err
	}
	return entsql.OpenDB(dialect.Postgres, db), nil
}

// NewStore opens the main database and wraps it in a repo.Client.
func NewStore(cfg config.DatabaseConfig) (*repo.Client, error) {
	pc := FromCentralConfig(cfg)
	drv, err := NewDriverFromConfig(pc)
	if err != nil {
		return nil, err
	}
	var d dialect.Driver = drv
	if pc.EnableLogging {
		d = dialect.DebugWithContext(drv, func(ctx context.Context, args ...any) {
			slog.DebugContext(ctx, "sql", "query", args)
		})
	}
	return repo.NewClient(d), nil
}

// Migrate creates or updates the application tables.
func Migrate(ctx context.Context, drv dialect.Driver) error {
	return migrate.Create(ctx, drv)
}
