package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

//go:embed migrations/postgres/*.sql migrations/mysql/*.sql migrations/sqlite/*.sql
var embedMigrations embed.FS

// Migrator lo implementan los adapters SQL. Migrate devuelve las fuentes
// aplicadas en esta corrida (vacío si ya estaba al día).
type Migrator interface {
	Migrate(ctx context.Context) ([]string, error)
}

func migrate(ctx context.Context, driver string, db *sql.DB) ([]string, error) {
	var dialect database.Dialect
	switch driver {
	case DriverPostgres:
		dialect = database.DialectPostgres
	case DriverMySQL:
		dialect = database.DialectMySQL
	case DriverSQLite:
		dialect = database.DialectSQLite3
	default:
		return nil, fmt.Errorf("store: migrate: unsupported driver %q", driver)
	}

	migrationFS, err := fs.Sub(embedMigrations, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("store: migrate: sub filesystem: %w", err)
	}
	provider, err := goose.NewProvider(dialect, db, migrationFS)
	if err != nil {
		return nil, fmt.Errorf("store: migrate: goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: migrate: apply: %w", err)
	}
	applied := make([]string, 0, len(results))
	for _, r := range results {
		applied = append(applied, r.Source.Path)
	}
	return applied, nil
}
