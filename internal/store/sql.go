package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// SQLStore cubre mysql y sqlite vía database/sql. Las listas
// (redirect_uris, allowed_scopes) se guardan separadas por espacio.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenSQL abre la base. Para mysql el DSN debe incluir parseTime=true.
func OpenSQL(ctx context.Context, cfg Config) (*SQLStore, error) {
	var driverName string
	switch cfg.Driver {
	case DriverMySQL:
		driverName = "mysql"
	case DriverSQLite:
		driverName = "sqlite"
	default:
		return nil, fmt.Errorf("store: sql: unsupported driver %q", cfg.Driver)
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("store: %s: open: %w", cfg.Driver, err)
	}
	if cfg.Driver == DriverSQLite {
		// sqlite serializa escrituras; una conexión evita SQLITE_BUSY en migraciones.
		db.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: %s: ping failed: %w", cfg.Driver, err)
	}
	return &SQLStore{db: db, driver: cfg.Driver}, nil
}

// DB expone la conexión (authctl migrate, tests).
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) GetClient(ctx context.Context, clientID string) (*Client, error) {
	const q = `SELECT client_id, redirect_uris, allowed_scopes FROM oauth_clients WHERE client_id = ?`

	var (
		c              Client
		redirs, scopes string
	)
	err := s.db.QueryRowContext(ctx, q, clientID).Scan(&c.ID, &redirs, &scopes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: %s: get client: %w", s.driver, err)
	}
	c.RedirectURIs = strings.Fields(redirs)
	c.AllowedScopes = strings.Fields(scopes)
	return &c, nil
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	const q = `SELECT id, username, password_hash FROM users WHERE username = ?`

	var u User
	err := s.db.QueryRowContext(ctx, q, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: %s: get user: %w", s.driver, err)
	}
	return &u, nil
}

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *SQLStore) Close() error                   { return s.db.Close() }

func (s *SQLStore) Migrate(ctx context.Context) ([]string, error) {
	return migrate(ctx, s.driver, s.db)
}
