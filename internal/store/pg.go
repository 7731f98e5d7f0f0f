package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// PGStore lee clientes y usuarios de Postgres. redirect_uris y
// allowed_scopes son columnas text[].
type PGStore struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, cfg Config) (*PGStore, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("store: postgres: parse dsn: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pcfg.MinConns = int32(min(cfg.MaxIdleConns, cfg.MaxOpenConns))
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("store: postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: postgres: ping failed: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) GetClient(ctx context.Context, clientID string) (*Client, error) {
	const q = `
		SELECT client_id, redirect_uris, allowed_scopes
		FROM oauth_clients
		WHERE client_id = $1`

	var c Client
	err := s.pool.QueryRow(ctx, q, clientID).Scan(&c.ID, &c.RedirectURIs, &c.AllowedScopes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: postgres: get client: %w", err)
	}
	return &c, nil
}

func (s *PGStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	const q = `
		SELECT id, username, password_hash
		FROM users
		WHERE username = $1`

	var u User
	err := s.pool.QueryRow(ctx, q, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: postgres: get user: %w", err)
	}
	return &u, nil
}

func (s *PGStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

// Migrate corre goose sobre un *sql.DB respaldado por el mismo pool.
func (s *PGStore) Migrate(ctx context.Context) ([]string, error) {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()
	return migrate(ctx, DriverPostgres, db)
}

