// Package store resuelve clientes OAuth registrados y usuarios.
//
// Adapters disponibles: fs (registro YAML inmutable), postgres (pgx),
// mysql y sqlite (database/sql). Open elige uno según la config.
// Los datos son de solo lectura para el servidor: el alta de clientes y
// usuarios es operativa (YAML, migraciones, authctl).
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

var ErrNotFound = errors.New("store: not found")

// Client es un cliente OAuth registrado.
type Client struct {
	ID            string
	RedirectURIs  []string
	AllowedScopes []string
}

// HasRedirectURI compara exacto contra los redirect_uri registrados.
func (c *Client) HasRedirectURI(uri string) bool {
	return slices.Contains(c.RedirectURIs, uri)
}

func (c *Client) clone() *Client {
	return &Client{
		ID:            c.ID,
		RedirectURIs:  slices.Clone(c.RedirectURIs),
		AllowedScopes: slices.Clone(c.AllowedScopes),
	}
}

// User es un usuario final. PasswordHash es el argon2id determinístico del
// password (ver security/password).
type User struct {
	ID           int64
	Username     string
	PasswordHash []byte
}

type ClientRepository interface {
	// GetClient devuelve ErrNotFound si el client_id no está registrado.
	GetClient(ctx context.Context, clientID string) (*Client, error)
}

type UserRepository interface {
	// GetUserByUsername devuelve ErrNotFound si no existe.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

type Store interface {
	ClientRepository
	UserRepository
	Ping(ctx context.Context) error
	Close() error
}

// Config del adapter. Los valores vienen de config.Config.Storage.
type Config struct {
	Driver          string
	DSN             string
	FSPath          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrate         bool
	ClientCacheTTL  time.Duration
}

// Open abre el adapter configurado, aplica migraciones si se pidió y
// envuelve el store con el cache de clientes cuando ClientCacheTTL > 0.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case DriverFS:
		s, err = LoadFile(cfg.FSPath)
	case DriverPostgres:
		s, err = OpenPostgres(ctx, cfg)
	case DriverMySQL, DriverSQLite:
		s, err = OpenSQL(ctx, cfg)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Migrate {
		m, ok := s.(Migrator)
		if !ok {
			_ = s.Close()
			return nil, fmt.Errorf("store: driver %q does not support migrations", cfg.Driver)
		}
		if _, err := m.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
	}

	if cfg.ClientCacheTTL > 0 {
		s = WithClientCache(s, cfg.ClientCacheTTL)
	}
	return s, nil
}

const (
	DriverFS       = "fs"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)
