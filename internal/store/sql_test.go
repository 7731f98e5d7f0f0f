package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "authcore.db")
	s, err := OpenSQL(context.Background(), Config{Driver: DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLStore_SQLiteMigrateAndLookup(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	applied, err := s.Migrate(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 1)

	// segunda corrida: nada pendiente
	applied, err = s.Migrate(ctx)
	require.NoError(t, err)
	require.Empty(t, applied)

	_, err = s.DB().ExecContext(ctx,
		`INSERT INTO oauth_clients (client_id, redirect_uris, allowed_scopes) VALUES (?, ?, ?)`,
		"web", "https://app.example.com/cb https://app.example.com/alt", "read update")
	require.NoError(t, err)
	_, err = s.DB().ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash) VALUES (?, ?, ?)`,
		5, "alice", []byte{9, 9, 9})
	require.NoError(t, err)

	c, err := s.GetClient(ctx, "web")
	require.NoError(t, err)
	require.Equal(t, []string{"https://app.example.com/cb", "https://app.example.com/alt"}, c.RedirectURIs)
	require.Equal(t, []string{"read", "update"}, c.AllowedScopes)

	u, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(5), u.ID)
	require.Equal(t, []byte{9, 9, 9}, u.PasswordHash)

	_, err = s.GetClient(ctx, "other")
	require.True(t, errors.Is(err, ErrNotFound))
	_, err = s.GetUserByUsername(ctx, "bob")
	require.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, s.Ping(ctx))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mongo"})
	require.ErrorContains(t, err, "unknown driver")
}

func TestOpen_FSDoesNotMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	writeRegistry(t, path)
	_, err := Open(context.Background(), Config{Driver: DriverFS, FSPath: path, Migrate: true})
	require.ErrorContains(t, err, "does not support migrations")
}

func TestOpen_SQLiteWithMigrateAndCache(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "open.db")
	s, err := Open(context.Background(), Config{
		Driver:         DriverSQLite,
		DSN:            dsn,
		Migrate:        true,
		ClientCacheTTL: 0,
	})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.GetClient(context.Background(), "web")
	require.True(t, errors.Is(err, ErrNotFound))
}
