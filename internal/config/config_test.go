package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authcore/internal/security/secretbox"
)

const testSecret = "0123456789abcdef0123456789abcdef-test"

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "authcore.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_YAMLAndDefaults(t *testing.T) {
	p := writeYAML(t, `
storage:
  driver: fs
  fs_path: ./data/registry.yaml
token:
  secret: "`+testSecret+`"
  access_ttl: 2h
oauth:
  allowed_return_hosts: ["app.example.com"]
`)
	c, err := Load(p)
	require.NoError(t, err)

	require.Equal(t, ":8080", c.Server.Addr)
	require.Equal(t, 2*time.Hour, c.Token.AccessTTL)
	require.Equal(t, 5*time.Minute, c.Token.LoginTTL)
	require.Equal(t, time.Minute, c.Token.CodeTTL)
	require.Equal(t, "memory", c.Cache.Kind)
	require.Equal(t, []string{"app.example.com"}, c.OAuth.AllowedReturnHosts)
	require.Equal(t, uint32(64*1024), c.Security.Argon2.Memory)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	p := writeYAML(t, `
storage:
  driver: fs
  fs_path: ./data/registry.yaml
token:
  secret: "`+testSecret+`"
  login_ttl: 10m
`)
	t.Setenv("TOKEN_LOGIN_TTL", "90s")
	t.Setenv("OAUTH_PASSWORD_GRANT_ENABLED", "true")
	t.Setenv("OAUTH_ALLOWED_RETURN_HOSTS", "a.example.com,b.example.com")
	t.Setenv("SERVER_TRUSTED_PROXIES", "10.0.0.0/8,192.0.2.1")

	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, 90*time.Second, c.Token.LoginTTL)
	require.True(t, c.OAuth.PasswordGrantEnabled)
	require.Equal(t, []string{"a.example.com", "b.example.com"}, c.OAuth.AllowedReturnHosts)
	require.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, c.Server.TrustedProxies)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("TOKEN_SECRET", testSecret)
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("STORAGE_DSN", "file:authcore.db")

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "sqlite", c.Storage.Driver)
}

func TestValidate_Errors(t *testing.T) {
	cases := map[string]string{
		"short secret": `
storage: {driver: fs, fs_path: x.yaml}
token: {secret: "short"}
`,
		"unknown driver": `
storage: {driver: mongo}
token: {secret: "` + testSecret + `"}
`,
		"redis without addr": `
storage: {driver: fs, fs_path: x.yaml}
cache: {kind: redis}
token: {secret: "` + testSecret + `"}
`,
		"dsn missing": `
storage: {driver: postgres}
token: {secret: "` + testSecret + `"}
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeYAML(t, body))
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_SealedValues(t *testing.T) {
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	box, err := secretbox.New(key)
	require.NoError(t, err)
	sealedSecret, err := box.Seal(testSecret)
	require.NoError(t, err)
	sealedDSN, err := box.Seal("file:authcore.db")
	require.NoError(t, err)

	p := writeYAML(t, `
storage:
  driver: sqlite
  dsn: "`+sealedDSN+`"
token:
  secret: "`+sealedSecret+`"
`)

	t.Setenv(secretbox.EnvVar, "")
	_, err = Load(p)
	require.ErrorIs(t, err, secretbox.ErrNoKey)

	t.Setenv(secretbox.EnvVar, key)
	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, testSecret, c.Token.Secret)
	require.Equal(t, "file:authcore.db", c.Storage.DSN)
}
