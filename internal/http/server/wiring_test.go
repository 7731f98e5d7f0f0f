package server

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authcore/internal/config"
	"github.com/dropDatabas3/authcore/internal/security/password"
)

const testPassword = "Tr0ub4dor&3-staple"

func writeConfig(t *testing.T, extra string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfgYAML := fmt.Sprintf(`
token:
  secret: "wiring-test-secret-0123456789abcdef0123"
storage:
  driver: fs
  fs_path: %q
security:
  argon2:
    memory_kib: 1024
    time: 1
%s`, filepath.Join(dir, "registry.yaml"), extra)
	cfgPath := filepath.Join(dir, "authcore.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o600))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	hash, err := HasherFor(cfg).Hash(testPassword, password.SaltForUser(7))
	require.NoError(t, err)
	registry := fmt.Sprintf(`
clients:
  - client_id: web
    redirect_uris: [https://app.example.com/cb]
    allowed_scopes: [read]
users:
  - id: 7
    username: bob
    password_hash: %q
`, hex.EncodeToString(hash))
	require.NoError(t, os.WriteFile(cfg.Storage.FSPath, []byte(registry), 0o600))
	return cfg
}

func build(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	h, cleanup, err := Build(context.Background(), cfg, Options{Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })
	return h
}

func loginToken(t *testing.T, h http.Handler) string {
	t.Helper()
	form := url.Values{"username": {"bob"}, "password": {testPassword}, "return_url": {"/cb"}}
	r := httptest.NewRequest(http.MethodPost, "/oauth/idp/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	_, frag, ok := strings.Cut(rec.Header().Get("Location"), "#")
	require.True(t, ok)
	v, err := url.ParseQuery(frag)
	require.NoError(t, err)
	return v.Get("login_token")
}

func authorize(h http.Handler, login string) *httptest.ResponseRecorder {
	q := url.Values{
		"response_type": {"token"},
		"client_id":     {"web"},
		"login_token":   {login},
		"redirect_uri":  {"https://app.example.com/cb"},
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/authorize?"+q.Encode(), nil))
	return rec
}

func TestBuild_FSStoreMemoryCache(t *testing.T) {
	h := build(t, writeConfig(t, ""))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	login := loginToken(t, h)
	assert.Equal(t, http.StatusFound, authorize(h, login).Code)
	// sin single_use_tokens el login token vale hasta su exp
	assert.Equal(t, http.StatusFound, authorize(h, login).Code)
}

func TestBuild_SingleUseTokens(t *testing.T) {
	h := build(t, writeConfig(t, "oauth:\n  single_use_tokens: true\n"))

	login := loginToken(t, h)
	assert.Equal(t, http.StatusFound, authorize(h, login).Code)
	assert.Equal(t, http.StatusUnauthorized, authorize(h, login).Code)
}

func TestBuild_PasswordGrantGate(t *testing.T) {
	token := func(h http.Handler) int {
		form := url.Values{"grant_type": {"password"}, "client_id": {"web"}, "username": {"bob"}, "password": {testPassword}}
		r := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	assert.Equal(t, http.StatusInternalServerError, token(build(t, writeConfig(t, ""))))
	assert.Equal(t, http.StatusOK, token(build(t, writeConfig(t, "oauth:\n  password_grant_enabled: true\n"))))
}

func TestBuild_BadStore(t *testing.T) {
	cfg := writeConfig(t, "")
	cfg.Storage.FSPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, _, err := Build(context.Background(), cfg, Options{Registerer: prometheus.NewRegistry()})
	require.Error(t, err)
}
