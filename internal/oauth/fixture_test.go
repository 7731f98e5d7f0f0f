package oauth

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authcore/internal/security/password"
	"github.com/dropDatabas3/authcore/internal/security/token"
	"github.com/dropDatabas3/authcore/internal/store"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef-test-secret"
	testClient   = "web"
	testRedirect = "https://app.example.com/cb"
	testUser     = "alice"
	testPassword = "correct horse battery staple"
	testUserID   = int64(42)
)

// testClock es un reloj manual para expiraciones.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	clock  *testClock
	codec  *token.Codec
	hasher *password.Hasher
	auth   *Authenticator
	deps   Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec, err := token.NewCodec([]byte(testSecret), token.WithClock(clock.Now))
	require.NoError(t, err)

	hasher := password.NewHasher(password.Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32})
	hash, err := hasher.Hash(testPassword, password.SaltForUser(testUserID))
	require.NoError(t, err)

	st, err := store.NewMemory(
		[]store.Client{
			{ID: testClient, RedirectURIs: []string{testRedirect}, AllowedScopes: []string{"read", "write"}},
			{ID: "other", RedirectURIs: []string{"https://other.example.com/cb"}, AllowedScopes: []string{"read"}},
		},
		[]store.User{{ID: testUserID, Username: testUser, PasswordHash: hash}},
	)
	require.NoError(t, err)

	auth, err := NewAuthenticator(st, hasher)
	require.NoError(t, err)

	return &fixture{
		clock:  clock,
		codec:  codec,
		hasher: hasher,
		auth:   auth,
		deps: Deps{
			Clients: st,
			Auth:    auth,
			Codec:   codec,
			Settings: Settings{
				AccessTTL: time.Hour,
				LoginTTL:  5 * time.Minute,
				CodeTTL:   time.Minute,
			},
		},
	}
}

func (f *fixture) loginToken(t *testing.T, clientID string) string {
	t.Helper()
	tok, err := f.codec.Issue(token.PurposeLogin, clientID, testUserID, nil, f.deps.Settings.LoginTTL)
	require.NoError(t, err)
	return tok
}

// fragmentValues parsea el fragment de una Location.
func fragmentValues(t *testing.T, location string) (string, url.Values) {
	t.Helper()
	base, frag, ok := strings.Cut(location, "#")
	require.True(t, ok, "location without fragment: %s", location)
	v, err := url.ParseQuery(frag)
	require.NoError(t, err)
	return base, v
}

type textRenderer struct{}

func (textRenderer) RenderLogin(w io.Writer, p LoginPage) error {
	_, err := fmt.Fprintf(w, "action=%s client=%s error=%s", p.Action, p.ClientID, p.Error)
	return err
}
