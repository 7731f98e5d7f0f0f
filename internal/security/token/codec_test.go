package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef-codec-tests")

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCodec(t *testing.T) (*Codec, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c, err := NewCodec(testSecret, WithClock(clk.Now))
	require.NoError(t, err)
	return c, clk
}

func TestIssueParse_RoundTrip(t *testing.T) {
	c, _ := newTestCodec(t)

	tok, err := c.Issue(PurposeAccess, "C1", 42, []string{"read", "write"}, time.Hour)
	require.NoError(t, err)

	p, err := c.Parse(tok, PurposeAccess)
	require.NoError(t, err)
	require.Equal(t, "C1", p.ClientID)
	require.Equal(t, int64(42), p.UserID)
	require.Equal(t, []string{"read", "write"}, p.Scopes)
	require.Equal(t, "read write", p.Scope())
	require.Equal(t, PurposeAccess, p.Purpose)
	require.NotEmpty(t, p.ID)
	require.Equal(t, time.Hour, p.ExpiresTime().Sub(p.IssuedTime()))
}

func TestIssue_UniquePerCall(t *testing.T) {
	c, _ := newTestCodec(t)
	a, err := c.Issue(PurposeLogin, "", 1, nil, time.Minute)
	require.NoError(t, err)
	b, err := c.Issue(PurposeLogin, "", 1, nil, time.Minute)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestIssue_LongAndURLSafe(t *testing.T) {
	c, _ := newTestCodec(t)
	for _, purpose := range []Purpose{PurposeLogin, PurposeAccess, PurposeCode} {
		tok, err := c.Issue(purpose, "", 1, nil, time.Minute)
		require.NoError(t, err)
		require.Greater(t, len(tok), 300, "purpose %s", purpose)
		require.False(t, strings.ContainsAny(tok, "+/=# &?"), "token must be URL safe")
	}
}

func TestParse_ExpiresAtExactInstant(t *testing.T) {
	c, clk := newTestCodec(t)
	tok, err := c.Issue(PurposeLogin, "C1", 9, nil, 5*time.Minute)
	require.NoError(t, err)

	clk.Advance(5*time.Minute - time.Nanosecond)
	_, err = c.Parse(tok, PurposeLogin)
	require.NoError(t, err)

	clk.Advance(time.Nanosecond)
	p, err := c.Parse(tok, PurposeLogin)
	require.ErrorIs(t, err, ErrExpiredToken)
	require.Equal(t, "C1", p.ClientID, "expired payload is still returned for logging")

	clk.Advance(time.Hour)
	_, err = c.Parse(tok, PurposeLogin)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestParse_SingleBitFlipIsTampered(t *testing.T) {
	c, _ := newTestCodec(t)
	tok, err := c.Issue(PurposeAccess, "C1", 3, []string{"read"}, time.Hour)
	require.NoError(t, err)

	for i := 0; i < len(tok); i++ {
		for bit := 0; bit < 8; bit++ {
			b := []byte(tok)
			b[i] ^= 1 << bit
			_, err := c.Parse(string(b), PurposeAccess)
			if err != ErrTamperedToken {
				t.Fatalf("flip byte %d bit %d: got %v, want ErrTamperedToken", i, bit, err)
			}
		}
	}
}

func TestParse_WrongPurpose(t *testing.T) {
	c, _ := newTestCodec(t)
	tok, err := c.Issue(PurposeLogin, "C1", 3, nil, time.Hour)
	require.NoError(t, err)

	_, err = c.Parse(tok, PurposeAccess)
	require.ErrorIs(t, err, ErrWrongPurpose)
	_, err = c.Parse(tok, PurposeCode)
	require.ErrorIs(t, err, ErrWrongPurpose)
}

func TestParse_OtherSecretIsTampered(t *testing.T) {
	c, _ := newTestCodec(t)
	other, err := NewCodec([]byte("another-secret-another-secret-another-secret"))
	require.NoError(t, err)

	tok, err := other.Issue(PurposeAccess, "C1", 3, nil, time.Hour)
	require.NoError(t, err)
	_, err = c.Parse(tok, PurposeAccess)
	require.ErrorIs(t, err, ErrTamperedToken)
}

func TestParse_Malformed(t *testing.T) {
	c, _ := newTestCodec(t)
	for _, tok := range []string{"", "abc", "a.b", strings.Repeat("x", 87)} {
		_, err := c.Parse(tok, PurposeAccess)
		require.ErrorIs(t, err, ErrMalformedToken, "token %q", tok)
	}
}

func TestParse_LongGarbageIsTampered(t *testing.T) {
	c, _ := newTestCodec(t)
	for _, tok := range []string{strings.Repeat("!", 200), strings.Repeat("x", 87) + "." + strings.Repeat("~", 86)} {
		_, err := c.Parse(tok, PurposeAccess)
		require.ErrorIs(t, err, ErrTamperedToken, "token %q", tok)
	}
}

func TestParse_ValidTagOverGarbagePayloadIsMalformed(t *testing.T) {
	c, _ := newTestCodec(t)
	signing := "not-json."
	sig, err := c.method.Sign(signing, c.secret)
	require.NoError(t, err)

	_, err = c.Parse(signing+tagEncoding.EncodeToString(sig), PurposeAccess)
	require.ErrorIs(t, err, ErrMalformedToken)
}

func TestIssue_RedirectBinding(t *testing.T) {
	c, _ := newTestCodec(t)
	tok, err := c.Issue(PurposeCode, "C1", 3, []string{"read"}, time.Minute, WithRedirectURI("https://app/cb"))
	require.NoError(t, err)

	p, err := c.Parse(tok, PurposeCode)
	require.NoError(t, err)
	require.Equal(t, "https://app/cb", p.RedirectURI)
}

func TestIssue_InvalidArguments(t *testing.T) {
	c, _ := newTestCodec(t)
	_, err := c.Issue(PurposeAccess, "C1", 1, nil, 0)
	require.Error(t, err)
	_, err = c.Issue("", "C1", 1, nil, time.Minute)
	require.Error(t, err)
}

func TestNewCodec_WeakSecret(t *testing.T) {
	_, err := NewCodec([]byte("short"))
	require.ErrorIs(t, err, ErrWeakSecret)
}

func TestPayload_ExpiresIn(t *testing.T) {
	c, clk := newTestCodec(t)
	tok, err := c.Issue(PurposeAccess, "C1", 1, nil, time.Hour)
	require.NoError(t, err)
	p, err := c.Parse(tok, PurposeAccess)
	require.NoError(t, err)

	require.Equal(t, time.Hour, p.ExpiresIn(clk.Now()))
	require.Equal(t, time.Duration(0), p.ExpiresIn(clk.Now().Add(2*time.Hour)))
}
