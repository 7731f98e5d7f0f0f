package secretbox

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	return raw
}

func TestSealOpen_RoundTrip(t *testing.T) {
	b, err := New(base64.StdEncoding.EncodeToString(testKey()))
	require.NoError(t, err)

	msg := "postgres://auth:s3cr3t@db:5432/authcore"
	sealed, err := b.Seal(msg)
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, sealed, "s3cr3t")

	got, err := b.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, msg, got)

	plain, err := b.Open("no-prefix")
	require.NoError(t, err)
	assert.Equal(t, "no-prefix", plain)
}

func TestNew_KeyEncodings(t *testing.T) {
	for name, key := range map[string]string{
		"base64":     base64.StdEncoding.EncodeToString(testKey()),
		"base64 raw": base64.RawStdEncoding.EncodeToString(testKey()),
		"hex":        hex.EncodeToString(testKey()),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := New(key)
			require.NoError(t, err)
		})
	}

	_, err := New("too-short")
	require.Error(t, err)
}

func TestDecrypt_DetectsTamper(t *testing.T) {
	b, err := New(hex.EncodeToString(testKey()))
	require.NoError(t, err)

	ct, err := b.Encrypt("top secret")
	require.NoError(t, err)

	nonce, body, _ := strings.Cut(ct, "|")
	bs, err := base64.StdEncoding.DecodeString(body)
	require.NoError(t, err)
	bs[0] ^= 0x01
	_, err = b.Decrypt(nonce + "|" + base64.StdEncoding.EncodeToString(bs))
	require.Error(t, err)

	_, err = b.Decrypt("garbage")
	require.ErrorIs(t, err, ErrBadFormat)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvVar, "")
	_, err := FromEnv()
	require.ErrorIs(t, err, ErrNoKey)

	t.Setenv(EnvVar, base64.StdEncoding.EncodeToString(testKey()))
	_, err = FromEnv()
	require.NoError(t, err)
}
