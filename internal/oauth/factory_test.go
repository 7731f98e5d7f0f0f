package oauth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFactory_Mapping(t *testing.T) {
	f := newFixture(t)
	fac := NewFactory(f.deps)

	h, err := fac.Handler("token")
	require.NoError(t, err)
	require.IsType(t, &ImplicitGrantHandler{}, h)

	for _, gt := range []string{"code", "authorization_code"} {
		h, err = fac.Handler(gt)
		require.NoError(t, err)
		require.IsType(t, &AuthorizationCodeGrantHandler{}, h)
	}

	h, err = fac.Handler("refresh_token")
	require.NoError(t, err)
	_, err = h.HandleGrant(context.Background(), GrantRequest{Endpoint: EndpointToken, GrantType: "refresh_token"})
	require.True(t, errors.Is(err, UnsupportedGrant("refresh_token")))
}

func TestFactory_UnknownGrant(t *testing.T) {
	fac := NewFactory(newFixture(t).deps)
	for _, gt := range []string{"", "foo", "TOKEN", "client_credentials"} {
		_, err := fac.Handler(gt)
		require.Truef(t, errors.Is(err, UnsupportedGrant(gt)), "grant %q: %v", gt, err)
	}
}

func TestFactory_PasswordToggle(t *testing.T) {
	f := newFixture(t)
	_, err := NewFactory(f.deps).Handler("password")
	require.True(t, errors.Is(err, ErrUnsupportedGrant))

	f.deps.Settings.PasswordGrantEnabled = true
	h, err := NewFactory(f.deps).Handler("password")
	require.NoError(t, err)
	require.IsType(t, &PasswordGrantHandler{}, h)
}

func TestParseGrantKind(t *testing.T) {
	k, ok := ParseGrantKind("authorization_code")
	require.True(t, ok)
	require.Equal(t, GrantAuthorizationCode, k)
	require.Equal(t, "authorization_code", k.String())

	_, ok = ParseGrantKind("implicit")
	require.False(t, ok)
}
