package oauth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthorizationEndpoint_RequiredParam(t *testing.T) {
	e := NewAuthorizationEndpoint(NewFactory(newFixture(t).deps))

	_, err := e.Authorize(context.Background(), GrantRequest{ClientID: testClient})
	require.True(t, errors.Is(err, MissingQueryParam("response_type")))

	_, err = e.Token(context.Background(), GrantRequest{ClientID: testClient})
	require.True(t, errors.Is(err, MissingQueryParam("grant_type")))
}

func TestAuthorizationEndpoint_PropagatesErrorsUnchanged(t *testing.T) {
	e := NewAuthorizationEndpoint(NewFactory(newFixture(t).deps))

	_, err := e.Authorize(context.Background(), GrantRequest{GrantType: "bogus"})
	var oe *Error
	require.True(t, errors.As(err, &oe))
	require.Equal(t, KindUnsupportedGrant, oe.Kind)
	require.Equal(t, "bogus", oe.GrantType)

	_, err = e.Token(context.Background(), GrantRequest{GrantType: "token"})
	require.True(t, errors.Is(err, UnsupportedGrant("token")))
}

func TestAuthorizationEndpoint_Dispatch(t *testing.T) {
	f := newFixture(t)
	e := NewAuthorizationEndpoint(NewFactory(f.deps))

	resp, err := e.Authorize(context.Background(), GrantRequest{
		GrantType:   "token",
		ClientID:    testClient,
		LoginToken:  f.loginToken(t, testClient),
		RedirectURI: testRedirect,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.Status)
}
