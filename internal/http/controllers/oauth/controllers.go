// Package oauth contiene los controllers HTTP de los endpoints OAuth y del
// identity provider. Solo traducen request/response: la lógica vive en
// internal/oauth.
package oauth

import (
	"context"
	"net/http"
	"time"

	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	core "github.com/dropDatabas3/authcore/internal/oauth"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// Authorizer es lo que los controllers necesitan de core.AuthorizationEndpoint.
type Authorizer interface {
	Authorize(ctx context.Context, req core.GrantRequest) (*core.Response, error)
	Token(ctx context.Context, req core.GrantRequest) (*core.Response, error)
}

// IdentityProvider es lo que los controllers necesitan de
// core.IdentityProviderEndpoint.
type IdentityProvider interface {
	ShowLogin(ctx context.Context, returnURL string) (*core.Response, error)
	Authenticate(ctx context.Context, req core.LoginRequest) (*core.Response, error)
}

// Controllers agrupa los controllers del dominio oauth.
type Controllers struct {
	Authorize *AuthorizeController
	Token     *TokenController
	TokenInfo *TokenInfoController
	Login     *LoginController
}

// now es el reloj del codec (expires_in de tokeninfo).
func NewControllers(authz Authorizer, idp IdentityProvider, now func() time.Time) *Controllers {
	return &Controllers{
		Authorize: NewAuthorizeController(authz),
		Token:     NewTokenController(authz),
		TokenInfo: NewTokenInfoController(now),
		Login:     NewLoginController(idp),
	}
}

// writeResponse vuelca una core.Response.
func writeResponse(w http.ResponseWriter, resp *core.Response) {
	if resp.Location != "" {
		w.Header().Set("Location", resp.Location)
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}

// writeError loguea las fallas internas (las de protocolo ya las logueó el
// core) y escribe el JSON de error.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	appErr := httperrors.FromError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.From(r.Context()).Error("request failed",
			logger.Layer("controller"),
			logger.Op(op),
			logger.ErrorKind(appErr.Code),
			logger.Err(err),
		)
	}
	httperrors.WriteError(w, appErr)
}
