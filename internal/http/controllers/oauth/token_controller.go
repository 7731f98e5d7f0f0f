package oauth

import (
	"net/http"

	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	core "github.com/dropDatabas3/authcore/internal/oauth"
)

// maxFormBytes acota el body de los formularios.
const maxFormBytes = 64 << 10

// TokenController maneja POST /oauth/token.
type TokenController struct {
	authz Authorizer
}

func NewTokenController(authz Authorizer) *TokenController {
	return &TokenController{authz: authz}
}

// Token lee el form (application/x-www-form-urlencoded). Las credenciales
// del query string se ignoran.
func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidForm.WithCause(err))
		return
	}
	f := r.PostForm
	req := core.GrantRequest{
		GrantType:   f.Get("grant_type"),
		ClientID:    f.Get("client_id"),
		Scope:       f.Get("scope"),
		RedirectURI: f.Get("redirect_uri"),
		Code:        f.Get("code"),
		Username:    f.Get("username"),
		Password:    f.Get("password"),
	}

	resp, err := c.authz.Token(r.Context(), req)
	if err != nil {
		writeError(w, r, "TokenController.Token", err)
		return
	}
	w.Header().Set("Pragma", "no-cache")
	writeResponse(w, resp)
}
