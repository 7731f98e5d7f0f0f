package oauth

import (
	"net/http"

	core "github.com/dropDatabas3/authcore/internal/oauth"
)

// AuthorizeController maneja GET /oauth/authorize.
type AuthorizeController struct {
	authz Authorizer
}

func NewAuthorizeController(authz Authorizer) *AuthorizeController {
	return &AuthorizeController{authz: authz}
}

// Authorize lee los parámetros del query string. Los errores se responden
// en JSON, nunca redirigiendo a un redirect_uri no validado.
func (c *AuthorizeController) Authorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := core.GrantRequest{
		GrantType:   q.Get("response_type"),
		ClientID:    q.Get("client_id"),
		LoginToken:  q.Get("login_token"),
		Scope:       q.Get("scope"),
		State:       q.Get("state"),
		RedirectURI: q.Get("redirect_uri"),
	}

	resp, err := c.authz.Authorize(r.Context(), req)
	if err != nil {
		writeError(w, r, "AuthorizeController.Authorize", err)
		return
	}
	writeResponse(w, resp)
}
