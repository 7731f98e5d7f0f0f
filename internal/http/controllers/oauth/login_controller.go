package oauth

import (
	"net/http"

	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	core "github.com/dropDatabas3/authcore/internal/oauth"
)

// LoginController maneja el formulario del identity provider:
// GET /oauth/idp/ui/login y POST /oauth/idp/login.
type LoginController struct {
	idp IdentityProvider
}

func NewLoginController(idp IdentityProvider) *LoginController {
	return &LoginController{idp: idp}
}

func (c *LoginController) ShowLogin(w http.ResponseWriter, r *http.Request) {
	resp, err := c.idp.ShowLogin(r.Context(), r.URL.Query().Get("return_url"))
	if err != nil {
		writeError(w, r, "LoginController.ShowLogin", err)
		return
	}
	writeResponse(w, resp)
}

// Login: return_url llega en el form; si falta se toma del query (el action
// del formulario lo lleva).
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidForm.WithCause(err))
		return
	}

	returnURL := r.PostForm.Get("return_url")
	if returnURL == "" {
		returnURL = r.URL.Query().Get("return_url")
	}
	req := core.LoginRequest{
		Username:  r.PostForm.Get("username"),
		Password:  r.PostForm.Get("password"),
		ReturnURL: returnURL,
		ClientID:  r.PostForm.Get("client_id"),
	}

	resp, err := c.idp.Authenticate(r.Context(), req)
	if err != nil {
		writeError(w, r, "LoginController.Login", err)
		return
	}
	writeResponse(w, resp)
}
