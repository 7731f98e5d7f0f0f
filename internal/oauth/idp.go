package oauth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/authcore/internal/audit"
	"github.com/dropDatabas3/authcore/internal/metrics"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/security/token"
	"github.com/dropDatabas3/authcore/internal/validation"
)

// LoginPath es el action del formulario de login.
const LoginPath = "/oauth/idp/login"

// LoginPage son los datos que recibe el renderer del formulario.
type LoginPage struct {
	Action    string // LoginPath?return_url=<percent-encoded>
	ReturnURL string
	ClientID  string
	Error     string
}

// LoginRenderer dibuja el formulario de login. Es el único punto con HTML.
type LoginRenderer interface {
	RenderLogin(w io.Writer, page LoginPage) error
}

// LoginRequest es el POST del formulario.
type LoginRequest struct {
	Username  string
	Password  string
	ReturnURL string
	ClientID  string
}

// IdentityProviderEndpoint autentica resource owners y emite login tokens.
type IdentityProviderEndpoint struct {
	auth        *Authenticator
	codec       *token.Codec
	renderer    LoginRenderer
	loginTTL    time.Duration
	returnHosts map[string]struct{}
}

func NewIdentityProviderEndpoint(auth *Authenticator, codec *token.Codec, renderer LoginRenderer, s Settings) *IdentityProviderEndpoint {
	hosts := make(map[string]struct{}, len(s.AllowedReturnHosts))
	for _, h := range s.AllowedReturnHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts[h] = struct{}{}
		}
	}
	return &IdentityProviderEndpoint{
		auth:        auth,
		codec:       codec,
		renderer:    renderer,
		loginTTL:    s.LoginTTL,
		returnHosts: hosts,
	}
}

// ShowLogin renderiza el formulario para returnURL.
func (e *IdentityProviderEndpoint) ShowLogin(ctx context.Context, returnURL string) (*Response, error) {
	if returnURL == "" {
		return nil, MissingQueryParam("return_url")
	}
	if err := e.checkReturnURL(returnURL); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	page := LoginPage{
		Action:    LoginPath + "?return_url=" + url.QueryEscape(returnURL),
		ReturnURL: returnURL,
		ClientID:  clientFromReturnURL(returnURL),
	}
	if err := e.renderer.RenderLogin(&buf, page); err != nil {
		logger.From(ctx).Error("login form render failed", logger.Layer("oauth"), logger.Err(err))
		return nil, fmt.Errorf("oauth: render login: %w", err)
	}
	return &Response{Status: http.StatusOK, ContentType: "text/html; charset=utf-8", Body: buf.Bytes()}, nil
}

// Authenticate verifica credenciales y redirige a return_url con el login
// token en el fragment. Cualquier falla de credenciales es el mismo
// AuthenticationFailed.
func (e *IdentityProviderEndpoint) Authenticate(ctx context.Context, req LoginRequest) (*Response, error) {
	if req.ReturnURL == "" {
		return nil, MissingQueryParam("return_url")
	}
	if err := e.checkReturnURL(req.ReturnURL); err != nil {
		return nil, err
	}

	user, err := e.auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if KindOf(err) == KindAuthenticationFailed {
			metrics.ObserveLogin("failed")
			audit.Log(ctx, audit.LoginFailed, logger.ClientID(req.ClientID))
		}
		return nil, err
	}

	clientID := req.ClientID
	if clientID == "" {
		clientID = clientFromReturnURL(req.ReturnURL)
	}
	tok, err := e.codec.Issue(token.PurposeLogin, clientID, user.ID, nil, e.loginTTL)
	if err != nil {
		return nil, fmt.Errorf("oauth: issue login token: %w", err)
	}
	metrics.ObserveLogin("ok")
	metrics.ObserveTokenIssued(string(token.PurposeLogin))
	audit.Log(ctx, audit.LoginSucceeded, logger.UserID(user.ID), logger.ClientID(clientID))

	loc, err := withFragment(req.ReturnURL, fragmentParam{"login_token", tok})
	if err != nil {
		return nil, InvalidRedirectURI("return_url")
	}
	return redirect(loc), nil
}

// checkReturnURL acepta paths locales ("/oauth/authorize?...") o URLs
// http(s) absolutas cuyo host esté en la allowlist.
func (e *IdentityProviderEndpoint) checkReturnURL(raw string) error {
	if validation.IsLocalPath(raw) {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return InvalidRedirectURI("return_url")
	}
	if _, ok := e.returnHosts[strings.ToLower(u.Host)]; ok {
		return nil
	}
	if _, ok := e.returnHosts[strings.ToLower(u.Hostname())]; ok {
		return nil
	}
	return InvalidRedirectURI("return_url")
}

// clientFromReturnURL extrae client_id del query del return_url (el caso
// típico es volver a /oauth/authorize?client_id=...).
func clientFromReturnURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Query().Get("client_id")
}
