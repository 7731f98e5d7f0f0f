package oauth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/authcore/internal/audit"
	"github.com/dropDatabas3/authcore/internal/metrics"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/security/token"
)

// AuthorizationCodeGrantHandler cubre las dos fases del flujo code:
// /authorize emite un code token ligado a client y redirect_uri, /token lo
// canjea por un access token.
type AuthorizationCodeGrantHandler struct {
	d Deps
}

func NewAuthorizationCodeGrantHandler(d Deps) *AuthorizationCodeGrantHandler {
	return &AuthorizationCodeGrantHandler{d: d.withDefaults()}
}

func (h *AuthorizationCodeGrantHandler) HandleGrant(ctx context.Context, req GrantRequest) (*Response, error) {
	switch req.Endpoint {
	case EndpointAuthorize:
		return h.authorize(ctx, req)
	case EndpointToken:
		return h.exchange(ctx, req)
	}
	return nil, UnsupportedGrant(req.GrantType)
}

func (h *AuthorizationCodeGrantHandler) authorize(ctx context.Context, req GrantRequest) (*Response, error) {
	log := logger.From(ctx).With(logger.Layer("oauth"), logger.Op("AuthorizationCodeGrantHandler.authorize"), logger.ClientID(req.ClientID))

	if err := requireParams(
		"client_id", req.ClientID,
		"login_token", req.LoginToken,
		"redirect_uri", req.RedirectURI,
	); err != nil {
		return nil, err
	}

	client, err := h.d.resolveClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if err := checkRedirect(client, req.RedirectURI); err != nil {
		return nil, err
	}

	login, err := h.d.parseBound(req.LoginToken, token.PurposeLogin, client.ID)
	if err != nil {
		log.Debug("login token rejected", logger.Err(err))
		return nil, err
	}

	scopes, err := EffectiveScope(req.Scope, client.AllowedScopes)
	if err != nil {
		return nil, err
	}
	if err := h.d.Replay.Consume(ctx, login); err != nil {
		return nil, err
	}

	code, err := h.d.Codec.Issue(token.PurposeCode, client.ID, login.UserID, scopes, h.d.Settings.CodeTTL,
		token.WithRedirectURI(req.RedirectURI))
	if err != nil {
		return nil, fmt.Errorf("oauth: issue code: %w", err)
	}
	metrics.ObserveTokenIssued(string(token.PurposeCode))
	audit.Log(ctx, audit.TokenIssued,
		logger.ClientID(client.ID), logger.UserID(login.UserID), logger.Purpose(string(token.PurposeCode)),
		logger.Scope(strings.Join(scopes, " ")), logger.GrantType(GrantTypeCode))

	loc, err := withQuery(req.RedirectURI, "code", code, "state", req.State)
	if err != nil {
		return nil, err
	}
	return redirect(loc), nil
}

func (h *AuthorizationCodeGrantHandler) exchange(ctx context.Context, req GrantRequest) (*Response, error) {
	log := logger.From(ctx).With(logger.Layer("oauth"), logger.Op("AuthorizationCodeGrantHandler.exchange"), logger.ClientID(req.ClientID))

	if err := requireParams(
		"code", req.Code,
		"client_id", req.ClientID,
		"redirect_uri", req.RedirectURI,
	); err != nil {
		return nil, err
	}

	client, err := h.d.resolveClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	code, err := h.d.Codec.Parse(req.Code, token.PurposeCode)
	if err != nil {
		log.Debug("code rejected", logger.Err(err))
		return nil, InvalidGrant(err)
	}
	if code.ClientID != client.ID {
		return nil, InvalidGrant(ErrClientMismatch)
	}
	if code.RedirectURI != req.RedirectURI {
		return nil, InvalidGrant(ErrRedirectMismatch)
	}

	// los scopes permitidos pueden haber cambiado desde que se emitió el code
	scopes, err := narrow(code.Scopes, client.AllowedScopes)
	if err != nil {
		return nil, err
	}
	if err := h.d.Replay.Consume(ctx, code); err != nil {
		return nil, err
	}

	access, err := h.d.issueAccess(client.ID, code.UserID, scopes)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.TokenIssued,
		logger.ClientID(client.ID), logger.UserID(code.UserID), logger.Purpose(string(token.PurposeAccess)),
		logger.Scope(strings.Join(scopes, " ")), logger.GrantType(GrantTypeAuthorizationCode))

	return jsonTokenResponse(TokenResponse{
		AccessToken: access,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   ttlSeconds(h.d.Settings.AccessTTL),
		Scope:       strings.Join(scopes, " "),
	})
}
