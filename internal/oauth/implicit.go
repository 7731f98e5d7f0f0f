package oauth

import (
	"context"
	"strconv"
	"strings"

	"github.com/dropDatabas3/authcore/internal/audit"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/security/token"
)

// ImplicitGrantHandler atiende response_type=token: valida el login token,
// emite un access token y redirige con el token en el fragment.
type ImplicitGrantHandler struct {
	d Deps
}

func NewImplicitGrantHandler(d Deps) *ImplicitGrantHandler {
	return &ImplicitGrantHandler{d: d.withDefaults()}
}

func (h *ImplicitGrantHandler) HandleGrant(ctx context.Context, req GrantRequest) (*Response, error) {
	if req.Endpoint != EndpointAuthorize {
		return nil, UnsupportedGrant(req.GrantType)
	}
	log := logger.From(ctx).With(logger.Layer("oauth"), logger.Op("ImplicitGrantHandler.HandleGrant"), logger.ClientID(req.ClientID))

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

	access, err := h.d.issueAccess(client.ID, login.UserID, scopes)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.TokenIssued,
		logger.ClientID(client.ID), logger.UserID(login.UserID), logger.Purpose(string(token.PurposeAccess)),
		logger.Scope(strings.Join(scopes, " ")), logger.GrantType(GrantTypeToken))

	params := []fragmentParam{
		{"access_token", access},
		{"expires_in", strconv.FormatInt(ttlSeconds(h.d.Settings.AccessTTL), 10)},
		{"scope", strings.Join(scopes, " ")},
	}
	if req.State != "" {
		params = append(params, fragmentParam{"state", req.State})
	}
	params = append(params, fragmentParam{"token_type", tokenTypeBearer})

	loc, err := withFragment(req.RedirectURI, params...)
	if err != nil {
		return nil, err
	}
	return redirect(loc), nil
}
