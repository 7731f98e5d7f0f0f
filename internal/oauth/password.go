package oauth

import (
	"context"
	"strings"

	"github.com/dropDatabas3/authcore/internal/audit"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/security/token"
)

// PasswordGrantHandler: grant_type=password (RFC 6749 4.3). Solo en el token
// endpoint y solo si está habilitado en config.
type PasswordGrantHandler struct {
	d Deps
}

func NewPasswordGrantHandler(d Deps) *PasswordGrantHandler {
	return &PasswordGrantHandler{d: d.withDefaults()}
}

func (h *PasswordGrantHandler) HandleGrant(ctx context.Context, req GrantRequest) (*Response, error) {
	if req.Endpoint != EndpointToken {
		return nil, UnsupportedGrant(req.GrantType)
	}
	if err := requireParams(
		"client_id", req.ClientID,
		"username", req.Username,
		"password", req.Password,
	); err != nil {
		return nil, err
	}

	client, err := h.d.resolveClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	user, err := h.d.Auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	scopes, err := EffectiveScope(req.Scope, client.AllowedScopes)
	if err != nil {
		return nil, err
	}

	access, err := h.d.issueAccess(client.ID, user.ID, scopes)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.TokenIssued,
		logger.ClientID(client.ID), logger.UserID(user.ID), logger.Purpose(string(token.PurposeAccess)),
		logger.Scope(strings.Join(scopes, " ")), logger.GrantType(GrantTypePassword))

	return jsonTokenResponse(TokenResponse{
		AccessToken: access,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   ttlSeconds(h.d.Settings.AccessTTL),
		Scope:       strings.Join(scopes, " "),
	})
}
