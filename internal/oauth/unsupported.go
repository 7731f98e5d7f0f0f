package oauth

import "context"

// UnsupportedGrantHandler rechaza grants reconocidos pero no implementados
// (refresh_token: no hay persistencia de refresh tokens).
type UnsupportedGrantHandler struct{}

func (UnsupportedGrantHandler) HandleGrant(_ context.Context, req GrantRequest) (*Response, error) {
	return nil, UnsupportedGrant(req.GrantType)
}
