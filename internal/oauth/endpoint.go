package oauth

import (
	"context"

	"github.com/dropDatabas3/authcore/internal/metrics"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// AuthorizationEndpoint despacha /oauth/authorize y /oauth/token al
// handler del grant. Los errores se propagan sin modificar.
type AuthorizationEndpoint struct {
	factory *Factory
}

func NewAuthorizationEndpoint(f *Factory) *AuthorizationEndpoint {
	return &AuthorizationEndpoint{factory: f}
}

// Authorize: req.GrantType es el response_type.
func (e *AuthorizationEndpoint) Authorize(ctx context.Context, req GrantRequest) (*Response, error) {
	if req.GrantType == "" {
		return nil, MissingQueryParam("response_type")
	}
	req.Endpoint = EndpointAuthorize
	return e.dispatch(ctx, req)
}

// Token: req.GrantType es el grant_type.
func (e *AuthorizationEndpoint) Token(ctx context.Context, req GrantRequest) (*Response, error) {
	if req.GrantType == "" {
		return nil, MissingQueryParam("grant_type")
	}
	req.Endpoint = EndpointToken
	return e.dispatch(ctx, req)
}

func (e *AuthorizationEndpoint) dispatch(ctx context.Context, req GrantRequest) (*Response, error) {
	h, err := e.factory.Handler(req.GrantType)
	if err == nil {
		var resp *Response
		resp, err = h.HandleGrant(ctx, req)
		if err == nil {
			metrics.ObserveGrant(req.GrantType, "ok")
			return resp, nil
		}
	}

	kind := KindOf(err)
	result := string(kind)
	if kind == "" {
		result = "error"
	}
	metrics.ObserveGrant(metricGrantLabel(req.GrantType), result)
	logger.From(ctx).Info("grant rejected",
		logger.Layer("oauth"),
		logger.String("endpoint", req.Endpoint.String()),
		logger.GrantType(req.GrantType),
		logger.ClientID(req.ClientID),
		logger.ErrorKind(result),
		logger.Err(err),
	)
	return nil, err
}

// metricGrantLabel acota la cardinalidad: valores desconocidos van a "other".
func metricGrantLabel(gt string) string {
	if _, ok := ParseGrantKind(gt); ok {
		return gt
	}
	return "other"
}
