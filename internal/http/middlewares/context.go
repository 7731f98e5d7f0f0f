package middlewares

import (
	"context"

	"github.com/dropDatabas3/authcore/internal/security/token"
)

type ctxKey string

const (
	ctxRequestIDKey   ctxKey = "request_id"
	ctxAccessTokenKey ctxKey = "access_token"
	ctxClientIPKey    ctxKey = "client_ip"
)

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID obtiene el request ID del contexto ("" si no hay).
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return v
	}
	return ""
}

func setClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxClientIPKey, ip)
}

func getClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(ctxClientIPKey).(string)
	return ip
}

// WithAccessToken inyecta el payload de un access token ya validado.
func WithAccessToken(ctx context.Context, p *token.Payload) context.Context {
	return context.WithValue(ctx, ctxAccessTokenKey, p)
}

// GetAccessToken devuelve el payload validado por RequireAccessToken, o nil.
func GetAccessToken(ctx context.Context) *token.Payload {
	p, _ := ctx.Value(ctxAccessTokenKey).(*token.Payload)
	return p
}
