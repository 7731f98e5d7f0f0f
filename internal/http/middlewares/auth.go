package middlewares

import (
	stderrors "errors"
	"net/http"
	"slices"
	"strings"

	"github.com/dropDatabas3/authcore/internal/http/errors"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/security/token"
)

// AccessTokenParser es lo que necesita RequireAccessToken del codec.
type AccessTokenParser interface {
	Parse(tok string, expected token.Purpose) (*token.Payload, error)
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// RequireAccessToken valida el Bearer token (purpose access) y deja el
// payload en el contexto.
func RequireAccessToken(codec AccessTokenParser) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				w.Header().Set("WWW-Authenticate", `Bearer`)
				errors.WriteError(w, errors.ErrTokenMissing)
				return
			}

			p, err := codec.Parse(raw, token.PurposeAccess)
			if err != nil {
				logger.From(r.Context()).Debug("access token rejected", logger.Err(err))
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				if stderrors.Is(err, token.ErrExpiredToken) {
					errors.WriteError(w, errors.ErrTokenExpired)
					return
				}
				errors.WriteError(w, errors.ErrTokenInvalid)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccessToken(r.Context(), p)))
		})
	}
}

// RequireScope verifica que el access token contenga el scope requerido.
// Debe usarse después de RequireAccessToken.
func RequireScope(scope string) Middleware {
	scope = strings.TrimSpace(scope)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if scope == "" {
				next.ServeHTTP(w, r)
				return
			}

			p := GetAccessToken(r.Context())
			if p == nil {
				errors.WriteError(w, errors.ErrTokenMissing)
				return
			}
			if !slices.Contains(p.Scopes, scope) {
				w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+scope+`"`)
				errors.WriteError(w, errors.ErrInsufficientScope.WithDetail(scope))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
