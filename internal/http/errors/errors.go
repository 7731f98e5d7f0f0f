// Package errors traduce errores del core a respuestas HTTP JSON.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/authcore/internal/oauth"
	"github.com/dropDatabas3/authcore/internal/security/token"
)

// errorResponse structura interna para la serialización JSON.
// Esto nos permite controlar exactamente qué campos se envían al cliente.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError escribe una respuesta HTTP basada en el error proporcionado.
// Maneja automáticamente errores de tipo *AppError, errores del core y
// errores genéricos (500 sin detalle).
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	resp := errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}

// FromError convierte err en un AppError. El detail solo lleva el nombre
// del parámetro ofensor, nunca el texto del error interno.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var oe *oauth.Error
	if stderrors.As(err, &oe) {
		base := ErrInternalServerError
		switch oe.Kind {
		case oauth.KindMissingQueryParam:
			base = ErrMissingQueryParam
		case oauth.KindInvalidRedirectURI:
			base = ErrInvalidRedirectURI
		case oauth.KindInvalidScope:
			base = ErrInvalidScope
		case oauth.KindAuthenticationFailed:
			base = ErrAuthenticationFailed
		case oauth.KindInvalidGrant:
			base = ErrInvalidGrant
		case oauth.KindInvalidClient:
			base = ErrInvalidClient
		case oauth.KindUnsupportedGrant:
			return ErrUnsupportedGrant.WithDetail(oe.GrantType).WithCause(err)
		}
		if oe.Param != "" {
			return base.WithDetail(oe.Param).WithCause(err)
		}
		return base.WithCause(err)
	}

	switch {
	case stderrors.Is(err, token.ErrExpiredToken):
		return ErrTokenExpired.WithCause(err)
	case stderrors.Is(err, token.ErrMalformedToken),
		stderrors.Is(err, token.ErrTamperedToken),
		stderrors.Is(err, token.ErrWrongPurpose):
		return ErrTokenInvalid.WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}
