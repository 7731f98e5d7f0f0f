package oauth

import (
	"errors"
	"fmt"
)

// ErrorKind clasifica los errores del core. La capa HTTP decide el status
// a partir del kind.
type ErrorKind string

const (
	KindMissingQueryParam    ErrorKind = "missing_query_param"
	KindUnsupportedGrant     ErrorKind = "unsupported_grant_type"
	KindInvalidRedirectURI   ErrorKind = "invalid_redirect_uri"
	KindInvalidScope         ErrorKind = "invalid_scope"
	KindInvalidGrant         ErrorKind = "invalid_grant"
	KindInvalidClient        ErrorKind = "invalid_client"
	KindAuthenticationFailed ErrorKind = "authentication_failed"
)

// Error es el error tipado del core.
//
// errors.Is compara por Kind; si el target tiene Param o GrantType, esos
// campos también deben coincidir:
//
//	errors.Is(err, oauth.ErrMissingQueryParam)              // cualquier parámetro
//	errors.Is(err, oauth.MissingQueryParam("return_url"))   // uno puntual
type Error struct {
	Kind      ErrorKind
	Param     string // parámetro ofensor, si aplica
	GrantType string // solo para unsupported_grant_type
	Err       error  // causa (p.ej. token.ErrExpiredToken)
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	switch {
	case e.Param != "":
		msg += ": " + e.Param
	case e.GrantType != "":
		msg += fmt.Sprintf(": %q", e.GrantType)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind != e.Kind {
		return false
	}
	if t.Param != "" && t.Param != e.Param {
		return false
	}
	if t.GrantType != "" && t.GrantType != e.GrantType {
		return false
	}
	return true
}

// Sentinels por kind, para errors.Is.
var (
	ErrMissingQueryParam    = &Error{Kind: KindMissingQueryParam}
	ErrUnsupportedGrant     = &Error{Kind: KindUnsupportedGrant}
	ErrInvalidRedirectURI   = &Error{Kind: KindInvalidRedirectURI}
	ErrInvalidScope         = &Error{Kind: KindInvalidScope}
	ErrInvalidGrant         = &Error{Kind: KindInvalidGrant}
	ErrInvalidClient        = &Error{Kind: KindInvalidClient}
	ErrAuthenticationFailed = &Error{Kind: KindAuthenticationFailed}
)

// Causas internas de invalid_grant.
var (
	ErrClientMismatch   = errors.New("token bound to another client")
	ErrRedirectMismatch = errors.New("redirect_uri does not match the code")
	ErrTokenReplayed    = errors.New("token already used")
)

func MissingQueryParam(param string) *Error {
	return &Error{Kind: KindMissingQueryParam, Param: param}
}

func UnsupportedGrant(grantType string) *Error {
	return &Error{Kind: KindUnsupportedGrant, GrantType: grantType}
}

func InvalidRedirectURI(param string) *Error {
	return &Error{Kind: KindInvalidRedirectURI, Param: param}
}

func InvalidScope() *Error {
	return &Error{Kind: KindInvalidScope, Param: "scope"}
}

// InvalidGrant envuelve la causa: errors.Is(err, token.ErrExpiredToken)
// sigue funcionando para logs y métricas.
func InvalidGrant(cause error) *Error {
	return &Error{Kind: KindInvalidGrant, Err: cause}
}

func InvalidClient() *Error {
	return &Error{Kind: KindInvalidClient, Param: "client_id"}
}

// AuthenticationFailed no lleva causa: usuario inexistente y password
// incorrecto producen el mismo error.
func AuthenticationFailed() *Error {
	return &Error{Kind: KindAuthenticationFailed}
}

// KindOf devuelve el kind de err, o "" si no es un *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
