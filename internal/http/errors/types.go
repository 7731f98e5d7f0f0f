package errors

import (
	"fmt"
	"net/http"
)

// AppError es la forma estándar de un error HTTP.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // No se serializa, usado para el header
	Err        error  `json:"-"` // Causa, solo para logs
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// WithDetail agrega detalles adicionales al error (útil para validaciones)
// Devuelve una COPIA del error para no mutar las variables globales base
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause agrega el error original (causa)
// Devuelve una COPIA del error
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// ---------------------------------------------------------------------------------
// 400 Bad Request
// ---------------------------------------------------------------------------------

var (
	ErrMissingQueryParam = &AppError{
		Code:       "missing_query_param",
		Message:    "Falta un parámetro requerido.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidRedirectURI = &AppError{
		Code:       "invalid_redirect_uri",
		Message:    "La URL de redirección no está permitida.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidScope = &AppError{
		Code:       "invalid_scope",
		Message:    "Ninguno de los scopes solicitados está permitido para el cliente.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidForm = &AppError{
		Code:       "invalid_request",
		Message:    "El cuerpo del formulario es inválido.",
		HTTPStatus: http.StatusBadRequest,
	}
)

// ---------------------------------------------------------------------------------
// 401 Unauthorized
// ---------------------------------------------------------------------------------

var (
	ErrAuthenticationFailed = &AppError{
		Code:       "authentication_failed",
		Message:    "Usuario o contraseña inválidos.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidGrant = &AppError{
		Code:       "invalid_grant",
		Message:    "El token o código presentado es inválido o expiró.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidClient = &AppError{
		Code:       "invalid_client",
		Message:    "Cliente desconocido.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenMissing = &AppError{
		Code:       "invalid_token",
		Message:    "No se proporcionó token de acceso.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenInvalid = &AppError{
		Code:       "invalid_token",
		Message:    "El token de acceso es inválido.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenExpired = &AppError{
		Code:       "invalid_token",
		Message:    "El token de acceso ha expirado.",
		HTTPStatus: http.StatusUnauthorized,
	}
)

// ---------------------------------------------------------------------------------
// 403 / 404 / 405 / 429
// ---------------------------------------------------------------------------------

var (
	ErrInsufficientScope = &AppError{
		Code:       "insufficient_scope",
		Message:    "El token no tiene el scope requerido.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrNotFound = &AppError{
		Code:       "not_found",
		Message:    "El recurso solicitado no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "method_not_allowed",
		Message:    "Método HTTP no permitido para este recurso.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "rate_limit_exceeded",
		Message:    "Demasiadas solicitudes. Intente más tarde.",
		HTTPStatus: http.StatusTooManyRequests,
	}
)

// ---------------------------------------------------------------------------------
// 500+
// ---------------------------------------------------------------------------------

var (
	// unsupported_grant_type se reporta como 500: el request pidió una
	// estrategia que el servidor no sabe resolver.
	ErrUnsupportedGrant = &AppError{
		Code:       "unsupported_grant_type",
		Message:    "Tipo de grant no soportado.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrInternalServerError = &AppError{
		Code:       "internal_error",
		Message:    "Ocurrió un error interno en el servidor.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "service_unavailable",
		Message:    "El servicio no está disponible temporalmente.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
