package token

import "errors"

var (
	// ErrMalformedToken: el token no tiene la forma esperada o el payload no decodifica.
	ErrMalformedToken = errors.New("token: malformed")
	// ErrTamperedToken: el tag de integridad no coincide con el payload.
	ErrTamperedToken = errors.New("token: integrity check failed")
	// ErrWrongPurpose: el token es válido pero fue emitido para otro propósito.
	ErrWrongPurpose = errors.New("token: wrong purpose")
	// ErrExpiredToken: el token es válido pero expiró.
	ErrExpiredToken = errors.New("token: expired")
	// ErrWeakSecret: el secreto de firma es demasiado corto.
	ErrWeakSecret = errors.New("token: signing secret too short")
)
