// Package token emite y valida los tokens opacos del servidor (login, code,
// access).
//
// Formato: base64url(payload JSON) + "." + base64url(HMAC-SHA512). El tag
// cubre el payload codificado y el separador, y tiene largo fijo, así que
// cualquier byte alterado del token invalida el tag.
//
// Parse verifica el tag antes de mirar el payload. Solo un token más corto
// que el tag, o con tag válido sobre un payload que no decodifica, es
// ErrMalformedToken; cualquier otra cadena del largo suficiente (basura
// incluida) es ErrTamperedToken.
//
// Los tokens no tienen estado en el servidor: no hay lista de revocación, un
// token vale hasta su exp.
package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// nonceBytes hace que los tokens codificados superen los 300 caracteres
// aunque el payload sea mínimo.
const nonceBytes = 96

var (
	payloadEncoding = base64.RawURLEncoding
	tagEncoding     = base64.RawURLEncoding.Strict()
)

// Codec es inmutable después de NewCodec y seguro para uso concurrente.
type Codec struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	tagLen int
	now    func() time.Time
}

type Option func(*Codec)

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// IssueOption agrega campos opcionales al payload.
type IssueOption func(*Payload)

// WithRedirectURI liga el token a un redirect_uri (authorization codes).
func WithRedirectURI(uri string) IssueOption {
	return func(p *Payload) { p.RedirectURI = uri }
}

// NewCodec crea un Codec con el secreto de firma del proceso.
func NewCodec(secret []byte, opts ...Option) (*Codec, error) {
	if len(secret) < 32 {
		return nil, ErrWeakSecret
	}
	c := &Codec{
		secret: append([]byte(nil), secret...),
		method: jwt.SigningMethodHS512,
		now:    time.Now,
	}
	c.tagLen = tagEncoding.EncodedLen(c.method.Hash.Size())
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Now expone el reloj del codec para calcular expires_in de forma coherente.
func (c *Codec) Now() time.Time { return c.now() }

// Issue emite un token para purpose que expira validity después de ahora.
func (c *Codec) Issue(purpose Purpose, clientID string, userID int64, scopes []string, validity time.Duration, opts ...IssueOption) (string, error) {
	if purpose == "" {
		return "", errors.New("token: purpose is required")
	}
	if validity <= 0 {
		return "", fmt.Errorf("token: validity must be positive, got %s", validity)
	}
	nonce, err := RandomString(nonceBytes)
	if err != nil {
		return "", fmt.Errorf("token: nonce: %w", err)
	}

	iat := jwt.NewNumericDate(c.now())
	p := Payload{
		Purpose:  purpose,
		ClientID: clientID,
		UserID:   userID,
		Scopes:   append([]string(nil), scopes...),
		Nonce:    nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  iat,
			ExpiresAt: jwt.NewNumericDate(iat.Time.Add(validity)),
			ID:        uuid.NewString(),
		},
	}
	for _, o := range opts {
		o(&p)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("token: encode payload: %w", err)
	}
	signing := payloadEncoding.EncodeToString(raw) + "."
	sig, err := c.method.Sign(signing, c.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signing + tagEncoding.EncodeToString(sig), nil
}

// Parse verifica integridad, propósito y expiración, en ese orden. Un tag
// que no es base64 válido también es ErrTamperedToken.
// Con ErrExpiredToken también devuelve el payload decodificado, solo para logs.
func (c *Codec) Parse(tok string, expected Purpose) (*Payload, error) {
	if len(tok) < c.tagLen+2 {
		return nil, ErrMalformedToken
	}
	cut := len(tok) - c.tagLen
	signing, tag := tok[:cut], tok[cut:]

	sig, err := tagEncoding.DecodeString(tag)
	if err != nil {
		return nil, ErrTamperedToken
	}
	// Verify compara con hmac.Equal (tiempo constante).
	if err := c.method.Verify(signing, sig, c.secret); err != nil {
		return nil, ErrTamperedToken
	}

	if signing[len(signing)-1] != '.' {
		return nil, ErrMalformedToken
	}
	raw, err := payloadEncoding.DecodeString(signing[:len(signing)-1])
	if err != nil {
		return nil, ErrMalformedToken
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, ErrMalformedToken
	}
	if p.ExpiresAt == nil || p.IssuedAt == nil {
		return nil, ErrMalformedToken
	}

	if p.Purpose != expected {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongPurpose, p.Purpose, expected)
	}
	if !c.now().Before(p.ExpiresAt.Time) {
		return &p, ErrExpiredToken
	}
	return &p, nil
}
