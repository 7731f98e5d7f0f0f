package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose separa los usos de un token: uno emitido para login nunca sirve
// como access token y viceversa.
type Purpose string

const (
	PurposeLogin  Purpose = "login"
	PurposeAccess Purpose = "access"
	PurposeCode   Purpose = "code"
)

// Payload es el contenido firmado de un token.
// iat, exp y jti viajan en los RegisteredClaims.
type Payload struct {
	Purpose     Purpose  `json:"pur"`
	ClientID    string   `json:"cid,omitempty"`
	UserID      int64    `json:"uid"`
	Scopes      []string `json:"scp,omitempty"`
	RedirectURI string   `json:"rdu,omitempty"`
	Nonce       string   `json:"nce"`
	jwt.RegisteredClaims
}

// Scope devuelve los scopes separados por espacio, como en OAuth2.
func (p *Payload) Scope() string {
	return strings.Join(p.Scopes, " ")
}

func (p *Payload) IssuedTime() time.Time {
	if p.IssuedAt == nil {
		return time.Time{}
	}
	return p.IssuedAt.Time
}

func (p *Payload) ExpiresTime() time.Time {
	if p.ExpiresAt == nil {
		return time.Time{}
	}
	return p.ExpiresAt.Time
}

// ExpiresIn es el tiempo restante respecto de now, nunca negativo.
func (p *Payload) ExpiresIn(now time.Time) time.Duration {
	d := p.ExpiresTime().Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
