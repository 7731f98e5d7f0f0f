package oauth

import "time"

// Endpoint indica por dónde entró el request.
type Endpoint int

const (
	EndpointAuthorize Endpoint = iota + 1
	EndpointToken
)

func (e Endpoint) String() string {
	switch e {
	case EndpointAuthorize:
		return "authorize"
	case EndpointToken:
		return "token"
	}
	return "unknown"
}

// GrantRequest son los parámetros de un request de autorización o de
// token. Vive lo que dura el request.
type GrantRequest struct {
	Endpoint    Endpoint
	GrantType   string // response_type en /authorize, grant_type en /token
	ClientID    string
	LoginToken  string
	Scope       string
	State       string
	RedirectURI string
	Code        string
	Username    string
	Password    string
}

// Response la escribe la capa HTTP tal cual.
type Response struct {
	Status      int
	Location    string
	ContentType string
	Body        []byte
}

// TokenResponse es el cuerpo JSON del token endpoint (RFC 6749 5.1).
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// Settings son los parámetros de emisión, tomados de config al arrancar.
type Settings struct {
	AccessTTL            time.Duration
	LoginTTL             time.Duration
	CodeTTL              time.Duration
	PasswordGrantEnabled bool
	AllowedReturnHosts   []string
}

const tokenTypeBearer = "Bearer"
