package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dropDatabas3/authcore/internal/metrics"
	"github.com/dropDatabas3/authcore/internal/security/token"
	"github.com/dropDatabas3/authcore/internal/store"
)

// GrantHandler procesa un grant. Devuelve *Error para fallas de protocolo
// y errores envueltos para fallas de infraestructura.
type GrantHandler interface {
	HandleGrant(ctx context.Context, req GrantRequest) (*Response, error)
}

// Deps son los colaboradores compartidos por todos los handlers.
type Deps struct {
	Clients  store.ClientRepository
	Auth     *Authenticator
	Codec    *token.Codec
	Replay   ReplayGuard
	Settings Settings
}

func (d Deps) withDefaults() Deps {
	if d.Replay == nil {
		d.Replay = NoReplayGuard{}
	}
	return d
}

// requireParams devuelve MissingQueryParam para el primer par vacío.
// pairs alterna nombre, valor.
func requireParams(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return MissingQueryParam(pairs[i])
		}
	}
	return nil
}

func (d Deps) resolveClient(ctx context.Context, clientID string) (*store.Client, error) {
	c, err := d.Clients.GetClient(ctx, clientID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, InvalidClient()
	}
	if err != nil {
		return nil, fmt.Errorf("oauth: client lookup: %w", err)
	}
	return c, nil
}

func checkRedirect(c *store.Client, redirectURI string) error {
	if !c.HasRedirectURI(redirectURI) {
		return InvalidRedirectURI("redirect_uri")
	}
	return nil
}

// parseBound valida un token de un solo uso ligado a un cliente. Un token
// sin client_id (el IdP no conocía el cliente) se acepta para cualquiera.
func (d Deps) parseBound(raw string, purpose token.Purpose, clientID string) (*token.Payload, error) {
	p, err := d.Codec.Parse(raw, purpose)
	if err != nil {
		return nil, InvalidGrant(err)
	}
	if p.ClientID != "" && p.ClientID != clientID {
		return nil, InvalidGrant(ErrClientMismatch)
	}
	return p, nil
}

func (d Deps) issueAccess(clientID string, userID int64, scopes []string) (string, error) {
	tok, err := d.Codec.Issue(token.PurposeAccess, clientID, userID, scopes, d.Settings.AccessTTL)
	if err != nil {
		return "", fmt.Errorf("oauth: issue access token: %w", err)
	}
	metrics.ObserveTokenIssued(string(token.PurposeAccess))
	return tok, nil
}

func ttlSeconds(d time.Duration) int64 { return int64(d / time.Second) }

// jsonTokenResponse arma la respuesta 200 del token endpoint.
func jsonTokenResponse(tr TokenResponse) (*Response, error) {
	b, err := json.Marshal(tr)
	if err != nil {
		return nil, fmt.Errorf("oauth: encode token response: %w", err)
	}
	return &Response{Status: http.StatusOK, ContentType: "application/json; charset=utf-8", Body: b}, nil
}

// fragmentParam es un par ordenado para el fragment del implicit grant.
type fragmentParam struct{ key, value string }

// withFragment reemplaza el fragment de base. url.Values ordena las keys;
// acá el orden es el de params.
func withFragment(base string, params ...fragmentParam) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", InvalidRedirectURI("redirect_uri")
	}
	u.Fragment, u.RawFragment = "", ""
	out := u.String() + "#"
	for i, p := range params {
		if i > 0 {
			out += "&"
		}
		out += url.QueryEscape(p.key) + "=" + url.QueryEscape(p.value)
	}
	return out, nil
}

func withQuery(base string, kv ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", InvalidRedirectURI("redirect_uri")
	}
	q := u.Query()
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			q.Set(kv[i], kv[i+1])
		}
	}
	u.RawQuery = q.Encode()
	u.Fragment, u.RawFragment = "", ""
	return u.String(), nil
}

func redirect(location string) *Response {
	return &Response{Status: http.StatusFound, Location: location}
}

