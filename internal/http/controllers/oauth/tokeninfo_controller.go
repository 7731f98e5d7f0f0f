package oauth

import (
	"encoding/json"
	"net/http"
	"time"

	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	mw "github.com/dropDatabas3/authcore/internal/http/middlewares"
)

type tokenInfoResponse struct {
	ClientID  string `json:"client_id"`
	UserID    int64  `json:"user_id"`
	Scope     string `json:"scope"`
	ExpiresIn int64  `json:"expires_in"`
	IssuedAt  int64  `json:"iat"`
	JTI       string `json:"jti"`
}

// TokenInfoController maneja GET /oauth/tokeninfo. Requiere que
// RequireAccessToken haya dejado el payload en el contexto.
type TokenInfoController struct {
	now func() time.Time
}

// NewTokenInfoController usa now para calcular expires_in; nil es time.Now.
func NewTokenInfoController(now func() time.Time) *TokenInfoController {
	if now == nil {
		now = time.Now
	}
	return &TokenInfoController{now: now}
}

func (c *TokenInfoController) TokenInfo(w http.ResponseWriter, r *http.Request) {
	p := mw.GetAccessToken(r.Context())
	if p == nil {
		httperrors.WriteError(w, httperrors.ErrTokenMissing)
		return
	}

	resp := tokenInfoResponse{
		ClientID:  p.ClientID,
		UserID:    p.UserID,
		Scope:     p.Scope(),
		ExpiresIn: int64(p.ExpiresIn(c.now()) / time.Second),
		IssuedAt:  p.IssuedTime().Unix(),
		JTI:       p.ID,
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(resp)
}
