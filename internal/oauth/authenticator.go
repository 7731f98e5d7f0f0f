package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/authcore/internal/security/password"
	"github.com/dropDatabas3/authcore/internal/store"
)

// Authenticator verifica credenciales de resource owners. Lo comparten el
// identity provider y el password grant.
type Authenticator struct {
	users  store.UserRepository
	hasher *password.Hasher
	// dummy se usa cuando el usuario no existe, para que ese camino cueste
	// lo mismo que un password incorrecto.
	dummy []byte
}

func NewAuthenticator(users store.UserRepository, hasher *password.Hasher) (*Authenticator, error) {
	dummy, err := hasher.Hash("authcore-unknown-user", password.SaltForUser(0))
	if err != nil {
		return nil, fmt.Errorf("oauth: authenticator: %w", err)
	}
	return &Authenticator{users: users, hasher: hasher, dummy: dummy}, nil
}

// Authenticate devuelve el usuario o AuthenticationFailed. Solo errores de
// infraestructura (store caído) salen con otro tipo.
func (a *Authenticator) Authenticate(ctx context.Context, username, pwd string) (*store.User, error) {
	u, err := a.users.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		_, _ = a.hasher.Verify(pwd, password.SaltForUser(0), a.dummy)
		return nil, AuthenticationFailed()
	}
	if err != nil {
		return nil, fmt.Errorf("oauth: user lookup: %w", err)
	}

	ok, err := a.hasher.Verify(pwd, password.SaltForUser(u.ID), u.PasswordHash)
	if err != nil || !ok {
		return nil, AuthenticationFailed()
	}
	return u, nil
}
