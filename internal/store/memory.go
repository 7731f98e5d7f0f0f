package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dropDatabas3/authcore/internal/validation"
)

// Memory es un store inmutable en memoria. Lo usan el adapter fs y los tests.
type Memory struct {
	clients map[string]*Client
	users   map[string]*User
}

// NewMemory valida y copia los registros. Falla ante client_id o username
// duplicados, redirect_uri inválidos o nombres de scope inválidos.
func NewMemory(clients []Client, users []User) (*Memory, error) {
	m := &Memory{
		clients: make(map[string]*Client, len(clients)),
		users:   make(map[string]*User, len(users)),
	}
	for i := range clients {
		c := clients[i]
		if strings.TrimSpace(c.ID) == "" {
			return nil, fmt.Errorf("store: client #%d: empty client_id", i)
		}
		if _, dup := m.clients[c.ID]; dup {
			return nil, fmt.Errorf("store: duplicate client_id %q", c.ID)
		}
		for _, uri := range c.RedirectURIs {
			if err := validation.ValidRedirectURI(uri); err != nil {
				return nil, fmt.Errorf("store: client %q redirect_uri %q: %w", c.ID, uri, err)
			}
		}
		for _, sc := range c.AllowedScopes {
			if !validation.ValidScopeName(sc) {
				return nil, fmt.Errorf("store: client %q: invalid scope name %q", c.ID, sc)
			}
		}
		m.clients[c.ID] = c.clone()
	}
	for i := range users {
		u := users[i]
		if strings.TrimSpace(u.Username) == "" {
			return nil, fmt.Errorf("store: user #%d: empty username", i)
		}
		if _, dup := m.users[u.Username]; dup {
			return nil, fmt.Errorf("store: duplicate username %q", u.Username)
		}
		if len(u.PasswordHash) == 0 {
			return nil, fmt.Errorf("store: user %q: empty password hash", u.Username)
		}
		u.PasswordHash = slices.Clone(u.PasswordHash)
		m.users[u.Username] = &u
	}
	return m, nil
}

func (m *Memory) GetClient(_ context.Context, clientID string) (*Client, error) {
	c, ok := m.clients[clientID]
	if !ok {
		return nil, ErrNotFound
	}
	return c.clone(), nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	cp.PasswordHash = slices.Clone(u.PasswordHash)
	return &cp, nil
}

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close() error               { return nil }
