package store

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// registryFile es el formato del registro YAML del adapter fs.
//
//	clients:
//	  - client_id: web
//	    redirect_uris: [https://app.example.com/cb]
//	    allowed_scopes: [read, write]
//	users:
//	  - id: 1
//	    username: alice
//	    password_hash: <hex argon2id>
type registryFile struct {
	Clients []struct {
		ClientID      string   `yaml:"client_id"`
		RedirectURIs  []string `yaml:"redirect_uris"`
		AllowedScopes []string `yaml:"allowed_scopes"`
	} `yaml:"clients"`
	Users []struct {
		ID           int64  `yaml:"id"`
		Username     string `yaml:"username"`
		PasswordHash string `yaml:"password_hash"`
	} `yaml:"users"`
}

// LoadFile carga el registro YAML en un Memory store. El archivo se lee una
// sola vez; cambios requieren reiniciar el proceso.
func LoadFile(path string) (*Memory, error) {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("store: fs: read %s: %w", path, err)
	}
	return parseRegistry(b)
}

func parseRegistry(b []byte) (*Memory, error) {
	var rf registryFile
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return nil, fmt.Errorf("store: fs: parse registry: %w", err)
	}

	clients := make([]Client, 0, len(rf.Clients))
	for _, c := range rf.Clients {
		clients = append(clients, Client{
			ID:            c.ClientID,
			RedirectURIs:  c.RedirectURIs,
			AllowedScopes: c.AllowedScopes,
		})
	}
	users := make([]User, 0, len(rf.Users))
	for _, u := range rf.Users {
		h, err := hex.DecodeString(u.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("store: fs: user %q: password_hash is not hex: %w", u.Username, err)
		}
		users = append(users, User{ID: u.ID, Username: u.Username, PasswordHash: h})
	}
	return NewMemory(clients, users)
}
