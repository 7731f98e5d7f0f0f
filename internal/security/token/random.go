package token

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomString devuelve nBytes aleatorios en base64url sin padding.
func RandomString(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
