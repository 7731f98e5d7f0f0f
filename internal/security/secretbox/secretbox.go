// Package secretbox cifra valores sensibles de configuración (DSN, password
// de redis, secreto de tokens) con AES-256-GCM bajo una clave maestra.
//
// Formato: base64(nonce)|base64(ciphertext). En YAML/env el valor va con el
// prefijo "enc:".
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// EnvVar contiene la clave maestra (base64 o hex, 32 bytes).
	EnvVar = "SECRETBOX_MASTER_KEY"
	// Prefix marca un valor cifrado en la config.
	Prefix = "enc:"

	nonceSizeGCM      = 12  // AES-GCM nonce size recomendado (96 bits)
	requiredKeyLength = 32  // AES-256
	sep               = "|" // nonce|ciphertext
)

var (
	ErrNoKey     = fmt.Errorf("secretbox: %s no seteada; genere una clave con: openssl rand -base64 32", EnvVar)
	ErrBadFormat = errors.New("secretbox: formato inválido, esperado base64(nonce)|base64(ciphertext)")
)

// Box es seguro para uso concurrente.
type Box struct {
	aead cipher.AEAD
}

// New crea un Box con una clave de 32 bytes codificada en base64 (con o sin
// padding) o hex.
func New(key string) (*Box, error) {
	k, err := decodeKey(key)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, fmt.Errorf("secretbox: aes.NewCipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secretbox: cipher.NewGCM: %w", err)
	}
	return &Box{aead: aead}, nil
}

// FromEnv lee la clave de SECRETBOX_MASTER_KEY. Sin variable devuelve ErrNoKey.
func FromEnv() (*Box, error) {
	key := strings.TrimSpace(os.Getenv(EnvVar))
	if key == "" {
		return nil, ErrNoKey
	}
	return New(key)
}

func decodeKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if b, err := base64.StdEncoding.DecodeString(key); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(key); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if len(key) == 2*requiredKeyLength {
		if h, err := hex.DecodeString(key); err == nil {
			return h, nil
		}
	}
	return nil, fmt.Errorf("secretbox: la clave debe decodificar a %d bytes (base64 o hex)", requiredKeyLength)
}

// Encrypt devuelve base64(nonce)|base64(ciphertext), sin prefijo.
func (b *Box) Encrypt(plain string) (string, error) {
	nonce := make([]byte, nonceSizeGCM)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("secretbox: nonce: %w", err)
	}
	ct := b.aead.Seal(nil, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(nonce) + sep + base64.StdEncoding.EncodeToString(ct), nil
}

func (b *Box) Decrypt(boxed string) (string, error) {
	nonceB64, ctB64, ok := strings.Cut(boxed, sep)
	if !ok {
		return "", ErrBadFormat
	}
	nonce, err := base64.StdEncoding.DecodeString(nonceB64)
	if err != nil || len(nonce) != nonceSizeGCM {
		return "", ErrBadFormat
	}
	ct, err := base64.StdEncoding.DecodeString(ctB64)
	if err != nil {
		return "", ErrBadFormat
	}
	pt, err := b.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("secretbox: gcm auth/decrypt: %w", err)
	}
	return string(pt), nil
}

// IsSealed indica si v lleva el prefijo "enc:".
func IsSealed(v string) bool { return strings.HasPrefix(v, Prefix) }

// Seal cifra y agrega el prefijo.
func (b *Box) Seal(plain string) (string, error) {
	s, err := b.Encrypt(plain)
	if err != nil {
		return "", err
	}
	return Prefix + s, nil
}

// Open descifra v si tiene prefijo; si no, lo devuelve tal cual.
func (b *Box) Open(v string) (string, error) {
	if !IsSealed(v) {
		return v, nil
	}
	return b.Decrypt(strings.TrimPrefix(v, Prefix))
}
