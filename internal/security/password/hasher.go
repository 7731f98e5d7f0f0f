// Package password implementa el hash de credenciales del resource owner.
//
// El hash es argon2id determinístico sobre (password, salt); el salt se
// deriva del user id con SaltForUser, por lo que el store solo persiste el
// digest.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"strconv"

	"golang.org/x/crypto/argon2"
)

// ErrInvalidCredential se devuelve cuando password o salt están vacíos.
var ErrInvalidCredential = errors.New("password: empty password or salt")

type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
}

var Default = Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, KeyLen: 32}

// Hasher es seguro para uso concurrente: no tiene estado mutable.
type Hasher struct {
	p Params
}

// NewHasher crea un Hasher; campos en cero toman el valor de Default.
func NewHasher(p Params) *Hasher {
	if p.Memory == 0 {
		p.Memory = Default.Memory
	}
	if p.Time == 0 {
		p.Time = Default.Time
	}
	if p.Parallelism == 0 {
		p.Parallelism = Default.Parallelism
	}
	if p.KeyLen == 0 {
		p.KeyLen = Default.KeyLen
	}
	return &Hasher{p: p}
}

func (h *Hasher) Params() Params { return h.p }

// Hash deriva el digest de password con salt.
func (h *Hasher) Hash(password string, salt []byte) ([]byte, error) {
	if password == "" || len(salt) == 0 {
		return nil, ErrInvalidCredential
	}
	return argon2.IDKey([]byte(password), salt, h.p.Time, h.p.Memory, h.p.Parallelism, h.p.KeyLen), nil
}

// Verify recalcula el digest y lo compara en tiempo constante.
func (h *Hasher) Verify(password string, salt, expected []byte) (bool, error) {
	dk, err := h.Hash(password, salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(dk, expected) == 1, nil
}

const saltLabel = "authcore/user-salt/v1:"

// SaltForUser deriva el salt de un usuario a partir de su id.
func SaltForUser(userID int64) []byte {
	sum := sha256.Sum256([]byte(saltLabel + strconv.FormatInt(userID, 10)))
	return sum[:]
}
