// Package password agrupa los hashers de contraseñas y la política mínima.
package password

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmpty se devuelve al intentar hashear una contraseña vacía.
var ErrEmpty = errors.New("password: empty")

// Hasher es lo que el controlador de auth recibe inyectado.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) bool
}

// New devuelve el hasher para el algoritmo configurado ("bcrypt" o "argon2id").
func New(algo string, bcryptCost int) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(algo)) {
	case "", "bcrypt":
		return Bcrypt{Cost: bcryptCost}, nil
	case "argon2id", "argon2":
		return Argon2id{Params: Default}, nil
	default:
		return nil, fmt.Errorf("password: unknown algorithm %q", algo)
	}
}

// Multi hashea con Primary y verifica contra cualquier formato conocido.
// Sirve para cambiar de algoritmo sin invalidar hashes viejos.
type Multi struct {
	Primary Hasher
}

func (m Multi) Hash(plain string) (string, error) { return m.Primary.Hash(plain) }

func (m Multi) Verify(plain, encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return Argon2id{}.Verify(plain, encoded)
	case strings.HasPrefix(encoded, "$2"):
		return Bcrypt{}.Verify(plain, encoded)
	default:
		return false
	}
}
