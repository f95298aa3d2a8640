// Package otp genera y valida los códigos numéricos de un solo uso
// que se envían por e-mail para resetear la contraseña.
//
// El código nunca se persiste en claro: se guarda sha256(code) en hex y se
// compara en tiempo constante.
package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	DefaultDigits = 6
	DefaultTTL    = 10 * time.Minute
)

// Generator produce códigos nuevos. Los tests inyectan uno determinístico.
type Generator interface {
	Generate() (string, error)
}

// Random usa crypto/rand; el resultado siempre tiene Digits dígitos (zero-padded).
type Random struct {
	Digits int
}

func (r Random) Generate() (string, error) {
	d := r.Digits
	if d <= 0 || d > 9 {
		d = DefaultDigits
	}
	max := big.NewInt(1)
	for i := 0; i < d; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("otp: generate: %w", err)
	}
	return fmt.Sprintf("%0*d", d, n.Int64()), nil
}

// Hash devuelve sha256(code) en hex.
func Hash(code string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(code)))
	return hex.EncodeToString(sum[:])
}

// Matches compara code contra el digest guardado en tiempo constante.
func Matches(code, digest string) bool {
	if code == "" || digest == "" {
		return false
	}
	got := Hash(code)
	return subtle.ConstantTimeCompare([]byte(got), []byte(digest)) == 1
}

// Check: ambos campos presentes, now estrictamente antes de expires y el código coincide.
func Check(code string, digest *string, expires *time.Time, now time.Time) bool {
	if digest == nil || expires == nil {
		return false
	}
	if !now.Before(*expires) {
		return false
	}
	return Matches(code, *digest)
}
