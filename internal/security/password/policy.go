package password

import "errors"

// MaxBytes es el límite de bcrypt; más allá GenerateFromPassword falla.
const MaxBytes = 72

var (
	// ErrTooShort indica que la contraseña no alcanza Policy.MinLength.
	ErrTooShort = errors.New("password: too short")
	// ErrTooLong indica que la contraseña supera Policy.MaxBytes.
	ErrTooLong = errors.New("password: too long")
)

// Policy mide MinLength en runes y MaxBytes en bytes. MaxBytes 0 = sin tope.
type Policy struct {
	MinLength int
	MaxBytes  int
}

func (p Policy) Check(s string) error {
	if len([]rune(s)) < p.MinLength {
		return ErrTooShort
	}
	if p.MaxBytes > 0 && len(s) > p.MaxBytes {
		return ErrTooLong
	}
	return nil
}
