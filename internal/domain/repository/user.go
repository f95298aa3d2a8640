package repository

import (
	"context"
	"time"
)

// User es el único agregado que maneja el core de autenticación.
type User struct {
	ID               string
	Email            string
	PasswordHash     string
	FullName         string
	Bio              string
	ProfilePic       string
	NativeLanguage   string
	LearningLanguage string
	Location         string
	IsOnboarded      bool
	Friends          []string

	// ResetPasswordOTP guarda el digest SHA-256 (hex) del código, nunca el código.
	ResetPasswordOTP        *string
	ResetPasswordOTPExpires *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPendingOTP reporta si ambos campos del OTP están seteados.
func (u *User) HasPendingOTP() bool {
	return u != nil && u.ResetPasswordOTP != nil && u.ResetPasswordOTPExpires != nil
}

// CreateUserInput contiene los datos para crear un usuario.
// PasswordHash ya viene hasheado: el store no hashea.
type CreateUserInput struct {
	Email        string
	PasswordHash string
	FullName     string
	ProfilePic   string
}

// OnboardInput son los campos que completa el usuario en el onboarding.
type OnboardInput struct {
	FullName         string
	Bio              string
	NativeLanguage   string
	LearningLanguage string
	Location         string
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// Create crea un usuario. Retorna ErrConflict si el email ya existe.
	Create(ctx context.Context, in CreateUserInput) (*User, error)

	// GetByEmail busca por email exacto. Retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID busca por ID. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*User, error)

	// SetResetOTP pisa cualquier OTP previo con el nuevo digest y expiración.
	SetResetOTP(ctx context.Context, userID, otpHash string, expires time.Time) error

	// ClearResetOTP deja ambos campos del OTP en NULL sólo si el digest guardado sigue
	// siendo otpHash; si otro request ya lo pisó no hace nada. ErrNotFound si el usuario no existe.
	ClearResetOTP(ctx context.Context, userID, otpHash string) error

	// CompletePasswordReset reemplaza el hash y limpia el OTP en una sola escritura.
	CompletePasswordReset(ctx context.Context, userID, newHash string) error

	// Onboard completa el perfil y marca is_onboarded. Retorna ErrNotFound si no existe.
	Onboard(ctx context.Context, userID string, in OnboardInput) (*User, error)

	// Ping verifica que el backend responda (readiness).
	Ping(ctx context.Context) error
}
