// Package auth implementa el flujo de autenticación: signup, login,
// reset de contraseña por OTP y onboarding.
//
// El service no conoce HTTP: recibe inputs planos, devuelve resultados o
// errores sentinela que el controller traduce.
package auth

import (
	"context"
	"time"

	"github.com/dropDatabas3/tandem/internal/domain/repository"
)

// Notifier entrega los e-mails del flujo de reset.
type Notifier interface {
	SendOTP(ctx context.Context, to, fullName, code string) error
	SendResetSuccess(ctx context.Context, to, fullName string) error
}

// TokenIssuer emite el token de sesión.
type TokenIssuer interface {
	Issue(userID string) (token string, expiresAt time.Time, err error)
}

type SignupInput struct {
	Email    string
	Password string
	FullName string
}

type LoginInput struct {
	Email    string
	Password string
}

type ResetPasswordInput struct {
	Email       string
	OTP         string
	NewPassword string
}

type OnboardInput struct {
	FullName         string
	Bio              string
	NativeLanguage   string
	LearningLanguage string
	Location         string
}

// SessionResult es la salida de Signup y Login.
type SessionResult struct {
	User      *repository.User
	Token     string
	ExpiresAt time.Time
}

// OTPRequestResult: Sent=false cuando el e-mail no está registrado.
// El controller responde igual en ambos casos.
type OTPRequestResult struct {
	Sent bool
}
