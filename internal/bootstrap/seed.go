// Package bootstrap crea datos iniciales (usuarios demo) pasando por el service de auth,
// así se respetan las mismas reglas de validación y hashing que la API.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/tandem/internal/domain/repository"
	authsvc "github.com/dropDatabas3/tandem/internal/http/services/auth"
	"github.com/dropDatabas3/tandem/internal/observability/logger"
)

// Accounts es lo que necesita el seed del service de auth.
type Accounts interface {
	Signup(ctx context.Context, in authsvc.SignupInput) (*authsvc.SessionResult, error)
	Onboard(ctx context.Context, userID string, in authsvc.OnboardInput) (*repository.User, error)
}

// SeedUser describe un usuario a crear. Si Profile no es nil, además se completa el onboarding.
type SeedUser struct {
	Email    string
	Password string
	FullName string
	Profile  *authsvc.OnboardInput
}

// SeedUsers crea los usuarios que no existan. Devuelve cuántos creó.
// Un e-mail ya registrado se saltea sin error, así el comando es re-ejecutable.
func SeedUsers(ctx context.Context, accounts Accounts, users []SeedUser) (int, error) {
	log := logger.From(ctx).With(logger.Component("bootstrap"))
	created := 0
	for _, su := range users {
		res, err := accounts.Signup(ctx, authsvc.SignupInput{
			Email:    su.Email,
			Password: su.Password,
			FullName: su.FullName,
		})
		if errors.Is(err, authsvc.ErrEmailTaken) {
			log.Info("seed user already exists, skipping", logger.Email(su.Email))
			continue
		}
		if err != nil {
			return created, fmt.Errorf("bootstrap: seed %s: %w", logger.MaskEmail(su.Email), err)
		}
		if su.Profile != nil {
			if _, err := accounts.Onboard(ctx, res.User.ID, *su.Profile); err != nil {
				return created, fmt.Errorf("bootstrap: onboard %s: %w", logger.MaskEmail(su.Email), err)
			}
		}
		created++
		log.Info("seed user created", logger.UserID(res.User.ID))
	}
	return created, nil
}
