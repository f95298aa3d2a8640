package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/tandem/internal/audit"
	"github.com/dropDatabas3/tandem/internal/chat"
	"github.com/dropDatabas3/tandem/internal/domain/repository"
	"github.com/dropDatabas3/tandem/internal/observability/logger"
	"github.com/dropDatabas3/tandem/internal/validation"
)

// Signup crea la cuenta, sincroniza el chat (best-effort) y emite sesión.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*SessionResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Signup"))

	in.Email = normEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)

	if err := requireFields("email", in.Email, "password", in.Password, "fullName", in.FullName); err != nil {
		return nil, err
	}
	if err := s.checkPassword(in.Password); err != nil {
		return nil, err
	}
	if !validation.ValidEmail(in.Email) {
		return nil, ErrInvalidEmail
	}

	if _, err := s.deps.Users.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("auth: signup lookup: %w", err)
	}

	hash, err := s.deps.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	u, err := s.deps.Users.Create(ctx, repository.CreateUserInput{
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		ProfilePic:   s.avatarURL(),
	})
	if err != nil {
		// carrera entre dos signups con el mismo e-mail
		if repository.IsConflict(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("auth: create user: %w", err)
	}
	log = log.With(logger.UserID(u.ID))
	log.Info("user created")
	audit.Log(ctx, audit.UserSignup, logger.UserID(u.ID), logger.Email(u.Email))

	s.syncProfile(ctx, u)
	return s.issue(ctx, u)
}

// Login responde ErrInvalidCredentials tanto para e-mail desconocido como para password incorrecto.
func (s *Service) Login(ctx context.Context, in LoginInput) (*SessionResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Login"))

	in.Email = normEmail(in.Email)
	if err := requireFields("email", in.Email, "password", in.Password); err != nil {
		return nil, err
	}

	u, err := s.deps.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			s.burnHash(in.Password)
			log.Debug("login unknown email", logger.Email(in.Email))
			audit.Log(ctx, audit.LoginFailed, logger.Email(in.Email), audit.Reason("unknown_email"))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: login lookup: %w", err)
	}
	if !s.deps.Hasher.Verify(in.Password, u.PasswordHash) {
		log.Debug("login bad password", logger.UserID(u.ID))
		audit.Log(ctx, audit.LoginFailed, logger.UserID(u.ID), audit.Reason("bad_password"))
		return nil, ErrInvalidCredentials
	}
	audit.Log(ctx, audit.LoginSucceeded, logger.UserID(u.ID))

	s.syncProfile(ctx, u)
	return s.issue(ctx, u)
}

// Onboard completa el perfil del usuario autenticado.
func (s *Service) Onboard(ctx context.Context, userID string, in OnboardInput) (*repository.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Bio = strings.TrimSpace(in.Bio)
	in.NativeLanguage = strings.TrimSpace(in.NativeLanguage)
	in.LearningLanguage = strings.TrimSpace(in.LearningLanguage)
	in.Location = strings.TrimSpace(in.Location)

	if err := requireFields(
		"fullName", in.FullName,
		"nativeLanguage", in.NativeLanguage,
		"learningLanguage", in.LearningLanguage,
		"bio", in.Bio,
		"location", in.Location,
	); err != nil {
		return nil, err
	}

	u, err := s.deps.Users.Onboard(ctx, userID, repository.OnboardInput{
		FullName:         in.FullName,
		Bio:              in.Bio,
		NativeLanguage:   in.NativeLanguage,
		LearningLanguage: in.LearningLanguage,
		Location:         in.Location,
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("auth: onboard: %w", err)
	}
	logger.From(ctx).Info("user onboarded", logger.Op("Onboard"), logger.UserID(u.ID))
	audit.Log(ctx, audit.UserOnboarded, logger.UserID(u.ID))

	s.syncProfile(ctx, u)
	return u, nil
}

func (s *Service) Me(ctx context.Context, userID string) (*repository.User, error) {
	u, err := s.deps.Users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("auth: me: %w", err)
	}
	return u, nil
}

// ChatToken emite el token que el cliente usa contra Stream.
func (s *Service) ChatToken(ctx context.Context, userID string) (string, error) {
	if _, err := s.Me(ctx, userID); err != nil {
		return "", err
	}
	tok, err := s.deps.Chat.CreateToken(userID)
	if err != nil {
		if errors.Is(err, chat.ErrUnavailable) {
			return "", ErrChatUnavailable
		}
		return "", fmt.Errorf("auth: chat token: %w", err)
	}
	return tok, nil
}
