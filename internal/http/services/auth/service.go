package auth

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/tandem/internal/chat"
	"github.com/dropDatabas3/tandem/internal/domain/repository"
	"github.com/dropDatabas3/tandem/internal/metrics"
	"github.com/dropDatabas3/tandem/internal/observability/logger"
	"github.com/dropDatabas3/tandem/internal/security/otp"
	"github.com/dropDatabas3/tandem/internal/security/password"
)

const avatarURLFormat = "https://avatar.iran.liara.run/public/%d.png"

// Deps agrupa las dependencias del service. Users, Hasher, Tokens y Notifier son obligatorias.
type Deps struct {
	Users    repository.UserRepository
	Hasher   password.Hasher
	Policy   password.Policy // default MinLength 6, MaxBytes 72
	Tokens   TokenIssuer
	Notifier Notifier
	Chat     chat.ProfileSyncer // nil = chat.Noop
	OTP      otp.Generator      // nil = otp.Random{Digits: 6}
	OTPTTL   time.Duration      // default 10m
	Now      func() time.Time
	// AvatarIndex devuelve un entero en [1,100].
	AvatarIndex func() int
	Metrics     *metrics.Metrics
}

type Service struct {
	deps Deps

	dummyOnce sync.Once
	dummyHash string
}

func NewService(deps Deps) *Service {
	if deps.Policy.MinLength == 0 {
		deps.Policy.MinLength = 6
	}
	if deps.Policy.MaxBytes == 0 {
		deps.Policy.MaxBytes = password.MaxBytes
	}
	if deps.Chat == nil {
		deps.Chat = chat.Noop{}
	}
	if deps.OTP == nil {
		deps.OTP = otp.Random{Digits: otp.DefaultDigits}
	}
	if deps.OTPTTL <= 0 {
		deps.OTPTTL = otp.DefaultTTL
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.AvatarIndex == nil {
		deps.AvatarIndex = func() int { return rand.IntN(100) + 1 }
	}
	return &Service{deps: deps}
}

func (s *Service) avatarURL() string {
	n := s.deps.AvatarIndex()
	if n < 1 || n > 100 {
		n = 1 + ((n%100)+100)%100
	}
	return fmt.Sprintf(avatarURLFormat, n)
}

// burnHash iguala el costo de un login con e-mail desconocido al de uno con password incorrecto.
func (s *Service) burnHash(plain string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.deps.Hasher.Hash("tandem-dummy-password")
	})
	if s.dummyHash != "" {
		_ = s.deps.Hasher.Verify(plain, s.dummyHash)
	}
}

// syncProfile replica el perfil en el chat. Nunca falla la operación.
func (s *Service) syncProfile(ctx context.Context, u *repository.User) {
	res := s.deps.Chat.UpsertProfile(ctx, chat.Profile{ID: u.ID, Name: u.FullName, Image: u.ProfilePic})
	log := logger.From(ctx).With(logger.Component("auth.chat"), logger.UserID(u.ID))
	switch {
	case res.Skipped:
		s.deps.Metrics.ChatSync("skipped")
	case res.Err != nil:
		log.Warn("chat profile sync failed", logger.Err(res.Err))
		s.deps.Metrics.ChatSync("error")
	default:
		log.Debug("chat profile synced")
		s.deps.Metrics.ChatSync("synced")
	}
}

func (s *Service) issue(ctx context.Context, u *repository.User) (*SessionResult, error) {
	tok, exp, err := s.deps.Tokens.Issue(u.ID)
	if err != nil {
		logger.From(ctx).Error("token issue failed", logger.UserID(u.ID), logger.Err(err))
		return nil, fmt.Errorf("auth: issue token: %w", err)
	}
	return &SessionResult{User: u, Token: tok, ExpiresAt: exp}, nil
}

func (s *Service) checkPassword(plain string) error {
	switch err := s.deps.Policy.Check(plain); {
	case errors.Is(err, password.ErrTooLong):
		return ErrPasswordTooLong
	case err != nil:
		return ErrPasswordTooShort
	}
	return nil
}

func normEmail(s string) string { return strings.TrimSpace(s) }
