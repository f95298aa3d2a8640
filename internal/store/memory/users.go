// Package memory implementa repository.UserRepository en memoria.
// Lo usamos en tests y con storage.driver=memory para desarrollo local.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tandem/internal/domain/repository"
)

// UserStore guarda usuarios por ID con un índice secundario por email.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]*repository.User
	byEmail map[string]string
	now     func() time.Time
}

// NewUserStore crea un store vacío.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*repository.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

var _ repository.UserRepository = (*UserStore)(nil)

func (s *UserStore) Create(_ context.Context, in repository.CreateUserInput) (*repository.User, error) {
	if in.Email == "" || in.PasswordHash == "" {
		return nil, repository.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[in.Email]; exists {
		return nil, repository.ErrConflict
	}

	now := s.now().UTC()
	u := &repository.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		FullName:     in.FullName,
		ProfilePic:   in.ProfilePic,
		Friends:      []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byID[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return clone(u), nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(s.byID[id]), nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (s *UserStore) SetResetOTP(_ context.Context, userID, otpHash string, expires time.Time) error {
	return s.mutate(userID, func(u *repository.User) {
		h, exp := otpHash, expires
		u.ResetPasswordOTP = &h
		u.ResetPasswordOTPExpires = &exp
	})
}

func (s *UserStore) ClearResetOTP(_ context.Context, userID, otpHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.ResetPasswordOTP == nil || *u.ResetPasswordOTP != otpHash {
		return nil
	}
	u.ResetPasswordOTP = nil
	u.ResetPasswordOTPExpires = nil
	u.UpdatedAt = s.now().UTC()
	return nil
}

func (s *UserStore) CompletePasswordReset(_ context.Context, userID, newHash string) error {
	if newHash == "" {
		return repository.ErrInvalidInput
	}
	return s.mutate(userID, func(u *repository.User) {
		u.PasswordHash = newHash
		u.ResetPasswordOTP = nil
		u.ResetPasswordOTPExpires = nil
	})
}

func (s *UserStore) Onboard(_ context.Context, userID string, in repository.OnboardInput) (*repository.User, error) {
	var out *repository.User
	err := s.mutate(userID, func(u *repository.User) {
		u.FullName = in.FullName
		u.Bio = in.Bio
		u.NativeLanguage = in.NativeLanguage
		u.LearningLanguage = in.LearningLanguage
		u.Location = in.Location
		u.IsOnboarded = true
		out = clone(u)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *UserStore) Ping(context.Context) error { return nil }

// mutate aplica fn bajo lock de escritura y actualiza UpdatedAt.
func (s *UserStore) mutate(userID string, fn func(u *repository.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = s.now().UTC()
	fn(u)
	return nil
}

// clone evita que el caller mute el estado interno a través de punteros.
func clone(u *repository.User) *repository.User {
	c := *u
	c.Friends = append([]string(nil), u.Friends...)
	if u.ResetPasswordOTP != nil {
		h := *u.ResetPasswordOTP
		c.ResetPasswordOTP = &h
	}
	if u.ResetPasswordOTPExpires != nil {
		e := *u.ResetPasswordOTPExpires
		c.ResetPasswordOTPExpires = &e
	}
	return &c
}
