// Package chat sincroniza perfiles con Stream Chat y emite tokens de cliente.
// La sincronización es best-effort: nunca falla el flujo que la invoca.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	stream "github.com/GetStream/stream-chat-go/v6"

	"github.com/dropDatabas3/tandem/internal/observability/logger"
)

// ErrUnavailable: chat no configurado (faltan API key/secret).
var ErrUnavailable = errors.New("chat: unavailable")

// Profile es lo que se replica en Stream.
type Profile struct {
	ID    string
	Name  string
	Image string
}

// SyncResult describe el resultado de un upsert; el caller sólo lo loguea.
type SyncResult struct {
	Synced  bool
	Skipped bool // chat deshabilitado
	Err     error
}

// ProfileSyncer es la dependencia que consume el servicio de auth.
type ProfileSyncer interface {
	UpsertProfile(ctx context.Context, p Profile) SyncResult
	CreateToken(userID string) (string, error)
}

// streamAPI es el subconjunto de *stream.Client que usamos.
type streamAPI interface {
	UpsertUser(ctx context.Context, user *stream.User) (*stream.UpsertUserResponse, error)
	CreateToken(userID string, expire time.Time, issuedAt ...time.Time) (string, error)
}

// Stream implementa ProfileSyncer contra Stream Chat.
type Stream struct {
	api     streamAPI
	timeout time.Duration
}

// NewStream arma el cliente. Sin credenciales devuelve ErrUnavailable y el
// caller decide usar Noop.
func NewStream(apiKey, apiSecret string) (*Stream, error) {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(apiSecret) == "" {
		return nil, ErrUnavailable
	}
	c, err := stream.NewClient(apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("chat: stream client: %w", err)
	}
	return &Stream{api: c, timeout: 5 * time.Second}, nil
}

func (s *Stream) UpsertProfile(ctx context.Context, p Profile) SyncResult {
	if p.ID == "" {
		return SyncResult{Err: errors.New("chat: empty user id")}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.api.UpsertUser(ctx, &stream.User{ID: p.ID, Name: p.Name, Image: p.Image})
	if err != nil {
		logger.From(ctx).Warn("stream upsert failed",
			logger.Component("chat.stream"),
			logger.UserID(p.ID),
			logger.Err(err),
		)
		return SyncResult{Err: err}
	}
	return SyncResult{Synced: true}
}

// CreateToken emite un token sin expiración, como los que espera el SDK de cliente.
func (s *Stream) CreateToken(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("chat: empty user id")
	}
	tok, err := s.api.CreateToken(userID, time.Time{})
	if err != nil {
		return "", fmt.Errorf("chat: create token: %w", err)
	}
	return tok, nil
}

// Noop se usa cuando Stream no está configurado.
type Noop struct{}

func (Noop) UpsertProfile(context.Context, Profile) SyncResult { return SyncResult{Skipped: true} }
func (Noop) CreateToken(string) (string, error)                { return "", ErrUnavailable }
