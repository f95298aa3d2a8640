// Package health chequea las dependencias del proceso para /readyz.
package health

import (
	"context"
	"sort"
	"time"

	dto "github.com/dropDatabas3/tandem/internal/http/dto/health"
	"github.com/dropDatabas3/tandem/internal/observability/logger"
)

// Pinger es cualquier dependencia que sabe responder a un ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapta una función a Pinger (ej: redis.Client.Ping(ctx).Err).
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Service struct {
	checks  map[string]Pinger
	version string
	timeout time.Duration
	now     func() time.Time
}

// NewService recibe los componentes por nombre ("store", "cache", ...). Los nil se ignoran.
func NewService(version string, checks map[string]Pinger) *Service {
	c := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			c[name] = p
		}
	}
	return &Service{checks: c, version: version, timeout: 2 * time.Second, now: time.Now}
}

// Check pinguea cada componente; basta uno caído para "unavailable".
func (s *Service) Check(ctx context.Context) dto.Response {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := dto.Response{
		Status:     "ready",
		Components: make(map[string]dto.ComponentStatus, len(names)),
		Version:    s.version,
		Timestamp:  s.now().UTC(),
	}
	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.checks[name].Ping(cctx)
		cancel()
		if err != nil {
			logger.From(ctx).Warn("readiness check failed", logger.Component(name), logger.Err(err))
			resp.Components[name] = dto.ComponentStatus{Status: "error", Message: err.Error()}
			resp.Status = "unavailable"
			continue
		}
		resp.Components[name] = dto.ComponentStatus{Status: "ok"}
	}
	return resp
}
