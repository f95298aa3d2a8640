// Package rate implementa rate limiting fixed-window por clave
// (normalmente ruta + IP). Redis para despliegues con varias réplicas,
// memoria para dev o instancia única.
package rate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

func windowKey(prefix, key string, winStart time.Time) string {
	return fmt.Sprintf("%s%s:%d", prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())
}

func result(hits, max int64, retry time.Duration) Result {
	remaining := max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{Allowed: hits <= max, Remaining: remaining, CurrentHits: hits}
	if !res.Allowed {
		res.RetryAfter = retry
	}
	return res
}

// RedisLimiter: fixed window sencillo (INCR + EXPIRE).
type RedisLimiter struct {
	Client *rdb.Client
	Prefix string
	Max    int64
	Window time.Duration
	Now    func() time.Time
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{Client: client, Prefix: prefix, Max: int64(max), Window: window, Now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.Now().UTC()
	winStart := now.Truncate(l.Window)
	redisKey := windowKey(l.Prefix, key, winStart)

	hits, err := l.Client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Result{}, fmt.Errorf("rate: redis: %w", err)
	}
	// set expiry on first hit
	if hits == 1 {
		_ = l.Client.Expire(ctx, redisKey, l.Window).Err()
	}

	retry := winStart.Add(l.Window).Sub(now)
	if retry <= 0 {
		retry = time.Duration(math.Ceil(l.Window.Seconds())) * time.Second
	}
	return result(hits, l.Max, retry), nil
}

// MemoryLimiter usa go-cache; cada ventana es una key que expira sola.
type MemoryLimiter struct {
	c      *gocache.Cache
	Prefix string
	Max    int64
	Window time.Duration
	Now    func() time.Time
}

func NewMemoryLimiter(prefix string, max int, window time.Duration) *MemoryLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		Prefix: prefix,
		Max:    int64(max),
		Window: window,
		Now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.Now().UTC()
	winStart := now.Truncate(l.Window)
	k := windowKey(l.Prefix, key, winStart)

	// Add falla si otro request ya creó la ventana; en ambos casos incrementamos
	_ = l.c.Add(k, int64(0), l.Window)
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		return Result{}, fmt.Errorf("rate: memory: %w", err)
	}
	return result(hits, l.Max, winStart.Add(l.Window).Sub(now)), nil
}

// Rule es un límite nombrado (ej: "login": 10 req / 1m).
type Rule struct {
	Name   string
	Max    int
	Window time.Duration
}

// Factory crea limiters para cada regla sobre el backend configurado.
type Factory struct {
	Redis  *rdb.Client // nil => memoria
	Prefix string
}

func (f Factory) New(r Rule) Limiter {
	prefix := f.Prefix + r.Name + ":"
	if f.Redis != nil {
		return NewRedisLimiter(f.Redis, prefix, r.Max, r.Window)
	}
	return NewMemoryLimiter(prefix, r.Max, r.Window)
}
