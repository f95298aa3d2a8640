package rate

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func exercise(t *testing.T, l Limiter, setNow func(time.Time)) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 10, 0, time.UTC)
	setNow(base)

	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "login|10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "hit %d", i)
		assert.Equal(t, int64(3-i), res.Remaining)
	}

	res, err := l.Allow(ctx, "login|10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 50*time.Second, res.RetryAfter)

	// otra clave no comparte contador
	res, err = l.Allow(ctx, "login|10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	// ventana siguiente
	setNow(base.Add(time.Minute))
	res, err = l.Allow(ctx, "login|10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRedisLimiter(t *testing.T) {
	l := NewRedisLimiter(newRedis(t), "test:", 3, time.Minute)
	exercise(t, l, func(now time.Time) { l.Now = func() time.Time { return now } })
}

func TestMemoryLimiter(t *testing.T) {
	l := NewMemoryLimiter("test:", 3, time.Minute)
	exercise(t, l, func(now time.Time) { l.Now = func() time.Time { return now } })
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	l := NewMemoryLimiter("", 50, time.Hour)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := l.Allow(context.Background(), "k")
			if err == nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestFactory(t *testing.T) {
	assert.IsType(t, &MemoryLimiter{}, Factory{}.New(Rule{Name: "x", Max: 1, Window: time.Second}))
	assert.IsType(t, &RedisLimiter{}, Factory{Redis: newRedis(t)}.New(Rule{Name: "x", Max: 1, Window: time.Second}))
}
