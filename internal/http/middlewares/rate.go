package middlewares

import (
	"math"
	"net/http"
	"strconv"

	httperrors "github.com/dropDatabas3/tandem/internal/http/errors"
	"github.com/dropDatabas3/tandem/internal/metrics"
	"github.com/dropDatabas3/tandem/internal/observability/logger"
	"github.com/dropDatabas3/tandem/internal/rate"
)

// RateKeyFunc define cómo generar la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// IPKey limita por IP del cliente tal como la resolvió WithClientIP.
func IPKey(r *http.Request) string { return clientIP(r) }

// WithRateLimit aplica el limiter de la regla rule. Si el backend falla, deja pasar (fail-open).
// Un limiter nil desactiva el middleware.
func WithRateLimit(rule string, limiter rate.Limiter, keyFn RateKeyFunc, m *metrics.Metrics) Middleware {
	if keyFn == nil {
		keyFn = IPKey
	}
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), keyFn(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable, allowing request",
					logger.String("rule", rule), logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				secs := int(math.Ceil(res.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				m.Limited(rule)
				httperrors.WriteError(w, httperrors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
