// Package router arma el árbol de rutas chi de la API.
package router

import (
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/tandem/internal/http/controllers/auth"
	chatctrl "github.com/dropDatabas3/tandem/internal/http/controllers/chat"
	healthctrl "github.com/dropDatabas3/tandem/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/tandem/internal/http/errors"
	mw "github.com/dropDatabas3/tandem/internal/http/middlewares"
	"github.com/dropDatabas3/tandem/internal/metrics"
	"github.com/dropDatabas3/tandem/internal/rate"
)

// Deps contiene todo lo que necesita el router. Limiters nil desactivan el rate limit.
type Deps struct {
	Auth   *authctrl.Controller
	Chat   *chatctrl.TokenController
	Health *healthctrl.Controller

	Tokens      mw.TokenParser
	CookieName  string
	CORSOrigins []string
	// proxies cuyo X-Forwarded-For se respeta
	TrustedProxies []netip.Prefix

	LoginLimiter  rate.Limiter
	ForgotLimiter rate.Limiter

	Metrics *metrics.Metrics
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithClientIP(d.TrustedProxies),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithMetrics(d.Metrics),
		mw.WithSecurityHeaders(),
		mw.WithCORS(d.CORSOrigins),
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	r.Get("/healthz", d.Health.Live)
	r.Get("/readyz", d.Health.Ready)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	requireAuth := mw.RequireAuth(d.Tokens, d.CookieName)
	loginLimit := mw.WithRateLimit("login", d.LoginLimiter, mw.IPKey, d.Metrics)
	forgotLimit := mw.WithRateLimit("forgot", d.ForgotLimiter, mw.IPKey, d.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.WithNoStore())

		r.Route("/auth", func(r chi.Router) {
			a := d.Auth
			r.Post("/signup", a.Signup)
			r.Post("/logout", a.Logout)

			// login, verify-otp y reset-password comparten ventana
			post(r, "/login", a.Login, loginLimit)
			post(r, "/verify-otp", a.VerifyOTP, loginLimit)
			post(r, "/reset-password", a.ResetPassword, loginLimit)
			post(r, "/forgot-password", a.ForgotPassword, forgotLimit)
			post(r, "/resend-otp", a.ResendOTP, forgotLimit)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/onboarding", a.Onboard)
				r.Get("/me", a.Me)
			})
		})

		r.With(requireAuth).Get("/chat/token", d.Chat.Token)
	})
	return r
}

func post(r chi.Router, pattern string, h http.HandlerFunc, mws ...mw.Middleware) {
	r.Method(http.MethodPost, pattern, mw.Chain(h, mws...))
}
