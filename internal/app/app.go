// Package app arma el proceso a partir de la config: store, cache, mailer,
// chat, services, controllers y el http.Server.
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/tandem/internal/chat"
	"github.com/dropDatabas3/tandem/internal/config"
	"github.com/dropDatabas3/tandem/internal/domain/repository"
	"github.com/dropDatabas3/tandem/internal/email"
	authctrl "github.com/dropDatabas3/tandem/internal/http/controllers/auth"
	chatctrl "github.com/dropDatabas3/tandem/internal/http/controllers/chat"
	healthctrl "github.com/dropDatabas3/tandem/internal/http/controllers/health"
	"github.com/dropDatabas3/tandem/internal/http/helpers"
	mw "github.com/dropDatabas3/tandem/internal/http/middlewares"
	"github.com/dropDatabas3/tandem/internal/http/router"
	authsvc "github.com/dropDatabas3/tandem/internal/http/services/auth"
	healthsvc "github.com/dropDatabas3/tandem/internal/http/services/health"
	jwtx "github.com/dropDatabas3/tandem/internal/jwt"
	"github.com/dropDatabas3/tandem/internal/metrics"
	"github.com/dropDatabas3/tandem/internal/observability/logger"
	"github.com/dropDatabas3/tandem/internal/rate"
	"github.com/dropDatabas3/tandem/internal/security/otp"
	"github.com/dropDatabas3/tandem/internal/security/password"
	"github.com/dropDatabas3/tandem/internal/store/memory"
	"github.com/dropDatabas3/tandem/internal/store/pg"
)

// App es el proceso cableado y listo para Run.
type App struct {
	Config  *config.Config
	Handler http.Handler
	Server  *http.Server
	Metrics *metrics.Metrics
	// Accounts queda expuesto para comandos fuera de HTTP (seed).
	Accounts *authsvc.Service

	closers []func()
}

// New construye todas las dependencias. Si falla a mitad de camino libera lo ya abierto.
func New(ctx context.Context, cfg *config.Config, version string) (_ *App, err error) {
	log := logger.From(ctx).With(logger.Component("app"))
	a := &App{Config: cfg, Metrics: metrics.New()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	users, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	var redis *rdb.Client
	if cfg.Cache.Kind == "redis" {
		redis = rdb.NewClient(&rdb.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		a.closers = append(a.closers, func() { _ = redis.Close() })
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		perr := redis.Ping(pctx).Err()
		cancel()
		if perr != nil {
			return nil, fmt.Errorf("app: redis ping: %w", perr)
		}
		log.Info("redis connected", logger.String("addr", cfg.Cache.Redis.Addr))
	}

	hasher, err := password.New(cfg.Security.HashAlgorithm, cfg.Security.BcryptCost)
	if err != nil {
		return nil, err
	}

	tokens, err := newIssuer(ctx, cfg)
	if err != nil {
		return nil, err
	}

	otpTTL := config.Dur(cfg.Auth.OTP.TTL, otp.DefaultTTL)
	mailer, err := email.NewMailer(newSender(ctx, cfg), cfg.Email.AppName, otpTTL)
	if err != nil {
		return nil, err
	}

	var syncer chat.ProfileSyncer = chat.Noop{}
	if s, serr := chat.NewStream(cfg.Chat.StreamAPIKey, cfg.Chat.StreamAPISecret); serr == nil {
		syncer = s
	} else {
		log.Warn("chat disabled: stream credentials not configured")
	}

	service := authsvc.NewService(authsvc.Deps{
		Users:    users,
		Hasher:   password.Multi{Primary: hasher},
		Policy:   password.Policy{MinLength: cfg.Security.PasswordMinLength},
		Tokens:   tokens,
		Notifier: mailer,
		Chat:     syncer,
		OTP:      otp.Random{Digits: cfg.Auth.OTP.Digits},
		OTPTTL:   otpTTL,
		Metrics:  a.Metrics,
	})

	a.Accounts = service

	cookie := helpers.CookieConfig{
		Name:     cfg.Auth.Session.CookieName,
		Domain:   cfg.Auth.Session.Domain,
		SameSite: cfg.Auth.Session.SameSite,
		Secure:   cfg.Auth.Session.Secure,
		TTL:      config.Dur(cfg.Auth.Session.TTL, jwtx.DefaultSessionTTL),
	}

	checks := map[string]healthsvc.Pinger{"store": users}
	if redis != nil {
		checks["cache"] = healthsvc.PingFunc(func(ctx context.Context) error { return redis.Ping(ctx).Err() })
	}

	proxies, err := mw.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	deps := router.Deps{
		Auth:        authctrl.NewController(service, cookie, a.Metrics),
		Chat:        chatctrl.NewTokenController(service),
		Health:      healthctrl.NewController(healthsvc.NewService(version, checks)),
		Tokens:      tokens,
		CookieName:  cookie.Name,
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
		Metrics:     a.Metrics,

		TrustedProxies: proxies,
	}
	if cfg.Rate.Enabled {
		f := rate.Factory{Redis: redis, Prefix: cfg.Cache.Redis.Prefix + "rl:"}
		deps.LoginLimiter = f.New(rate.Rule{
			Name: "login", Max: cfg.Rate.Login.Limit, Window: config.Dur(cfg.Rate.Login.Window, time.Minute),
		})
		deps.ForgotLimiter = f.New(rate.Rule{
			Name: "forgot", Max: cfg.Rate.Forgot.Limit, Window: config.Dur(cfg.Rate.Forgot.Window, 10*time.Minute),
		})
	}

	a.Handler = router.New(deps)
	a.Server = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return a, nil
}

func (a *App) openStore(ctx context.Context) (repository.UserRepository, error) {
	cfg := a.Config
	if cfg.Storage.Driver != "postgres" {
		logger.From(ctx).Warn("using in-memory store, data is lost on restart")
		return memory.NewUserStore(), nil
	}

	pool, err := pg.Connect(ctx, pg.PoolConfig{
		DSN:             cfg.Storage.DSN,
		MaxConns:        cfg.Storage.Postgres.MaxOpenConns,
		MinConns:        cfg.Storage.Postgres.MaxIdleConns,
		ConnMaxLifetime: config.Dur(cfg.Storage.Postgres.ConnMaxLifetime, 0),
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pool.Close)

	if cfg.Storage.Migrate {
		if err := pg.Migrate(ctx, pool); err != nil {
			return nil, err
		}
	}
	if err := a.Metrics.RegisterPool(pool); err != nil {
		return nil, err
	}
	return pg.NewUserStore(pool), nil
}

// newIssuer usa un secreto efímero fuera de prod si no hay JWT_SECRET_KEY configurado.
func newIssuer(ctx context.Context, cfg *config.Config) (*jwtx.Issuer, error) {
	secret := cfg.Auth.JWTSecret
	if strings.TrimSpace(secret) == "" && !cfg.IsProd() {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, err
		}
		secret = hex.EncodeToString(b)
		logger.From(ctx).Warn("JWT_SECRET_KEY not set, using an ephemeral secret; sessions will not survive a restart")
	}
	return jwtx.NewIssuer(secret, cfg.Auth.Issuer, config.Dur(cfg.Auth.Session.TTL, jwtx.DefaultSessionTTL))
}

// newSender usa SMTP si hay credenciales; si no, loguea los mails (sólo útil en dev).
func newSender(ctx context.Context, cfg *config.Config) email.Sender {
	if cfg.SMTP.Username == "" || cfg.SMTP.Password == "" {
		logger.From(ctx).Warn("smtp credentials not configured, emails will only be logged")
		return email.LogSender{}
	}
	from := cfg.SMTP.From
	if from == "" {
		from = cfg.SMTP.Username
	}
	s := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, from, cfg.SMTP.Username, cfg.SMTP.Password)
	s.FromName = cfg.Email.FromName
	s.TLSMode = cfg.SMTP.TLS
	s.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
	return s
}

// Run sirve HTTP hasta que ctx se cancela y después hace shutdown ordenado.
func (a *App) Run(ctx context.Context) error {
	log := logger.From(ctx).With(logger.Component("http"))
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("listening", logger.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := config.Dur(a.Config.Server.ShutdownTimeout, 10*time.Second)
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		log.Info("shutting down", logger.Duration(timeout))
		return a.Server.Shutdown(sctx)
	})

	err := g.Wait()
	a.Close()
	return err
}

// Close libera pool y cliente redis en orden inverso de apertura.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
