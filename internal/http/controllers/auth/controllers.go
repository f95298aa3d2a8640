// Package auth contiene los controllers de /api/auth.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/dropDatabas3/tandem/internal/domain/repository"
	httperrors "github.com/dropDatabas3/tandem/internal/http/errors"
	"github.com/dropDatabas3/tandem/internal/http/helpers"
	svc "github.com/dropDatabas3/tandem/internal/http/services/auth"
	"github.com/dropDatabas3/tandem/internal/metrics"
	"github.com/dropDatabas3/tandem/internal/observability/logger"
)

// Service es el subconjunto de services/auth que usan los controllers.
type Service interface {
	Signup(ctx context.Context, in svc.SignupInput) (*svc.SessionResult, error)
	Login(ctx context.Context, in svc.LoginInput) (*svc.SessionResult, error)
	ForgotPassword(ctx context.Context, email string) (*svc.OTPRequestResult, error)
	ResendOTP(ctx context.Context, email string) (*svc.OTPRequestResult, error)
	VerifyOTP(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, in svc.ResetPasswordInput) error
	Onboard(ctx context.Context, userID string, in svc.OnboardInput) (*repository.User, error)
	Me(ctx context.Context, userID string) (*repository.User, error)
}

// Controller agrupa los handlers de auth; comparten service, cookie y métricas.
type Controller struct {
	svc     Service
	cookie  helpers.CookieConfig
	metrics *metrics.Metrics
}

func NewController(s Service, cookie helpers.CookieConfig, m *metrics.Metrics) *Controller {
	if cookie.Name == "" {
		cookie.Name = "jwt"
	}
	return &Controller{svc: s, cookie: cookie, metrics: m}
}

// toAppError traduce los sentinelas del service.
func toAppError(err error) *httperrors.AppError {
	var missing *svc.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		return httperrors.ErrMissingFields.WithMissingFields(missing.Fields)
	case errors.Is(err, svc.ErrMissingFields):
		return httperrors.ErrMissingFields
	case errors.Is(err, svc.ErrInvalidEmail):
		return httperrors.ErrInvalidFormat
	case errors.Is(err, svc.ErrPasswordTooShort):
		return httperrors.ErrPasswordTooShort
	case errors.Is(err, svc.ErrPasswordTooLong):
		return httperrors.ErrPasswordTooLong
	case errors.Is(err, svc.ErrEmailTaken):
		return httperrors.ErrEmailAlreadyInUse
	case errors.Is(err, svc.ErrInvalidCredentials):
		return httperrors.ErrInvalidCredentials
	case errors.Is(err, svc.ErrInvalidOTP):
		return httperrors.ErrInvalidOTP
	case errors.Is(err, svc.ErrUserNotFound):
		return httperrors.ErrUserNotFound
	case errors.Is(err, svc.ErrDelivery):
		return httperrors.ErrEmailDeliveryFailed.WithCause(err)
	case errors.Is(err, svc.ErrChatUnavailable):
		return httperrors.ErrServiceUnavailable.WithCause(err)
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}

// fail mapea el error, lo loguea según severidad, registra la métrica y responde.
func (c *Controller) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	appErr := toAppError(err)
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op(op))
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log.Error("auth operation failed", logger.String("code", appErr.Code), logger.Err(err))
	} else {
		log.Debug("auth operation rejected", logger.String("code", appErr.Code), logger.Err(err))
	}
	c.metrics.AuthEvent(op, appErr.Code)
	httperrors.WriteError(w, appErr)
}

func (c *Controller) ok(op string) { c.metrics.AuthEvent(op, "ok") }
