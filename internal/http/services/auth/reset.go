package auth

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/tandem/internal/audit"
	"github.com/dropDatabas3/tandem/internal/domain/repository"
	"github.com/dropDatabas3/tandem/internal/observability/logger"
	"github.com/dropDatabas3/tandem/internal/security/otp"
	"github.com/dropDatabas3/tandem/internal/validation"
)

// ForgotPassword genera y envía un OTP. Si el e-mail no existe devuelve Sent=false sin error.
func (s *Service) ForgotPassword(ctx context.Context, email string) (*OTPRequestResult, error) {
	return s.requestOTP(ctx, "ForgotPassword", email)
}

// ResendOTP pisa cualquier OTP previo con uno nuevo. Mismas reglas que ForgotPassword.
func (s *Service) ResendOTP(ctx context.Context, email string) (*OTPRequestResult, error) {
	return s.requestOTP(ctx, "ResendOTP", email)
}

func (s *Service) requestOTP(ctx context.Context, op, email string) (*OTPRequestResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op(op))

	email = normEmail(email)
	if err := requireFields("email", email); err != nil {
		return nil, err
	}
	if !validation.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	u, err := s.deps.Users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Debug("otp requested for unknown email", logger.Email(email))
			return &OTPRequestResult{Sent: false}, nil
		}
		return nil, fmt.Errorf("auth: %s lookup: %w", op, err)
	}
	log = log.With(logger.UserID(u.ID))

	code, err := s.deps.OTP.Generate()
	if err != nil {
		return nil, fmt.Errorf("auth: %s: %w", op, err)
	}
	digest := otp.Hash(code)
	expires := s.deps.Now().Add(s.deps.OTPTTL)
	if err := s.deps.Users.SetResetOTP(ctx, u.ID, digest, expires); err != nil {
		return nil, fmt.Errorf("auth: %s persist otp: %w", op, err)
	}

	if err := s.deps.Notifier.SendOTP(ctx, u.Email, u.FullName, code); err != nil {
		s.deps.Metrics.Email("otp", err)
		log.Error("otp email failed, rolling back", logger.Err(err))
		if cerr := s.deps.Users.ClearResetOTP(ctx, u.ID, digest); cerr != nil {
			log.Error("otp rollback failed", logger.Err(cerr))
		}
		return nil, fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	s.deps.Metrics.Email("otp", nil)
	log.Info("otp sent")
	audit.Log(ctx, audit.OTPIssued, logger.UserID(u.ID), logger.String("via", op))
	return &OTPRequestResult{Sent: true}, nil
}

// checkOTP aplica la regla común de VerifyOTP y ResetPassword. Todos los fallos son ErrInvalidOTP.
func (s *Service) checkOTP(ctx context.Context, email, code string) (*repository.User, error) {
	u, err := s.deps.Users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			audit.Log(ctx, audit.OTPRejected, logger.Email(email), audit.Reason("unknown_email"))
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("auth: otp lookup: %w", err)
	}
	if !u.HasPendingOTP() {
		audit.Log(ctx, audit.OTPRejected, logger.UserID(u.ID), audit.Reason("no_pending_otp"))
		return nil, ErrInvalidOTP
	}
	if !otp.Check(code, u.ResetPasswordOTP, u.ResetPasswordOTPExpires, s.deps.Now()) {
		audit.Log(ctx, audit.OTPRejected, logger.UserID(u.ID), audit.Reason("mismatch_or_expired"))
		return nil, ErrInvalidOTP
	}
	return u, nil
}

// VerifyOTP no consume el código.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	email = normEmail(email)
	if err := requireFields("email", email, "otp", code); err != nil {
		return err
	}
	_, err := s.checkOTP(ctx, email, code)
	return err
}

// ResetPassword cambia la contraseña y limpia el OTP en la misma escritura.
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("ResetPassword"))

	in.Email = normEmail(in.Email)
	if err := requireFields("email", in.Email, "otp", in.OTP, "newPassword", in.NewPassword); err != nil {
		return err
	}
	if err := s.checkPassword(in.NewPassword); err != nil {
		return err
	}

	u, err := s.checkOTP(ctx, in.Email, in.OTP)
	if err != nil {
		return err
	}
	log = log.With(logger.UserID(u.ID))

	hash, err := s.deps.Hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	if err := s.deps.Users.CompletePasswordReset(ctx, u.ID, hash); err != nil {
		if repository.IsNotFound(err) {
			return ErrInvalidOTP
		}
		return fmt.Errorf("auth: complete reset: %w", err)
	}
	log.Info("password reset")
	audit.Log(ctx, audit.PasswordChanged, logger.UserID(u.ID))

	// el cambio ya está persistido; un fallo acá sólo se loguea
	err = s.deps.Notifier.SendResetSuccess(ctx, u.Email, u.FullName)
	s.deps.Metrics.Email("reset_success", err)
	if err != nil {
		log.Warn("reset success email failed", logger.Err(err))
	}
	return nil
}
