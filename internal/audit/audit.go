// Package audit registra eventos de seguridad como logs estructurados en el canal "audit".
// El sink es el logger: en prod sale como JSON y se puede filtrar por logger=audit.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/tandem/internal/observability/logger"
)

type Event string

const (
	UserSignup      Event = "user.signup"
	LoginSucceeded  Event = "login.succeeded"
	LoginFailed     Event = "login.failed"
	OTPIssued       Event = "password_reset.otp_issued"
	OTPRejected     Event = "password_reset.otp_rejected"
	PasswordChanged Event = "password_reset.completed"
	UserOnboarded   Event = "user.onboarded"
)

// Log escribe el evento con el logger del request (conserva request_id).
// Los e-mails se pasan por logger.Email para que salgan enmascarados.
func Log(ctx context.Context, event Event, fields ...zap.Field) {
	all := make([]zap.Field, 0, len(fields)+2)
	all = append(all, zap.String("event", string(event)), zap.Time("ts", time.Now().UTC()))
	all = append(all, fields...)
	logger.From(ctx).Named("audit").Info("audit", all...)
}

// Reason es el motivo interno de un rechazo; nunca viaja al cliente.
func Reason(v string) zap.Field { return zap.String("reason", v) }
