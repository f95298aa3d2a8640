package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	SubjectOTP          = "Password Reset OTP"
	SubjectResetSuccess = "Password Reset Successful"
)

// Mailer renderiza los correos del flujo de reset y los entrega vía Sender.
type Mailer struct {
	Sender  Sender
	Tpl     *Templates
	AppName string
	OTPTTL  time.Duration
}

func NewMailer(s Sender, appName string, otpTTL time.Duration) (*Mailer, error) {
	if s == nil {
		return nil, errors.New("email: nil sender")
	}
	tpl, err := LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("email: load templates: %w", err)
	}
	if strings.TrimSpace(appName) == "" {
		appName = "Tandem"
	}
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	return &Mailer{Sender: s, Tpl: tpl, AppName: appName, OTPTTL: otpTTL}, nil
}

func greetingName(fullName string) string {
	if n := strings.TrimSpace(fullName); n != "" {
		return n
	}
	return "there"
}

// SendOTP envía el código en claro. Es el único lugar donde sale de memoria.
func (m *Mailer) SendOTP(ctx context.Context, to, fullName, code string) error {
	html, text, err := render(m.Tpl.OTPHTML, m.Tpl.OTPTXT, OTPVars{
		AppName:    m.AppName,
		FullName:   greetingName(fullName),
		Code:       code,
		TTLMinutes: int(m.OTPTTL / time.Minute),
	})
	if err != nil {
		return fmt.Errorf("email: render otp: %w", err)
	}
	return m.Sender.Send(ctx, to, SubjectOTP, html, text)
}

func (m *Mailer) SendResetSuccess(ctx context.Context, to, fullName string) error {
	html, text, err := render(m.Tpl.ResetHTML, m.Tpl.ResetTXT, ResetSuccessVars{
		AppName:  m.AppName,
		FullName: greetingName(fullName),
	})
	if err != nil {
		return fmt.Errorf("email: render reset success: %w", err)
	}
	return m.Sender.Send(ctx, to, SubjectResetSuccess, html, text)
}
