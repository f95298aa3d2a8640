package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/tandem/internal/observability/logger"
)

// Sender entrega un mensaje ya renderizado. El destinatario recibe
// multipart/alternative cuando vienen ambos cuerpos.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// SMTPSender implementa Sender usando SMTP.
type SMTPSender struct {
	Host               string
	Port               int
	From               string
	FromName           string
	User               string
	Pass               string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool
	Timeout            time.Duration
}

func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{
		Host:    host,
		Port:    port,
		From:    from,
		User:    user,
		Pass:    pass,
		TLSMode: "auto",
		Timeout: 10 * time.Second,
	}
}

func (s *SMTPSender) message(to, subject, htmlBody, textBody string) *mail.Message {
	m := mail.NewMessage()
	if s.FromName != "" {
		m.SetAddressHeader("From", s.From, s.FromName)
	} else {
		m.SetHeader("From", s.From)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}
	return m
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	log := logger.From(ctx).With(
		logger.Component("email.smtp"),
		logger.String("host", s.Host),
		logger.Int("port", s.Port),
	)
	log.Debug("sending email", logger.Email(to), logger.String("subject", subject), logger.String("tls_mode", s.TLSMode))

	if err := ctx.Err(); err != nil {
		return err
	}

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.Timeout = s.Timeout
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify, // solo dev
	}
	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	case "starttls":
		d.StartTLSPolicy = mail.MandatoryStartTLS
	}

	if err := d.DialAndSend(s.message(to, subject, htmlBody, textBody)); err != nil {
		diag := DiagnoseSMTP(err)
		log.Error("smtp send failed",
			logger.Err(err),
			logger.String("diag", diag.Code),
			logger.Bool("temporary", diag.Temporary),
		)
		return fmt.Errorf("smtp send: %w", err)
	}
	log.Info("email sent")
	return nil
}

// LogSender no envía nada: deja el mensaje en el log. Útil en dev sin SMTP.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, subject, _, textBody string) error {
	log := logger.From(ctx).With(logger.Component("email.log"))
	log.Info("email (log sender)",
		logger.Email(to),
		logger.String("subject", subject),
		logger.Int("text_len", len(textBody)),
	)
	// el cuerpo trae el OTP: sólo en debug
	log.Debug("email body", logger.String("body", textBody))
	return nil
}
