package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/stockmaster-api/internal/application/auth"
	"github.com/jhoicas/stockmaster-api/pkg/config"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

const otpSubject = "StockMaster - código de restablecimiento"

var (
	_ auth.Mailer = (*SMTPMailer)(nil)
	_ auth.Mailer = (*LogMailer)(nil)
)

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer envía el OTP por SMTP con gomail.
type SMTPMailer struct {
	dialer sender
	from   string
}

// NewSMTPMailer construye el mailer a partir de la configuración SMTP.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

// SendOTP envía el código al email indicado.
func (m *SMTPMailer) SendOTP(ctx context.Context, email, otp string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(buildOTPMessage(m.from, email, otp)); err != nil {
		return fmt.Errorf("enviar OTP a %s: %w", email, err)
	}
	return nil
}

func buildOTPMessage(from, to, otp string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", otpSubject)
	msg.SetBody("text/plain", fmt.Sprintf(
		"Tu código para restablecer la contraseña es %s.\nVence en 15 minutos.", otp))
	msg.AddAlternative("text/html", fmt.Sprintf(
		"<p>Tu código para restablecer la contraseña es <strong>%s</strong>.</p><p>Vence en 15 minutos.</p>", otp))
	return msg
}

// LogMailer registra el OTP en el log en lugar de enviarlo (desarrollo, SMTP_HOST vacío).
type LogMailer struct {
	log *logger.Logger
}

// NewLogMailer construye el mailer de log.
func NewLogMailer(log *logger.Logger) *LogMailer {
	if log == nil {
		log = logger.Nop()
	}
	return &LogMailer{log: log.Named("mailer")}
}

func (m *LogMailer) SendOTP(_ context.Context, email, otp string) error {
	m.log.Info().Str("email", email).Str("otp", otp).Msg("OTP de restablecimiento (SMTP no configurado)")
	return nil
}

// New elige SMTP o log según la configuración.
func New(cfg config.SMTPConfig, log *logger.Logger) auth.Mailer {
	if cfg.Host == "" {
		return NewLogMailer(log)
	}
	return NewSMTPMailer(cfg)
}
