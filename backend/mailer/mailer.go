package mailer

import (
	"fmt"

	"viadocs/backend/config"

	"gopkg.in/gomail.v2"
)

// Mailer delivers the password-reset passcode. Injected so handlers can be
// tested without an SMTP server.
type Mailer interface {
	SendOTP(toEmail string, code string) error
}

// SMTPMailer sends OTP mail over SMTP.
type SMTPMailer struct {
	cfg *config.Config
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendOTP(toEmail string, code string) error {
	if m.cfg.SMTPHost == "" || m.cfg.SMTPUser == "" || m.cfg.MailFrom == "" {
		return fmt.Errorf("mail config missing")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.MailFrom)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Viadocs Password Reset OTP")

	body := fmt.Sprintf(`Hello from Viadocs,

Your password reset OTP is: %s

This OTP will expire in 5 minutes.

If you didn't request this, please ignore this email.

— Team Viadocs
`, code)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPass)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

var _ Mailer = (*SMTPMailer)(nil)
