package notifier

import (
	"gopkg.in/gomail.v2"

	"github.com/nikhil/sprintboard/internal/config"
)

// Mailer sends plain-text email over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer builds a Mailer from the SMTP configuration.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send delivers one message. Each call dials a fresh SMTP connection;
// the fan-out volumes here are small enough that pooling is not worth it.
func (m *Mailer) Send(to, subject, text string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	return m.dialer.DialAndSend(msg)
}
