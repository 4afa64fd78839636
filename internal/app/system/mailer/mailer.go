// internal/app/system/mailer/mailer.go
package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Email is one outgoing message. HTMLBody is optional.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Config holds SMTP settings. An empty Host disables sending.
type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
}

// Mailer sends e-mail over SMTP with gomail.
type Mailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	log      *zap.Logger
}

// New returns a Mailer. When cfg.Host is empty the Mailer logs messages
// instead of sending them.
func New(cfg Config, logger *zap.Logger) *Mailer {
	m := &Mailer{from: cfg.From, fromName: cfg.FromName, log: logger}
	if cfg.Host != "" {
		port := cfg.Port
		if port == 0 {
			port = 587
		}
		m.dialer = gomail.NewDialer(cfg.Host, port, cfg.User, cfg.Pass)
	}
	return m
}

// Enabled reports whether SMTP is configured.
func (m *Mailer) Enabled() bool { return m != nil && m.dialer != nil }

// Send delivers e. The context is only checked before dialing; gomail has
// no cancellable send.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	if !m.Enabled() {
		m.log.Info("mail disabled; not sending",
			zap.String("to", e.To),
			zap.String("subject", e.Subject))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(m.message(e)); err != nil {
		return fmt.Errorf("send mail to %s: %w", e.To, err)
	}
	m.log.Info("mail sent", zap.String("to", e.To), zap.String("subject", e.Subject))
	return nil
}

func (m *Mailer) message(e Email) *gomail.Message {
	msg := gomail.NewMessage()
	if m.fromName != "" {
		msg.SetAddressHeader("From", m.from, m.fromName)
	} else {
		msg.SetHeader("From", m.from)
	}
	msg.SetHeader("To", e.To)
	msg.SetHeader("Subject", e.Subject)
	msg.SetBody("text/plain", e.TextBody)
	if e.HTMLBody != "" {
		msg.AddAlternative("text/html", e.HTMLBody)
	}
	return msg
}
