// Package mail delivers outbound messages such as confirmation codes.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/Baaaki/yamdb/internal/config"
	"github.com/Baaaki/yamdb/pkg/logger"
	"github.com/jordan-wright/email"
	"go.uber.org/zap"
)

// Mailer sends a plain-text message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
	From     string
}

// ConfigFromApp extracts the SMTP settings from the application config.
func ConfigFromApp(cfg *config.Config) SMTPConfig {
	return SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		UseTLS:   cfg.SMTPUseTLS,
		From:     cfg.MailFrom,
	}
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// New picks the SMTP mailer when a host is configured and the log mailer otherwise.
func New(cfg SMTPConfig) Mailer {
	if cfg.Host == "" {
		logger.Log.Warn("SMTP_HOST not set, confirmation codes will only be logged")
		return NewLogMailer(cfg.From)
	}
	return NewSMTPMailer(cfg)
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if err := m.deliver(e); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	logger.Log.Debug("Mail sent",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}

// deliver only allows the usual port/protocol pairs: 465 implicit TLS,
// 587 STARTTLS, 25 plain.
func (m *SMTPMailer) deliver(e *email.Email) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	tlsConfig := &tls.Config{
		ServerName: m.cfg.Host,
		MinVersion: tls.VersionTLS12,
	}

	if m.cfg.UseTLS {
		switch m.cfg.Port {
		case 465:
			return e.SendWithTLS(addr, auth, tlsConfig)
		case 587:
			return e.SendWithStartTLS(addr, auth, tlsConfig)
		default:
			return fmt.Errorf("unsupported port %d with TLS enabled", m.cfg.Port)
		}
	}
	if m.cfg.Port == 25 {
		return e.Send(addr, auth)
	}
	return fmt.Errorf("unsupported port %d without TLS", m.cfg.Port)
}

// LogMailer writes messages to the log instead of sending them. Development only.
type LogMailer struct {
	from string
}

func NewLogMailer(from string) *LogMailer {
	return &LogMailer{from: from}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Log.Info("Mail (not sent)",
		zap.String("from", m.from),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
