// File: internal/notification/mailer.go
package notification

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"unihomes_backend/internal/config"

	"go.uber.org/zap"
)

const smtpDialTimeout = 10 * time.Second

// Mailer sends a single HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type smtpMailer struct {
	host         string
	port         string
	username     string
	password     string
	mailFrom     string
	mailFromName string
	logger       *zap.Logger
}

// NewSMTPMailer builds a mailer from SMTP configuration. When no SMTP host is
// configured, a no-op mailer is returned so local environments work without a
// mail server.
func NewSMTPMailer(cfg *config.Config, logger *zap.Logger) Mailer {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not configured; emails will be logged, not sent")
		return &logOnlyMailer{logger: logger}
	}
	return &smtpMailer{
		host:         cfg.SMTPHost,
		port:         cfg.SMTPPort,
		username:     cfg.SMTPUser,
		password:     cfg.SMTPPassword,
		mailFrom:     cfg.MailFrom,
		mailFromName: cfg.MailFromName,
		logger:       logger,
	}
}

// Send builds a MIME message and delivers it over authenticated SMTP.
func (m *smtpMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	headers := []string{
		fmt.Sprintf("From: %s <%s>", m.mailFromName, m.mailFrom),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}
	message := []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody)

	addr := net.JoinHostPort(m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.mailFrom, []string{to}, message)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", to, err)
		}
		return nil
	case <-time.After(smtpDialTimeout):
		return fmt.Errorf("smtp send to %s: timed out after %s", to, smtpDialTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// logOnlyMailer records sends instead of performing them.
type logOnlyMailer struct {
	logger *zap.Logger
}

func (m *logOnlyMailer) Send(_ context.Context, to, subject, _ string) error {
	m.logger.Info("Email suppressed (no SMTP host)",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
