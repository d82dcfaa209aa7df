// Package mailer implements the outbound mail transport on top of
// authenticated SMTP with STARTTLS.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"go.uber.org/zap"

	"github.com/moralknight/outreach-server/internal/config"
	"github.com/moralknight/outreach-server/internal/models"
)

// ErrNotConfigured signals missing transport credentials. Operators need to
// tell "misconfigured" apart from "mail server down", so this is a sentinel
// rather than a generic send error.
var ErrNotConfigured = errors.New("mail transport is not configured")

// Mailer sends a single composed email. The notifier depends on this
// interface so tests can count and inspect sends without a network.
type Mailer interface {
	Send(ctx context.Context, msg *models.EmailMessage) error
}

// SMTPMailer sends mail through an authenticated SMTP server using
// STARTTLS. A fresh connection is opened per message; form traffic is far
// too low to justify pooling.
type SMTPMailer struct {
	cfg    config.SMTP
	logger *zap.SugaredLogger
}

// New creates an SMTP mailer from transport configuration.
func New(cfg config.SMTP, logger *zap.SugaredLogger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// Configured reports whether the transport has credentials.
func (m *SMTPMailer) Configured() bool {
	return m.cfg.Configured()
}

// Send composes and delivers one MIME message. Attachments keep their
// original filename and content type.
func (m *SMTPMailer) Send(ctx context.Context, msg *models.EmailMessage) error {
	if !m.cfg.Configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = fmt.Sprintf("\"Moral Knight Website\" <%s>", m.cfg.FromAddr)
	e.To = []string{msg.Recipient}
	e.Subject = msg.Subject
	e.HTML = []byte(msg.HTMLBody)
	if msg.ReplyTo != "" {
		e.ReplyTo = []string{msg.ReplyTo}
	}
	for _, a := range msg.Attachments {
		if _, err := e.Attach(bytes.NewReader(a.Data), a.Filename, a.ContentType); err != nil {
			return fmt.Errorf("attach %s: %w", a.Filename, err)
		}
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	tlsConfig := &tls.Config{
		ServerName: m.cfg.Host,
		MinVersion: tls.VersionTLS12,
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := e.SendWithStartTLS(addr, auth, tlsConfig); err != nil {
		m.logger.Errorw("SMTP send failed",
			"host", m.cfg.Host,
			"recipient", msg.Recipient,
			"error", err,
		)
		return fmt.Errorf("send email: %w", err)
	}

	m.logger.Debugw("Email sent",
		"recipient", msg.Recipient,
		"subject", msg.Subject,
		"attachments", len(msg.Attachments),
	)
	return nil
}
