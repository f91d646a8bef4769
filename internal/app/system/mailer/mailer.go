// internal/app/system/mailer/mailer.go
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/mentorhq/mentorhub/internal/app/system/notify"
	"go.uber.org/zap"
)

// Email is one outbound message with both bodies.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
	BaseURL  string
}

// Mailer sends notification email over SMTP. It implements notify.Notifier.
type Mailer struct {
	cfg Config
	log *zap.Logger
}

// New creates a Mailer.
func New(cfg Config, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: logger}
}

// Send renders and delivers the notice. Called from the debouncer, which
// owns the swallow-and-log policy; Send just reports the error.
func (m *Mailer) Send(ctx context.Context, n notify.Notice) error {
	if n.Email == "" {
		return nil
	}
	email := BuildNoticeEmail(n, m.cfg.BaseURL)
	email.To = n.Email
	return m.deliver(ctx, email)
}

func (m *Mailer) deliver(ctx context.Context, e Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}

	boundary := "mentorhub-alt"
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.cfg.FromName, m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", e.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", e.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, e.TextBody)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, e.HTMLBody)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{e.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", e.To, err)
	}
	m.log.Debug("notification email sent", zap.String("to", e.To), zap.String("subject", e.Subject))
	return nil
}
