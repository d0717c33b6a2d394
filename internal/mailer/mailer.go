// Package mailer delivers password reset links by SMTP, or to the log when
// no SMTP server is configured.
package mailer

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"strings"
	"text/template"
	"time"

	"github.com/ikkim/catalogo-backend/config"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	mail "gopkg.in/mail.v2"
)

const (
	FromName              = "Catálogo"
	ResetPasswordTemplate = "reset_password.tmpl"
	maxRetries            = 3
	resetLinkValidity     = "1 hora"
)

//go:embed "templates"
var FS embed.FS

// Sender is what the password reset flow needs from a mailer.
type Sender interface {
	SendPasswordReset(to, link string) error
}

// New returns an SMTP sender when cfg is usable, otherwise a log-only one.
func New(cfg config.SMTPConfig) Sender {
	if !cfg.Enabled() {
		logger.Warn("SMTP not configured, reset links will only be logged")
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}

type SMTPMailer struct {
	from    string
	send    func(*mail.Message) error
	backoff time.Duration
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = 10 * time.Second
	return &SMTPMailer{
		from:    cfg.From,
		send:    func(m *mail.Message) error { return dialer.DialAndSend(m) },
		backoff: time.Second,
	}
}

type resetData struct {
	Email     string
	Link      string
	ExpiresIn string
}

// rendered holds the three parts of one templated message.
type rendered struct {
	subject string
	plain   string
	html    string
}

func render(templateFile string, data any) (*rendered, error) {
	text, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return nil, err
	}
	html, err := htmltemplate.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return nil, err
	}

	out := &rendered{}
	var buf bytes.Buffer
	if err := text.ExecuteTemplate(&buf, "subject", data); err != nil {
		return nil, err
	}
	out.subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := text.ExecuteTemplate(&buf, "plainBody", data); err != nil {
		return nil, err
	}
	out.plain = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := html.ExecuteTemplate(&buf, "htmlBody", data); err != nil {
		return nil, err
	}
	out.html = strings.TrimSpace(buf.String())
	return out, nil
}

func (m *SMTPMailer) message(to string, r *rendered) *mail.Message {
	msg := mail.NewMessage()
	msg.SetAddressHeader("From", m.from, FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", r.subject)
	msg.SetBody("text/plain", r.plain)
	msg.AddAlternative("text/html", r.html)
	return msg
}

func (m *SMTPMailer) SendPasswordReset(to, link string) error {
	r, err := render(ResetPasswordTemplate, resetData{Email: to, Link: link, ExpiresIn: resetLinkValidity})
	if err != nil {
		return err
	}
	msg := m.message(to, r)

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = m.send(msg); err == nil {
			logger.Info("Password reset email sent", map[string]interface{}{
				"attempt": attempt,
			})
			return nil
		}
		logger.Warn("Failed to send email", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})
		if attempt < maxRetries {
			time.Sleep(m.backoff * time.Duration(attempt))
		}
	}
	return err
}

// LogMailer writes reset links to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(to, link string) error {
	logger.Warn("Password reset link (SMTP disabled)", map[string]interface{}{
		"to":   to,
		"link": link,
	})
	return nil
}
