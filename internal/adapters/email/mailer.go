package email

import (
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Defaults for outgoing mail.
const (
	DefaultClubName = "Triple A Book Club"
	DefaultFrom     = "Triple A Book Club <noreply@tripleabookclub.com>"
	DefaultAppURL   = "https://tripleabookclub.com"
)

// Observer records the outcome of each message.
type Observer interface {
	EmailSent(kind string, err error)
}

// MailerConfig holds addressing for outgoing mail.
type MailerConfig struct {
	From    string
	ReplyTo string
	AppURL  string
}

// Mailer composes the club's transactional messages and hands them to a Sender.
type Mailer struct {
	sender   Sender
	cfg      MailerConfig
	observer Observer
	log      *zap.Logger
}

// NewMailer creates a Mailer. observer may be nil.
// PRE: sender is non-nil
// POST: Empty config fields are replaced by defaults
func NewMailer(sender Sender, cfg MailerConfig, observer Observer, log *zap.Logger) *Mailer {
	if cfg.From == "" {
		cfg.From = DefaultFrom
	}
	if cfg.AppURL == "" {
		cfg.AppURL = DefaultAppURL
	}
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")
	if log == nil {
		log = zap.NewNop()
	}
	return &Mailer{sender: sender, cfg: cfg, observer: observer, log: log}
}

// LoginURL is the sign-in page.
func (m *Mailer) LoginURL() string {
	return m.cfg.AppURL + "/auth/login"
}

// ResetURL is the set-password page for a token.
func (m *Mailer) ResetURL(token string) string {
	return m.cfg.AppURL + "/auth/reset-password?token=" + url.QueryEscape(token)
}

// SendWelcome sends login credentials to an account created with a password.
func (m *Mailer) SendWelcome(ctx context.Context, to, name, password string) error {
	return m.send(ctx, KindWelcome, to, "Welcome to Triple A Book Club - Your Account Details", templateData{
		Name: name, Email: to, Password: password, Link: template.URL(m.LoginURL()),
	})
}

// SendInvite sends a set-password link to an account created without one.
func (m *Mailer) SendInvite(ctx context.Context, to, name, token string) error {
	return m.send(ctx, KindInvite, to, "Welcome to Triple A Book Club - Set Your Password", templateData{
		Name: name, Link: template.URL(m.ResetURL(token)),
	})
}

// SendReset sends a password reset link.
func (m *Mailer) SendReset(ctx context.Context, to, name, token string) error {
	if name == "" {
		name = "there"
	}
	return m.send(ctx, KindReset, to, "Reset Your Password - Triple A Book Club", templateData{
		Name: name, Link: template.URL(m.ResetURL(token)),
	})
}

func (m *Mailer) send(ctx context.Context, kind, to, subject string, data templateData) error {
	data.ClubName = DefaultClubName
	html, err := render(kind, data)
	if err != nil {
		return fmt.Errorf("render %s email: %w", kind, err)
	}
	_, err = m.sender.Send(ctx, SendRequest{
		To:      []string{to},
		From:    m.cfg.From,
		Subject: subject,
		HTML:    html,
		ReplyTo: m.cfg.ReplyTo,
		Kind:    kind,
		Link:    string(data.Link),
	})
	if m.observer != nil {
		m.observer.EmailSent(kind, err)
	}
	if err != nil {
		m.log.Error("email_failed", zap.String("kind", kind), zap.Error(err))
		return fmt.Errorf("send %s email: %w", kind, err)
	}
	return nil
}
