// Package notify emails a summary of newly published draws over SMTP.
package notify

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rickgao/eedraws/internal/config"
	"github.com/rickgao/eedraws/internal/model"
	"github.com/rickgao/eedraws/internal/report"
)

// SendFunc delivers a message. smtp.SendMail satisfies it.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends draw notifications.
type Mailer struct {
	cfg    config.NotifyConfig
	send   SendFunc
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithSendFunc replaces smtp.SendMail.
func WithSendFunc(fn SendFunc) Option {
	return func(m *Mailer) {
		m.send = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mailer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock sets the time source for the Date header.
func WithClock(now func() time.Time) Option {
	return func(m *Mailer) {
		m.now = now
	}
}

// NewMailer creates a Mailer. cfg should already be validated.
func NewMailer(cfg config.NotifyConfig, opts ...Option) *Mailer {
	m := &Mailer{
		cfg:    cfg,
		send:   smtp.SendMail,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NotifyDraws emails the latest draw summary followed by the list of new draws.
func (m *Mailer) NotifyDraws(s report.Summary, newDraws []model.Draw) error {
	body, err := Body(s, newDraws)
	if err != nil {
		return err
	}
	return m.Send(Subject(s), body)
}

// Send emails a plain-text message to every configured recipient.
func (m *Mailer) Send(subject, body string) error {
	if len(m.cfg.To) == 0 {
		return errors.New("notify: no recipients")
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	msg := m.buildMessage(subject, body)
	if err := m.send(addr, auth, m.cfg.From, m.cfg.To, msg); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}

	m.logger.Info("notification sent",
		"subject", subject,
		"recipients", len(m.cfg.To),
	)
	return nil
}

func (m *Mailer) buildMessage(subject, body string) []byte {
	var b bytes.Buffer
	header := func(k, v string) {
		b.WriteString(k + ": " + v + "\r\n")
	}
	header("From", m.cfg.From)
	header("To", strings.Join(m.cfg.To, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", subject))
	header("Date", m.now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	b.WriteString("\r\n")

	body = strings.ReplaceAll(body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return b.Bytes()
}

// Subject summarizes the latest draw in one line.
func Subject(s report.Summary) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("Express Entry Draw #%s: %d invitations, CRS %d", strconv.Itoa(s.Number), s.Invitations, s.CRSCutoff)
}

// Body renders the latest draw block and, when more than one draw is new,
// lists them all.
func Body(s report.Summary, newDraws []model.Draw) (string, error) {
	var b strings.Builder
	if err := report.Render(&b, s); err != nil {
		return "", err
	}

	if len(newDraws) > 1 {
		p := message.NewPrinter(language.English)
		p.Fprintf(&b, "\n%d new draws since the last check:\n", len(newDraws))
		for _, d := range newDraws {
			name := d.Name
			if name == "" {
				name = "Unknown"
			}
			p.Fprintf(&b, "  #%s  %s  %s  CRS %d  (%d invitations)\n",
				strconv.Itoa(d.Number), d.DateString(), name, d.CRSCutoff, d.Invitations)
		}
	}
	return b.String(), nil
}
