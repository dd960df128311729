// Package mailer sends transactional email over SMTP.
package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strconv"
	"strings"

	"assistancevoyage/models"
)

// Mailer sends one plain text message.
type Mailer interface {
	Send(to []string, subject, body string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPMailer struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) Send(to []string, subject, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipient")
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := m.cfg.Host + ":" + strconv.Itoa(m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, to, BuildMessage(m.cfg.From, to, subject, body)); err != nil {
		return fmt.Errorf("send mail to %s: %w", strings.Join(to, ","), err)
	}
	slog.Debug("email sent", "to", to, "subject", subject)
	return nil
}

// BuildMessage renders the RFC 5322 message sent over the wire.
func BuildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	fmt.Fprintf(&b, "From: %s\r\n", headerValue(from))
	fmt.Fprintf(&b, "To: %s\r\n", headerValue(strings.Join(to, ",")))
	fmt.Fprintf(&b, "Subject: %s\r\n\r\n", headerValue(subject))
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// headerValue folds line breaks so a value cannot start a new header.
func headerValue(v string) string {
	return headerBreaks.Replace(v)
}

// ContactSubject is the subject line of a contact form notification.
func ContactSubject(f models.ContactForm) string {
	return fmt.Sprintf("[Site Web] Nouveau message de %s", f.Name)
}

// ContactBody is the text of a contact form notification.
func ContactBody(f models.ContactForm) string {
	subject := models.ContactSubjects[f.Subject]
	if subject == "" {
		subject = f.Subject
	}
	return fmt.Sprintf(`Nouveau message reçu depuis le formulaire de contact.

Nom : %s
Email : %s
Téléphone : %s
Sujet : %s

Message :
%s
`, f.Name, f.Email, f.Phone, subject, f.Message)
}
