package infra

import (
	"fmt"
	"net/smtp"

	"vendapos/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending emails with PDF attachments.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Configured is false when no SMTP host was set; receipt jobs are then dropped.
func (m *Mailer) Configured() bool { return m.host != "" }

// SendReceipt mails the receipt PDF to the customer. fromName is the
// company's display name.
func (m *Mailer) SendReceipt(fromName, to, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = fmt.Sprintf("%s <%s>", fromName, m.user)
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
