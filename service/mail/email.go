package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Anything that can deliver an email. The worker depends on this so tests
// can swap in a recording fake instead of a live SMTP server.
type MailService interface {
	SendEmail(to, subject, body string) error
}

// SMTP-backed mail sender. Host and port come from configuration so the
// same code talks to Gmail in production and to a local relay elsewhere.
type EmailService struct {
	Host  string
	Port  string
	Email string
	Auth  smtp.Auth
}

func NewEmailService(host, port, email, password string) *EmailService {
	return &EmailService{
		Host:  host,
		Port:  port,
		Email: email,
		Auth:  smtp.PlainAuth("", email, password, host),
	}
}

// Send a single HTML email. The body is expected to be rendered HTML; the
// headers mark it as such so ticket and welcome templates display properly.
func (service *EmailService) SendEmail(to, subject, body string) error {
	headers := []string{
		"From: " + service.Email,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}

	var message strings.Builder
	message.WriteString(strings.Join(headers, "\r\n"))
	message.WriteString("\r\n\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%s", service.Host, service.Port)
	return smtp.SendMail(
		addr,
		service.Auth,
		service.Email,
		[]string{to},
		[]byte(message.String()),
	)
}
