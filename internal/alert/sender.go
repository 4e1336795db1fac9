// Package alert notifies operators by e-mail when a lead is classified as
// high priority.
package alert

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"leadflow_backend/platform/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// Sender delivers operator alerts.
type Sender interface {
	SendHighPriorityAlert(ctx context.Context, data HighPriorityAlertData) error
}

// HighPriorityAlertData fills the alert template.
type HighPriorityAlertData struct {
	ContactID   string
	DisplayName string
	Intent      string
	Sentiment   string
	MessageText string
}

// NoopSender drops alerts. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendHighPriorityAlert(ctx context.Context, data HighPriorityAlertData) error {
	return nil
}

// SMTPSender delivers alerts over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
	recipient string
}

// NewSender returns the configured sender, or a NoopSender when alerts are
// disabled.
func NewSender(cfg config.AlertConfig) Sender {
	if !cfg.IsAlertEnabled() {
		return NoopSender{}
	}
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetAlertFromName(),
		fromEmail: cfg.GetAlertFromAddress(),
		recipient: cfg.GetAlertRecipient(),
	}
}

func (s *SMTPSender) SendHighPriorityAlert(ctx context.Context, data HighPriorityAlertData) error {
	content, err := renderAlertTemplate(data)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Lead urgente: %s", displayNameOrContact(data))
	return s.send(ctx, subject, content)
}

func (s *SMTPSender) send(ctx context.Context, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(s.recipient); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func renderAlertTemplate(data HighPriorityAlertData) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/high_priority.html")
	if err != nil {
		return "", fmt.Errorf("parse alert template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render alert template: %w", err)
	}
	return buf.String(), nil
}

func displayNameOrContact(data HighPriorityAlertData) string {
	if data.DisplayName != "" {
		return data.DisplayName
	}
	return data.ContactID
}
