package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Mailer is the notification collaborator: one templated message per call,
// failure surfaces to the caller.
type Mailer interface {
	SendActivationEmail(email, uidToken, emailToken, name string) error
	SendPasswordResetEmail(email, uidToken, emailToken, name string) error
	SendContactEmail(fromName, fromEmail, message string) error
}

// EmailConfig is passed in at construction; the sender never reads ambient
// global settings.
type EmailConfig struct {
	APIKey       string
	FromEmail    string
	SupportEmail string
	AppURL       string
	AppName      string
	IsDev        bool
}

type EmailService struct {
	client       *resend.Client
	fromEmail    string
	supportEmail string
	appURL       string
	appName      string
	isDev        bool
}

func NewEmailService(cfg EmailConfig) *EmailService {
	var client *resend.Client
	if cfg.APIKey != "" && !cfg.IsDev {
		client = resend.NewClient(cfg.APIKey)
	}

	return &EmailService{
		client:       client,
		fromEmail:    cfg.FromEmail,
		supportEmail: cfg.SupportEmail,
		appURL:       cfg.AppURL,
		appName:      cfg.AppName,
		isDev:        cfg.IsDev,
	}
}

func (s *EmailService) SendActivationEmail(email, uidToken, emailToken, name string) error {
	activationURL := fmt.Sprintf("%s/activate/%s/%s", s.appURL, uidToken, emailToken)
	subject, body := activationEmailTemplate(name, activationURL, s.appName)

	return s.send("activation", email, subject, body, activationURL)
}

func (s *EmailService) SendPasswordResetEmail(email, uidToken, emailToken, name string) error {
	resetURL := fmt.Sprintf("%s/reset/%s/%s", s.appURL, uidToken, emailToken)
	subject, body := passwordResetEmailTemplate(name, resetURL, s.appName)

	return s.send("password_reset", email, subject, body, resetURL)
}

func (s *EmailService) SendContactEmail(fromName, fromEmail, message string) error {
	subject, body := contactEmailTemplate(fromName, fromEmail, message, s.appName)

	return s.send("contact", s.supportEmail, subject, body, "")
}

func (s *EmailService) send(kind, to, subject, body, url string) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", kind, "to", to, "subject", subject, "url", url)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(context.Background(), params)
	if err == nil {
		slog.Info("email sent", "type", kind, "to", to)
	}
	return err
}
